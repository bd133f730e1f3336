// Package syllabus serves the embedded subject catalog used by the syllabus explorer and the AI tutor.
package syllabus

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

//go:embed data/subjects.yaml data/general.txt
var dataFS embed.FS

// ErrSubjectNotFound is returned for unknown subject codes.
var ErrSubjectNotFound = errors.New("subject not found")

// ErrUnitNotFound is returned for unknown unit slugs within a subject.
var ErrUnitNotFound = errors.New("unit not found")

// Unit is one syllabus unit with its topics.
type Unit struct {
	Title  string   `yaml:"title"`
	Slug   string   `yaml:"-"`
	Topics []string `yaml:"topics"`
}

// Subject is a course taught in a given semester.
type Subject struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Major    string `yaml:"major"`
	Year     int    `yaml:"year"`
	Semester int    `yaml:"semester"`
	Units    []Unit `yaml:"units"`
}

// Catalog indexes subjects by code.
type Catalog struct {
	subjects []Subject
	byCode   map[string]int
	general  string
}

type catalogFile struct {
	Subjects []Subject `yaml:"subjects"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	raw, err := dataFS.ReadFile("data/subjects.yaml")
	if err != nil {
		return nil, err
	}
	general, err := dataFS.ReadFile("data/general.txt")
	if err != nil {
		return nil, err
	}
	return Parse(raw, string(general))
}

// MustLoad is Load for program start-up.
func MustLoad() *Catalog {
	catalog, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load syllabus catalog: %v", err))
	}
	return catalog
}

// Parse builds a catalog from YAML, keeping file order. generalContent is the default
// syllabus text for topic explanations.
func Parse(raw []byte, generalContent string) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse subject catalog: %w", err)
	}

	catalog := &Catalog{
		subjects: make([]Subject, 0, len(file.Subjects)),
		byCode:   make(map[string]int, len(file.Subjects)),
		general:  strings.TrimSpace(generalContent),
	}
	for _, subject := range file.Subjects {
		subject.Code = strings.TrimSpace(subject.Code)
		if subject.Code == "" {
			return nil, errors.New("subject without code in catalog")
		}
		key := strings.ToUpper(subject.Code)
		if _, dup := catalog.byCode[key]; dup {
			return nil, fmt.Errorf("duplicate subject code %q", subject.Code)
		}
		for i := range subject.Units {
			subject.Units[i].Slug = slug.Make(subject.Units[i].Title)
		}
		catalog.byCode[key] = len(catalog.subjects)
		catalog.subjects = append(catalog.subjects, subject)
	}

	return catalog, nil
}

// Subjects returns subjects optionally filtered by major and year.
func (c *Catalog) Subjects(major string, year int) []Subject {
	out := make([]Subject, 0, len(c.subjects))
	for _, subject := range c.subjects {
		if major != "" && !strings.EqualFold(subject.Major, major) {
			continue
		}
		if year > 0 && subject.Year != year {
			continue
		}
		out = append(out, subject)
	}
	return out
}

// Subject looks a subject up by code, case-insensitively.
func (c *Catalog) Subject(code string) (Subject, error) {
	idx, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Subject{}, ErrSubjectNotFound
	}
	return c.subjects[idx], nil
}

// Unit looks a unit up by its slug.
func (c *Catalog) Unit(code, unitSlug string) (Subject, Unit, error) {
	subject, err := c.Subject(code)
	if err != nil {
		return Subject{}, Unit{}, err
	}
	for _, unit := range subject.Units {
		if unit.Slug == unitSlug {
			return subject, unit, nil
		}
	}
	return Subject{}, Unit{}, ErrUnitNotFound
}

// GeneralContent is the syllabus text used when a topic is explained without a subject.
func (c *Catalog) GeneralContent() string {
	return c.general
}

// Content flattens the subject into prompt text. Subjects without units flatten to their name.
func (s Subject) Content() string {
	if len(s.Units) == 0 {
		return s.Name
	}

	blocks := make([]string, 0, len(s.Units))
	for _, unit := range s.Units {
		blocks = append(blocks, fmt.Sprintf("Unit: %s\nTopics:\n- %s", unit.Title, strings.Join(unit.Topics, "\n- ")))
	}
	return strings.Join(blocks, "\n\n")
}
