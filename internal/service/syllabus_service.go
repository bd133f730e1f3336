package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/models"
	"github.com/noah-isme/nexus-api/internal/repository"
	"github.com/noah-isme/nexus-api/internal/syllabus"
)

// PlaceholderSyllabusPDF is attached to seeded syllabuses until an admin uploads the real document.
const PlaceholderSyllabusPDF = "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf"

var (
	// ErrSyllabusNotFound indicates an unknown syllabus id.
	ErrSyllabusNotFound = errors.New("syllabus not found")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the document is not a PDF.
	ErrUploadTypeNotAllowed = errors.New("only PDF documents are accepted")
	// ErrUploadMissing indicates no file was attached.
	ErrUploadMissing = errors.New("file is required")
	// ErrStorageUnavailable indicates no document storage is configured.
	ErrStorageUnavailable = errors.New("document storage is not configured")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SyllabusService exposes syllabus documents and the subject catalog.
type SyllabusService interface {
	Seed(ctx context.Context) (int, error)
	List(ctx context.Context, major string, year int) ([]dto.SyllabusResponse, error)
	Get(ctx context.Context, id string) (dto.SyllabusResponse, error)
	UploadPDF(ctx context.Context, id string, file *multipart.FileHeader) (dto.SyllabusUploadResponse, error)
	Subjects(major string, year int) []dto.SubjectSummary
	Subject(code string) (dto.SubjectDetail, error)
	Unit(code, slug string) (dto.SubjectUnit, error)
}

type syllabusService struct {
	repo    repository.SyllabusRepository
	catalog *syllabus.Catalog
	storage FileStorage
	maxSize int64
	logger  zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewSyllabusService constructs a syllabus service. storage may be nil when uploads are disabled.
func NewSyllabusService(repo repository.SyllabusRepository, catalog *syllabus.Catalog, storage FileStorage, maxSizeMB int, logger zerolog.Logger) SyllabusService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &syllabusService{
		repo:    repo,
		catalog: catalog,
		storage: storage,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "syllabus_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/nexus-api/internal/service/syllabus"),
		now:     time.Now,
	}
}

// Seed creates one syllabus per department and year when none exist yet.
func (s *syllabusService) Seed(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		s.logger.Debug().Int64("existing", total).Msg("syllabus seed skipped")
		return 0, nil
	}

	now := s.now().UTC()
	items := make([]models.Syllabus, 0, len(models.Departments)*len(models.AcademicYears))
	for _, department := range models.Departments {
		for _, year := range models.AcademicYears {
			items = append(items, models.Syllabus{
				ID:                 fmt.Sprintf("%s_%d", department.ID, year),
				CourseName:         fmt.Sprintf("%s - %s Year", department.Name, ordinal(year)),
				Year:               year,
				Major:              department.ID,
				PDFStorageLocation: PlaceholderSyllabusPDF,
				UploadDate:         now,
			})
		}
	}

	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return 0, err
	}

	s.logger.Info().Int("created", len(items)).Msg("syllabus data seeded")
	return len(items), nil
}

func (s *syllabusService) List(ctx context.Context, major string, year int) ([]dto.SyllabusResponse, error) {
	items, err := s.repo.List(ctx, repository.SyllabusFilter{Major: strings.ToLower(strings.TrimSpace(major)), Year: year})
	if err != nil {
		return nil, err
	}
	return dto.NewSyllabusResponseSlice(items), nil
}

func (s *syllabusService) Get(ctx context.Context, id string) (dto.SyllabusResponse, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SyllabusResponse{}, ErrSyllabusNotFound
		}
		return dto.SyllabusResponse{}, err
	}
	return dto.NewSyllabusResponse(item), nil
}

func (s *syllabusService) UploadPDF(ctx context.Context, id string, file *multipart.FileHeader) (dto.SyllabusUploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "syllabus.upload_pdf", trace.WithAttributes(
		attribute.String("syllabus.id", id),
		attribute.Int64("upload.max_bytes", s.maxSize),
	))
	defer span.End()

	if s.storage == nil {
		return dto.SyllabusUploadResponse{}, ErrStorageUnavailable
	}
	if file == nil {
		return dto.SyllabusUploadResponse{}, ErrUploadMissing
	}
	if file.Size > s.maxSize {
		span.SetStatus(codes.Error, "payload too large")
		return dto.SyllabusUploadResponse{}, ErrUploadTooLarge
	}

	if _, err := s.Get(ctx, id); err != nil {
		span.RecordError(err)
		return dto.SyllabusUploadResponse{}, err
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.SyllabusUploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.SyllabusUploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		span.SetStatus(codes.Error, "payload too large")
		return dto.SyllabusUploadResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !detected.Is("application/pdf") {
		span.SetStatus(codes.Error, "type not allowed")
		return dto.SyllabusUploadResponse{}, ErrUploadTypeNotAllowed
	}

	location, err := s.storage.Upload(ctx, id+".pdf", bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		s.logger.Error().Err(err).Str("syllabus_id", id).Msg("failed to store syllabus document")
		return dto.SyllabusUploadResponse{}, err
	}

	updated, err := s.repo.UpdateDocument(ctx, id, location, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SyllabusUploadResponse{}, ErrSyllabusNotFound
		}
		return dto.SyllabusUploadResponse{}, err
	}

	s.logger.Info().Str("syllabus_id", id).Int("size_bytes", buf.Len()).Msg("syllabus document uploaded")

	return dto.SyllabusUploadResponse{
		Syllabus:  dto.NewSyllabusResponse(updated),
		MimeType:  detected.String(),
		SizeBytes: int64(buf.Len()),
	}, nil
}

func (s *syllabusService) Subjects(major string, year int) []dto.SubjectSummary {
	subjects := s.catalog.Subjects(strings.TrimSpace(major), year)
	out := make([]dto.SubjectSummary, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, dto.SubjectSummary{
			Code:      subject.Code,
			Name:      subject.Name,
			Semester:  subject.Semester,
			UnitCount: len(subject.Units),
		})
	}
	return out
}

func (s *syllabusService) Subject(code string) (dto.SubjectDetail, error) {
	subject, err := s.catalog.Subject(code)
	if err != nil {
		return dto.SubjectDetail{}, err
	}

	units := make([]dto.SubjectUnit, 0, len(subject.Units))
	for _, unit := range subject.Units {
		units = append(units, newSubjectUnit(unit))
	}
	return dto.SubjectDetail{Code: subject.Code, Name: subject.Name, Semester: subject.Semester, Units: units}, nil
}

func (s *syllabusService) Unit(code, slug string) (dto.SubjectUnit, error) {
	_, unit, err := s.catalog.Unit(code, slug)
	if err != nil {
		return dto.SubjectUnit{}, err
	}
	return newSubjectUnit(unit), nil
}

func newSubjectUnit(unit syllabus.Unit) dto.SubjectUnit {
	topics := make([]string, len(unit.Topics))
	copy(topics, unit.Topics)
	return dto.SubjectUnit{Title: unit.Title, Slug: unit.Slug, Topics: topics}
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
