package models

import "time"

// Student is the profile of an authenticated user. ID is the identity provider uid.
type Student struct {
	ID        string    `gorm:"primaryKey;size:128" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Major     string    `gorm:"size:32;index;not null" json:"major"`
	Year      int       `gorm:"not null" json:"year"`
	Expertise *string   `gorm:"size:255" json:"expertise,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Department describes an academic department a student can belong to.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Departments lists the departments known to the portal.
var Departments = []Department{
	{ID: "cs", Name: "Computer Science"},
	{ID: "it", Name: "Information Technology"},
	{ID: "entc", Name: "Electronics and Telecommunication"},
	{ID: "elex", Name: "Electronics"},
	{ID: "mech", Name: "Mechanical Engineering"},
	{ID: "aids", Name: "AI & Data Science"},
	{ID: "aiml", Name: "AI & Machine Learning"},
}

// AcademicYears lists the supported years of study.
var AcademicYears = []int{1, 2, 3, 4}

// DepartmentByID returns the department with the given identifier.
func DepartmentByID(id string) (Department, bool) {
	for _, department := range Departments {
		if department.ID == id {
			return department, true
		}
	}
	return Department{}, false
}
