package models

import "time"

// Doubt status values.
const (
	DoubtStatusPending  = "pending"
	DoubtStatusResolved = "resolved"
	// DoubtStatusRejected is reserved. No workflow assigns it yet.
	DoubtStatusRejected = "rejected"
)

// DefaultSyllabusID is attached to doubts that are not tied to a specific syllabus.
const DefaultSyllabusID = "general"

// Doubt is a help request raised by a student and answered by a senior from the same department.
// StudentName, StudentYear and Major are copied from the requester profile when the doubt is created.
type Doubt struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	StudentID   string     `gorm:"size:128;index;not null" json:"student_id"`
	StudentName string     `gorm:"size:255;not null" json:"student_name"`
	StudentYear int        `gorm:"not null" json:"student_year"`
	Major       string     `gorm:"size:32;index;not null" json:"major"`
	SyllabusID  string     `gorm:"size:64;default:general" json:"syllabus_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Status      string     `gorm:"size:16;index;not null;default:pending" json:"status"`
	Senior      *string    `gorm:"size:255" json:"senior"`
	Solution    *string    `gorm:"type:text" json:"solution"`
	ResolvedBy  *string    `gorm:"size:128;index" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPending reports whether the doubt still awaits a resolver.
func (d Doubt) IsPending() bool {
	return d.Status == DoubtStatusPending
}

// IsResolved reports whether the doubt is resolved with both resolver and solution attached.
func (d Doubt) IsResolved() bool {
	return d.Status == DoubtStatusResolved && d.Senior != nil && d.Solution != nil
}
