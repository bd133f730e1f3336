package models

import "time"

// Syllabus is the course document published for a department and academic year.
type Syllabus struct {
	ID                 string    `gorm:"primaryKey;size:64" json:"id"`
	CourseName         string    `gorm:"size:255;not null" json:"course_name"`
	Year               int       `gorm:"index;not null" json:"year"`
	Major              string    `gorm:"size:32;index;not null" json:"major"`
	PDFStorageLocation string    `gorm:"size:1024" json:"pdf_storage_location"`
	UploadDate         time.Time `json:"upload_date"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
