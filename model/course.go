package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Program types driving which academic sections an application form requires.
const (
	ProgramTypeUG = "UG"
	ProgramTypePG = "PG"
)

// IsValidProgramType reports whether pt is UG or PG.
func IsValidProgramType(pt string) bool {
	return pt == ProgramTypeUG || pt == ProgramTypePG
}

// Course represents an admission program offered by the college. A course is not
// considered fully provisioned until both admin references are set.
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Duration    int            `json:"duration"` // years
	Fee         float64        `json:"fee"`
	Requirement string         `gorm:"type:text" json:"requirement"`
	Contact     string         `json:"contact"`
	SubjectCode string         `gorm:"uniqueIndex;not null" json:"subjectCode"`

	// Admin account references set by the provisioning workflow. Nullable so a
	// half-built course row can exist inside the provisioning transaction, and so
	// deleting a user leaves a dangling reference rather than failing.
	ContentAdminID      *uint `gorm:"index" json:"contentAdmin,omitempty"`
	VerificationAdminID *uint `gorm:"index" json:"verificationAdmin,omitempty"`

	// Descriptive content block, filled in later by the content admin.
	ProgramDescription           string         `gorm:"type:text" json:"programDescription,omitempty"`
	Image1                       string         `json:"image1,omitempty"`
	Image2                       string         `json:"image2,omitempty"`
	Vision                       string         `gorm:"type:text" json:"vision,omitempty"`
	Mission                      string         `gorm:"type:text" json:"mission,omitempty"`
	YearsOfDepartment            int            `json:"yearsOfDepartment,omitempty"`
	Syllabus                     datatypes.JSON `gorm:"type:jsonb" json:"syllabus,omitempty"` // []SyllabusSemester
	ProgramEducationalObjectives string         `gorm:"type:text" json:"programEducationalObjectives,omitempty"`
	ProgramOutcomes              string         `gorm:"type:text" json:"programOutcomes,omitempty"`
	ProgramType                  string         `gorm:"type:varchar(2)" json:"programType,omitempty"` // UG or PG
}

// SyllabusSemester is one entry of the ordered syllabus stored in Course.Syllabus.
type SyllabusSemester struct {
	Semester string   `json:"semester"`
	Subjects []string `json:"subjects"`
}
