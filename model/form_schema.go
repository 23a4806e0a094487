package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Custom field types a content admin may add to an academic section.
const (
	FieldTypeText     = "text"
	FieldTypeNumber   = "number"
	FieldTypeDate     = "date"
	FieldTypeDropdown = "dropdown"
)

// IsValidFieldType reports whether t is a supported custom field type.
func IsValidFieldType(t string) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeDropdown:
		return true
	}
	return false
}

// FormSchema is the per-course definition of what a student application must
// collect. One row per course; structural fields are JSONB documents whose typed
// shapes live below. Readers must always see a complete shape, so absent columns
// are defaulted on the way out (see services.FormSchemaService).
type FormSchema struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID    uint           `gorm:"uniqueIndex;not null" json:"courseId"`
	ProgramType string         `gorm:"type:varchar(2);not null" json:"programType"` // UG or PG

	EducationFields           datatypes.JSON `gorm:"type:jsonb" json:"educationFields,omitempty"`           // EducationFields
	Sections                  datatypes.JSON `gorm:"type:jsonb" json:"sections,omitempty"`                  // []string
	RequiredAcademicFields    datatypes.JSON `gorm:"type:jsonb" json:"requiredAcademicFields,omitempty"`    // []string
	RequiredAcademicSubfields datatypes.JSON `gorm:"type:jsonb" json:"requiredAcademicSubfields,omitempty"` // AcademicSubfields
	RequiredDocuments         datatypes.JSON `gorm:"type:jsonb" json:"requiredDocuments,omitempty"`         // []string
}

// EducationFields toggles which education levels an application asks about.
type EducationFields struct {
	Tenth  bool `json:"tenth"`
	Twelth bool `json:"twelth"`
	UG     bool `json:"ug"`
	PG     bool `json:"pg"`
}

// CustomField is a content-admin-defined extra input inside an academic section.
// Name is unique within its section.
type CustomField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"` // text, number, date, dropdown
	Required bool   `json:"required"`
}

// SchoolSection holds the built-in subfield toggles for school-level sections
// (tenth, twelth) plus any custom fields.
type SchoolSection struct {
	Percentage    bool          `json:"percentage"`
	YearOfPassing bool          `json:"yearOfPassing"`
	Board         bool          `json:"board"`
	SchoolName    bool          `json:"schoolName"`
	CustomFields  []CustomField `json:"customFields"`
}

// CollegeSection holds the built-in subfield toggles for degree-level sections
// (graduation, postgraduate) plus any custom fields.
type CollegeSection struct {
	Percentage    bool          `json:"percentage"`
	YearOfPassing bool          `json:"yearOfPassing"`
	University    bool          `json:"university"`
	CollegeName   bool          `json:"collegeName"`
	CustomFields  []CustomField `json:"customFields"`
}

// AcademicSubfields maps each academic section to its subfield toggles.
type AcademicSubfields struct {
	Tenth        SchoolSection  `json:"tenth"`
	Twelth       SchoolSection  `json:"twelth"`
	Graduation   CollegeSection `json:"graduation"`
	Postgraduate CollegeSection `json:"postgraduate"`
}

// EmptyEducationFields returns the documented empty shape for EducationFields.
func EmptyEducationFields() EducationFields {
	return EducationFields{}
}

// EmptyAcademicSubfields returns the documented empty shape: every toggle false
// and every custom field list present but empty.
func EmptyAcademicSubfields() AcademicSubfields {
	return AcademicSubfields{
		Tenth:        SchoolSection{CustomFields: []CustomField{}},
		Twelth:       SchoolSection{CustomFields: []CustomField{}},
		Graduation:   CollegeSection{CustomFields: []CustomField{}},
		Postgraduate: CollegeSection{CustomFields: []CustomField{}},
	}
}
