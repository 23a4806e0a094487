package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campusgate/admissions-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrFormNotFound = errors.New("form structure not found")

// FormSchemaService owns the per-course form structure: upsert with
// coalesce-on-nil merge semantics and reads that always return a complete shape.
type FormSchemaService struct {
	db *gorm.DB
}

// NewFormSchemaService creates a new form schema service
func NewFormSchemaService(db *gorm.DB) *FormSchemaService {
	return &FormSchemaService{db: db}
}

// FormStructure is the write payload. Nil fields mean "leave unchanged" on
// update and "default to the empty shape" on create. ProgramType is always
// overwritten when supplied.
type FormStructure struct {
	ProgramType               string                   `json:"programType"`
	EducationFields           *model.EducationFields   `json:"educationFields"`
	Sections                  *[]string                `json:"sections"`
	RequiredAcademicFields    *[]string                `json:"requiredAcademicFields"`
	RequiredAcademicSubfields *model.AcademicSubfields `json:"requiredAcademicSubfields"`
	RequiredDocuments         *[]string                `json:"requiredDocuments"`
}

// FormStructureView is the read shape. Every structural field is present;
// absent stored fields come back defaulted, never as a partial schema.
type FormStructureView struct {
	CourseID                  uint                    `json:"courseId"`
	ProgramType               string                  `json:"programType"`
	EducationFields           model.EducationFields   `json:"educationFields"`
	Sections                  []string                `json:"sections"`
	RequiredAcademicFields    []string                `json:"requiredAcademicFields"`
	RequiredAcademicSubfields model.AcademicSubfields `json:"requiredAcademicSubfields"`
	RequiredDocuments         []string                `json:"requiredDocuments"`
}

// ValidateStructure checks the custom field definitions: supported types and
// names unique within their section.
func ValidateStructure(fs *FormStructure) error {
	if fs.RequiredAcademicSubfields == nil {
		return nil
	}
	sections := map[string][]model.CustomField{
		"tenth":        fs.RequiredAcademicSubfields.Tenth.CustomFields,
		"twelth":       fs.RequiredAcademicSubfields.Twelth.CustomFields,
		"graduation":   fs.RequiredAcademicSubfields.Graduation.CustomFields,
		"postgraduate": fs.RequiredAcademicSubfields.Postgraduate.CustomFields,
	}
	for section, fields := range sections {
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			if f.Name == "" {
				return fmt.Errorf("custom field in section %q is missing a name", section)
			}
			if seen[f.Name] {
				return fmt.Errorf("duplicate custom field %q in section %q", f.Name, section)
			}
			seen[f.Name] = true
			if !model.IsValidFieldType(f.Type) {
				return fmt.Errorf("custom field %q in section %q has unsupported type %q", f.Name, section, f.Type)
			}
		}
	}
	return nil
}

// SaveFormStructure upserts the schema for a course. Existing schemas keep any
// field the payload omits; a new schema gets the documented empty shape for
// every omitted field. Returns the resulting complete view.
func (s *FormSchemaService) SaveFormStructure(courseID uint, fs *FormStructure) (*FormStructureView, bool, error) {
	var schema model.FormSchema
	err := s.db.Where("course_id = ?", courseID).First(&schema).Error
	created := false

	switch {
	case err == nil:
		schema.ProgramType = fs.ProgramType
		if err := mergeStructure(&schema, fs); err != nil {
			return nil, false, err
		}
		if err := s.db.Save(&schema).Error; err != nil {
			return nil, false, err
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
		schema = model.FormSchema{
			CourseID:    courseID,
			ProgramType: fs.ProgramType,
		}
		applyDefaults(fs)
		if err := mergeStructure(&schema, fs); err != nil {
			return nil, false, err
		}
		if err := s.db.Create(&schema).Error; err != nil {
			return nil, false, err
		}

	default:
		return nil, false, err
	}

	view, err := buildView(&schema)
	return view, created, err
}

// GetFormStructure returns the stored schema for a course with every absent
// structural field defaulted to its empty shape.
func (s *FormSchemaService) GetFormStructure(courseID uint) (*FormStructureView, error) {
	var schema model.FormSchema
	if err := s.db.Where("course_id = ?", courseID).First(&schema).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return buildView(&schema)
}

// UpsertProgramType pins the schema's program type when the content admin sets
// the course description. Creates the schema lazily if none exists yet.
func (s *FormSchemaService) UpsertProgramType(courseID uint, programType string) (*model.FormSchema, error) {
	var schema model.FormSchema
	err := s.db.Where("course_id = ?", courseID).First(&schema).Error
	if err == nil {
		schema.ProgramType = programType
		if err := s.db.Save(&schema).Error; err != nil {
			return nil, err
		}
		return &schema, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	schema = model.FormSchema{CourseID: courseID, ProgramType: programType}
	if err := s.db.Create(&schema).Error; err != nil {
		return nil, err
	}
	return &schema, nil
}

// applyDefaults fills nil payload fields with their documented empty shapes.
func applyDefaults(fs *FormStructure) {
	if fs.EducationFields == nil {
		ef := model.EmptyEducationFields()
		fs.EducationFields = &ef
	}
	if fs.Sections == nil {
		sections := []string{}
		fs.Sections = &sections
	}
	if fs.RequiredAcademicFields == nil {
		fields := []string{}
		fs.RequiredAcademicFields = &fields
	}
	if fs.RequiredAcademicSubfields == nil {
		sub := model.EmptyAcademicSubfields()
		fs.RequiredAcademicSubfields = &sub
	}
	if fs.RequiredDocuments == nil {
		docs := []string{}
		fs.RequiredDocuments = &docs
	}
}

// mergeStructure writes each non-nil payload field into the schema's JSONB columns.
func mergeStructure(schema *model.FormSchema, fs *FormStructure) error {
	if fs.EducationFields != nil {
		data, err := json.Marshal(fs.EducationFields)
		if err != nil {
			return err
		}
		schema.EducationFields = datatypes.JSON(data)
	}
	if fs.Sections != nil {
		data, err := json.Marshal(fs.Sections)
		if err != nil {
			return err
		}
		schema.Sections = datatypes.JSON(data)
	}
	if fs.RequiredAcademicFields != nil {
		data, err := json.Marshal(fs.RequiredAcademicFields)
		if err != nil {
			return err
		}
		schema.RequiredAcademicFields = datatypes.JSON(data)
	}
	if fs.RequiredAcademicSubfields != nil {
		normalizeSubfields(fs.RequiredAcademicSubfields)
		data, err := json.Marshal(fs.RequiredAcademicSubfields)
		if err != nil {
			return err
		}
		schema.RequiredAcademicSubfields = datatypes.JSON(data)
	}
	if fs.RequiredDocuments != nil {
		data, err := json.Marshal(fs.RequiredDocuments)
		if err != nil {
			return err
		}
		schema.RequiredDocuments = datatypes.JSON(data)
	}
	return nil
}

// buildView unmarshals the stored columns, substituting empty shapes for any
// column that was never written.
func buildView(schema *model.FormSchema) (*FormStructureView, error) {
	view := &FormStructureView{
		CourseID:                  schema.CourseID,
		ProgramType:               schema.ProgramType,
		EducationFields:           model.EmptyEducationFields(),
		Sections:                  []string{},
		RequiredAcademicFields:    []string{},
		RequiredAcademicSubfields: model.EmptyAcademicSubfields(),
		RequiredDocuments:         []string{},
	}

	if len(schema.EducationFields) > 0 {
		if err := json.Unmarshal(schema.EducationFields, &view.EducationFields); err != nil {
			return nil, err
		}
	}
	if len(schema.Sections) > 0 {
		if err := json.Unmarshal(schema.Sections, &view.Sections); err != nil {
			return nil, err
		}
	}
	if len(schema.RequiredAcademicFields) > 0 {
		if err := json.Unmarshal(schema.RequiredAcademicFields, &view.RequiredAcademicFields); err != nil {
			return nil, err
		}
	}
	if len(schema.RequiredAcademicSubfields) > 0 {
		if err := json.Unmarshal(schema.RequiredAcademicSubfields, &view.RequiredAcademicSubfields); err != nil {
			return nil, err
		}
		normalizeSubfields(&view.RequiredAcademicSubfields)
	}
	if len(schema.RequiredDocuments) > 0 {
		if err := json.Unmarshal(schema.RequiredDocuments, &view.RequiredDocuments); err != nil {
			return nil, err
		}
	}

	return view, nil
}

// normalizeSubfields keeps custom field lists non-nil so clients always see arrays.
func normalizeSubfields(sub *model.AcademicSubfields) {
	if sub.Tenth.CustomFields == nil {
		sub.Tenth.CustomFields = []model.CustomField{}
	}
	if sub.Twelth.CustomFields == nil {
		sub.Twelth.CustomFields = []model.CustomField{}
	}
	if sub.Graduation.CustomFields == nil {
		sub.Graduation.CustomFields = []model.CustomField{}
	}
	if sub.Postgraduate.CustomFields == nil {
		sub.Postgraduate.CustomFields = []model.CustomField{}
	}
}
