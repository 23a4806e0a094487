package course

import (
	"github.com/campusgate/admissions-api/services"
	"github.com/campusgate/admissions-api/services/storage"
	"gorm.io/gorm"
)

// CourseHandler handles catalog, provisioning, and course content requests
type CourseHandler struct {
	db         *gorm.DB
	provision  *services.ProvisionService
	formSchema *services.FormSchemaService
	spaces     *storage.SpacesClient
}

// NewCourseHandler creates a new course handler. spaces may be nil when object
// storage is not configured; image upload then returns 503.
func NewCourseHandler(db *gorm.DB, spaces *storage.SpacesClient) *CourseHandler {
	return &CourseHandler{
		db:         db,
		provision:  services.NewProvisionService(db),
		formSchema: services.NewFormSchemaService(db),
		spaces:     spaces,
	}
}
