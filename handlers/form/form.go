package form

import (
	"errors"

	"github.com/campusgate/admissions-api/model"
	"github.com/campusgate/admissions-api/services"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FormHandler handles application form structure requests
type FormHandler struct {
	db         *gorm.DB
	formSchema *services.FormSchemaService
}

// NewFormHandler creates a new form handler
func NewFormHandler(db *gorm.DB) *FormHandler {
	return &FormHandler{
		db:         db,
		formSchema: services.NewFormSchemaService(db),
	}
}

// SaveFormStructureRequest wraps the target course and the structure payload.
type SaveFormStructureRequest struct {
	CourseID      uint                    `json:"courseId"`
	FormStructure *services.FormStructure `json:"formStructure"`
}

// SaveFormStructure upserts a course's application form schema. Omitted fields
// keep their stored value on update and default to the empty shape on create.
func (h *FormHandler) SaveFormStructure(c *fiber.Ctx) error {
	var req SaveFormStructureRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CourseID == 0 || req.FormStructure == nil {
		return response.BadRequest(c, "courseId and formStructure are required")
	}

	if !model.IsValidProgramType(req.FormStructure.ProgramType) {
		return response.BadRequest(c, "programType must be UG or PG")
	}

	if err := services.ValidateStructure(req.FormStructure); err != nil {
		return response.BadRequest(c, err.Error())
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	view, created, err := h.formSchema.SaveFormStructure(req.CourseID, req.FormStructure)
	if err != nil {
		return response.StoreError(c, "Failed to save form structure", err)
	}

	if created {
		return response.Created(c, "Form structure created successfully", view)
	}
	return response.SuccessWithMessage(c, "Form structure updated successfully", view)
}

// GetFormStructure returns a course's form schema with every structural field
// present; absent stored fields come back defaulted.
func (h *FormHandler) GetFormStructure(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("courseId")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	view, err := h.formSchema.GetFormStructure(uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrFormNotFound) {
			return response.NotFound(c, "Form structure not found for this course")
		}
		return response.StoreError(c, "Failed to fetch form structure", err)
	}

	return response.Success(c, view)
}
