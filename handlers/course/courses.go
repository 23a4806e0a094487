package course

import (
	"errors"

	"github.com/campusgate/admissions-api/model"
	"github.com/campusgate/admissions-api/utils/middleware"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/campusgate/admissions-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListCourses returns the catalog scoped by the caller's role. Course admins see
// only the courses assigned to them; admins and students see everything.
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	userID, _ := middleware.GetUserID(c)

	courses := []model.Course{}
	query := h.db.Order("id ASC")

	switch role {
	case model.RoleContentAdmin:
		query = query.Where("content_admin_id = ?", userID)
	case model.RoleVerificationAdmin:
		query = query.Where("verification_admin_id = ?", userID)
	case model.RoleAdmin, model.RoleStudent:
		// unfiltered
	default:
		return response.Forbidden(c, "Insufficient permissions")
	}

	if err := query.Find(&courses).Error; err != nil {
		return response.StoreError(c, "Failed to fetch courses", err)
	}

	return response.Success(c, courses)
}

// GetCourse returns one course by ID. Public so applicants can browse the
// catalog before creating an account.
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("courseId")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	return response.Success(c, course)
}

// UpdateCourseRequest carries the catalog fields an admin may rewrite.
type UpdateCourseRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Fee         float64 `json:"fee"`
	Requirement string  `json:"requirement"`
	Contact     string  `json:"contact"`
}

// UpdateCourse rewrites a course's catalog fields. All fields are required.
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("courseId")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var fieldErrs validation.FieldErrors
	fieldErrs.RequireString("title", req.Title)
	fieldErrs.RequireString("description", req.Description)
	fieldErrs.RequirePositive("duration", float64(req.Duration))
	fieldErrs.RequirePositive("fee", req.Fee)
	fieldErrs.RequireString("requirement", req.Requirement)
	fieldErrs.RequireString("contact", req.Contact)
	if fieldErrs.HasErrors() {
		return response.ValidationFailed(c, "Missing or invalid fields", fieldErrs.Fields())
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Duration = req.Duration
	course.Fee = req.Fee
	course.Requirement = req.Requirement
	course.Contact = req.Contact

	if err := h.db.Save(&course).Error; err != nil {
		return response.StoreError(c, "Failed to update course", err)
	}

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse soft-deletes a course. The form schema and applications stay
// behind; their reads degrade to 404 once the course is gone.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("courseId")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	if err := h.db.Delete(&course).Error; err != nil {
		return response.StoreError(c, "Failed to delete course", err)
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
