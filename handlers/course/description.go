package course

import (
	"encoding/json"
	"errors"

	"github.com/campusgate/admissions-api/model"
	"github.com/campusgate/admissions-api/services/storage"
	"github.com/campusgate/admissions-api/utils/middleware"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AddDescriptionRequest carries the descriptive content block a content admin
// fills in after provisioning.
type AddDescriptionRequest struct {
	ProgramDescription           string                   `json:"programDescription"`
	Image1                       string                   `json:"image1"`
	Image2                       string                   `json:"image2"`
	Vision                       string                   `json:"vision"`
	Mission                      string                   `json:"mission"`
	YearsOfDepartment            int                      `json:"yearsOfDepartment"`
	Syllabus                     []model.SyllabusSemester `json:"syllabus"`
	ProgramEducationalObjectives string                   `json:"programEducationalObjectives"`
	ProgramOutcomes              string                   `json:"programOutcomes"`
	ProgramType                  string                   `json:"programType"`
}

// AddDescription sets a course's content block. Only the course's assigned
// content admin may write it. The form schema's program type follows the course.
func (h *CourseHandler) AddDescription(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("courseId")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req AddDescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if !model.IsValidProgramType(req.ProgramType) {
		return response.BadRequest(c, "programType must be UG or PG")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	if course.ContentAdminID == nil || *course.ContentAdminID != userID {
		return response.Forbidden(c, "You are not the content admin of this course")
	}

	course.ProgramDescription = req.ProgramDescription
	course.Image1 = req.Image1
	course.Image2 = req.Image2
	course.Vision = req.Vision
	course.Mission = req.Mission
	course.YearsOfDepartment = req.YearsOfDepartment
	course.ProgramEducationalObjectives = req.ProgramEducationalObjectives
	course.ProgramOutcomes = req.ProgramOutcomes
	course.ProgramType = req.ProgramType

	if req.Syllabus != nil {
		data, err := json.Marshal(req.Syllabus)
		if err != nil {
			return response.BadRequest(c, "Invalid syllabus")
		}
		course.Syllabus = datatypes.JSON(data)
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.StoreError(c, "Failed to update course", err)
	}

	if _, err := h.formSchema.UpsertProgramType(course.ID, req.ProgramType); err != nil {
		return response.StoreError(c, "Failed to sync form schema", err)
	}

	return response.SuccessWithMessage(c, "Course description updated successfully", course)
}

// VerifyCodeRequest carries the subject code to resolve.
type VerifyCodeRequest struct {
	SubjectCode string `json:"subjectCode"`
}

// VerifyCode resolves a subject code to a course ID, case-insensitively. Only
// the course's own content admin gets a positive answer.
func (h *CourseHandler) VerifyCode(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SubjectCode == "" {
		return response.BadRequest(c, "subjectCode is required")
	}

	var course model.Course
	if err := h.db.Where("LOWER(subject_code) = LOWER(?)", req.SubjectCode).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "No course found with this subject code")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	if course.ContentAdminID == nil || *course.ContentAdminID != userID {
		return response.Forbidden(c, "You are not the content admin of this course")
	}

	return response.Success(c, fiber.Map{"courseId": course.ID})
}

// UploadImage stores a course image in object storage and records its public
// URL in the requested slot (image1 or image2).
func (h *CourseHandler) UploadImage(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Object storage is not configured", "STORAGE_UNAVAILABLE")
	}

	courseID, err := c.ParamsInt("courseId")
	if err != nil || courseID <= 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	slot := c.FormValue("slot")
	if slot != "image1" && slot != "image2" {
		return response.BadRequest(c, "slot must be image1 or image2")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "image file is required")
	}

	contentType := storage.GetContentType(file.Filename)
	if contentType != "image/png" && contentType != "image/jpeg" && contentType != "image/webp" {
		return response.BadRequest(c, "Only PNG, JPEG, and WebP images are supported")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	if course.ContentAdminID == nil || *course.ContentAdminID != userID {
		return response.Forbidden(c, "You are not the content admin of this course")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	key := storage.GenerateKey(storage.CourseImagePrefix, file.Filename)
	url, err := h.spaces.UploadFile(c.Context(), key, src, contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to upload image")
	}

	if slot == "image1" {
		course.Image1 = url
	} else {
		course.Image2 = url
	}
	if err := h.db.Save(&course).Error; err != nil {
		return response.StoreError(c, "Failed to update course", err)
	}

	return response.SuccessWithMessage(c, "Image uploaded successfully", fiber.Map{"url": url})
}
