package application

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/campusgate/admissions-api/model"
	"github.com/campusgate/admissions-api/services/storage"
	"github.com/campusgate/admissions-api/utils/middleware"
	"github.com/campusgate/admissions-api/utils/pdfvalidation"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationHandler handles student application requests
type ApplicationHandler struct {
	db     *gorm.DB
	spaces *storage.SpacesClient
}

// NewApplicationHandler creates a new application handler. spaces may be nil
// when object storage is not configured; document upload then returns 503.
func NewApplicationHandler(db *gorm.DB, spaces *storage.SpacesClient) *ApplicationHandler {
	return &ApplicationHandler{
		db:     db,
		spaces: spaces,
	}
}

// SubmitApplicationRequest is a student's submission payload. Data is free-form;
// the server checks presence only.
type SubmitApplicationRequest struct {
	CourseID uint            `json:"courseId"`
	Data     json.RawMessage `json:"data"`
}

// SubmitApplication records a student's application for a course.
func (h *ApplicationHandler) SubmitApplication(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CourseID == 0 || len(req.Data) == 0 {
		return response.BadRequest(c, "courseId and data are required")
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.StoreError(c, "Failed to fetch course", err)
	}

	app := model.ApplicationForm{
		CourseID: req.CourseID,
		UserID:   userID,
		Status:   model.ApplicationStatusSubmitted,
		Data:     datatypes.JSON(req.Data),
	}

	if err := h.db.Create(&app).Error; err != nil {
		return response.StoreError(c, "Failed to submit application", err)
	}

	return response.Created(c, "Application submitted successfully", app)
}

// ListApplications returns all applications, optionally filtered by course.
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	apps := []model.ApplicationForm{}
	query := h.db.Order("id ASC")

	if courseID := c.QueryInt("courseId"); courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&apps).Error; err != nil {
		return response.StoreError(c, "Failed to fetch applications", err)
	}

	return response.Success(c, apps)
}

// GetApplication returns one application. Students only see their own; admin
// roles see any.
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	appID, err := c.ParamsInt("id")
	if err != nil || appID <= 0 {
		return response.BadRequest(c, "Invalid application ID")
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	var app model.ApplicationForm
	if err := h.db.First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.StoreError(c, "Failed to fetch application", err)
	}

	if role == model.RoleStudent && app.UserID != userID {
		return response.Forbidden(c, "You can only view your own applications")
	}

	return response.Success(c, app)
}

// UpdateStatusRequest carries a reviewer's verdict.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus records a verification verdict on an application.
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	appID, err := c.ParamsInt("id")
	if err != nil || appID <= 0 {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Status != model.ApplicationStatusVerified && req.Status != model.ApplicationStatusRejected {
		return response.BadRequest(c, "status must be verified or rejected")
	}

	var app model.ApplicationForm
	if err := h.db.First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.StoreError(c, "Failed to fetch application", err)
	}

	app.Status = req.Status
	if err := h.db.Save(&app).Error; err != nil {
		return response.StoreError(c, "Failed to update application", err)
	}

	return response.SuccessWithMessage(c, "Application status updated", app)
}

// DeleteApplication removes an application.
func (h *ApplicationHandler) DeleteApplication(c *fiber.Ctx) error {
	appID, err := c.ParamsInt("id")
	if err != nil || appID <= 0 {
		return response.BadRequest(c, "Invalid application ID")
	}

	var app model.ApplicationForm
	if err := h.db.First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.StoreError(c, "Failed to fetch application", err)
	}

	if err := h.db.Delete(&app).Error; err != nil {
		return response.StoreError(c, "Failed to delete application", err)
	}

	return response.SuccessWithMessage(c, "Application deleted successfully", nil)
}

// UploadDocument validates an uploaded PDF and attaches its stored URL to the
// student's application.
func (h *ApplicationHandler) UploadDocument(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Object storage is not configured", "STORAGE_UNAVAILABLE")
	}

	appID, err := c.ParamsInt("id")
	if err != nil || appID <= 0 {
		return response.BadRequest(c, "Invalid application ID")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	docName := c.FormValue("name")
	if docName == "" {
		return response.BadRequest(c, "name is required")
	}

	file, err := c.FormFile("document")
	if err != nil {
		return response.BadRequest(c, "document file is required")
	}

	var app model.ApplicationForm
	if err := h.db.First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.StoreError(c, "Failed to fetch application", err)
	}

	if app.UserID != userID {
		return response.Forbidden(c, "You can only upload documents to your own application")
	}

	result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.ApplicationDocumentLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to validate document")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	key := storage.GenerateKey(storage.ApplicationDocumentPrefix, file.Filename)
	url, err := h.spaces.UploadFile(c.Context(), key, src, "application/pdf")
	if err != nil {
		return response.InternalServerError(c, "Failed to upload document")
	}

	docs := []model.ApplicationDocument{}
	if len(app.Documents) > 0 {
		if err := json.Unmarshal(app.Documents, &docs); err != nil {
			return response.InternalServerError(c, "Failed to read stored documents")
		}
	}
	docs = append(docs, model.ApplicationDocument{
		Name:       docName,
		URL:        url,
		PageCount:  result.PageCount,
		UploadedAt: time.Now().Unix(),
	})

	data, err := json.Marshal(docs)
	if err != nil {
		return response.InternalServerError(c, "Failed to record document")
	}
	app.Documents = datatypes.JSON(data)

	if err := h.db.Save(&app).Error; err != nil {
		return response.StoreError(c, "Failed to update application", err)
	}

	return response.SuccessWithMessage(c, "Document uploaded successfully", fiber.Map{
		"url":       url,
		"pageCount": result.PageCount,
	})
}
