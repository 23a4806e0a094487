package course

import (
	"errors"

	"github.com/campusgate/admissions-api/services"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/campusgate/admissions-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// ProvisionCourseRequest is the payload for the new-course workflow: the course
// itself plus credentials for its two admin accounts.
type ProvisionCourseRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Fee         float64 `json:"fee"`
	Requirement string  `json:"requirement"`
	Contact     string  `json:"contact"`
	SubjectCode string  `json:"subjectCode"`

	ContentAdminEmail         string `json:"contentAdminEmail"`
	ContentAdminPassword      string `json:"contentAdminPassword"`
	VerificationAdminEmail    string `json:"verificationAdminEmail"`
	VerificationAdminPassword string `json:"verificationAdminPassword"`
}

// ProvisionCourse creates a course together with its content-admin and
// verification-admin accounts. Validation is eager: a 400 listing every missing
// or invalid field comes back before anything touches the store.
func (h *CourseHandler) ProvisionCourse(c *fiber.Ctx) error {
	var req ProvisionCourseRequest
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
	fieldErrs.RequireString("subjectCode", req.SubjectCode)
	fieldErrs.RequireEmail("contentAdminEmail", req.ContentAdminEmail)
	fieldErrs.RequirePassword("contentAdminPassword", req.ContentAdminPassword)
	fieldErrs.RequireEmail("verificationAdminEmail", req.VerificationAdminEmail)
	fieldErrs.RequirePassword("verificationAdminPassword", req.VerificationAdminPassword)
	if fieldErrs.HasErrors() {
		return response.ValidationFailed(c, "Missing or invalid fields", fieldErrs.Fields())
	}

	course, err := h.provision.ProvisionCourse(services.ProvisionCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Fee:         req.Fee,
		Requirement: req.Requirement,
		Contact:     req.Contact,
		SubjectCode: req.SubjectCode,

		ContentAdminEmail:         req.ContentAdminEmail,
		ContentAdminPassword:      req.ContentAdminPassword,
		VerificationAdminEmail:    req.VerificationAdminEmail,
		VerificationAdminPassword: req.VerificationAdminPassword,
	})
	if err != nil {
		if errors.Is(err, services.ErrSubjectCodeTaken) {
			return response.Conflict(c, "Course with this subject code already exists")
		}
		return response.StoreError(c, "Failed to provision course", err)
	}

	// The only side effect of provisioning is what the transaction wrote.
	// Admin credentials travel out of band, never by mail from this path.
	return response.Created(c, "Course provisioned successfully", course)
}
