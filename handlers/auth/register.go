package auth

import (
	"log"

	"github.com/campusgate/admissions-api/model"
	authutil "github.com/campusgate/admissions-api/utils/auth"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/campusgate/admissions-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// RegisterRequest represents a student registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // in seconds
}

// Register creates a student account. Self-registration always yields the
// student role; admin accounts only exist through provisioning or the admin API.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return response.BadRequest(c, "Email, password, and name are required")
	}

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 6 characters long")
	}

	// Struct tag validation catches what the explicit checks above do not
	if err := h.validator.ValidateStruct(&req); err != nil {
		for _, msg := range validation.FormatValidationErrors(err) {
			return response.BadRequest(c, msg)
		}
		return response.BadRequest(c, "Invalid request")
	}

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         validation.SanitizeString(req.Name),
		Role:         model.RoleStudent,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	// Best effort: registration succeeds whether or not the mail goes out
	go func(email, name string) {
		if err := h.emailService.SendWelcomeEmail(email, name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}(user.Email, user.Name)

	res := RegisterResponse{
		User: UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			Verified:  user.Verified,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
		Token:     token,
		ExpiresIn: int(authutil.TokenExpiry.Seconds()),
	}

	return response.Created(c, "User registered successfully", res)
}
