package user

import (
	"errors"
	"time"

	"github.com/campusgate/admissions-api/model"
	authutil "github.com/campusgate/admissions-api/utils/auth"
	"github.com/campusgate/admissions-api/utils/middleware"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/campusgate/admissions-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserHandler handles administrative account management
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// UserResponse is the account shape returned by management endpoints.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ListUsers returns all accounts, optionally filtered by role.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users := []model.User{}
	query := h.db.Order("id ASC")

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Find(&users).Error; err != nil {
		return response.StoreError(c, "Failed to fetch users", err)
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, toUserResponse(&users[i]))
	}

	return response.Success(c, res)
}

// GetUser returns one account. Admins see anyone; other callers only themselves.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	callerID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && callerID != uint(id) {
		return response.Forbidden(c, "You can only view your own account")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.StoreError(c, "Failed to fetch user", err)
	}

	return response.Success(c, toUserResponse(&user))
}

// CreateUserRequest is an admin's payload for creating a staff account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CreateUser lets an admin create a staff account. Student accounts are not
// created here; students register themselves.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var fieldErrs validation.FieldErrors
	fieldErrs.RequireString("name", req.Name)
	fieldErrs.RequireEmail("email", req.Email)
	fieldErrs.RequirePassword("password", req.Password)
	if !model.IsAllowedAdminRole(req.Role) {
		fieldErrs.Add("invalid role")
	}
	if fieldErrs.HasErrors() {
		return response.ValidationFailed(c, "Missing or invalid fields", fieldErrs.Fields())
	}

	var existing model.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         validation.SanitizeString(req.Name),
		Role:         req.Role,
		Verified:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.StoreError(c, "Failed to create user", err)
	}

	return response.Created(c, "User created successfully", toUserResponse(&user))
}

// DeleteUser soft-deletes an account. Courses referencing the user keep their
// reference; those reads degrade rather than fail.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	callerID, _ := middleware.GetUserID(c)
	if callerID == uint(id) {
		return response.BadRequest(c, "You cannot delete your own account")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.StoreError(c, "Failed to fetch user", err)
	}

	if err := h.db.Delete(&user).Error; err != nil {
		return response.StoreError(c, "Failed to delete user", err)
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
