package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// EmailRegex is a simple email validation regex
	EmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// PasswordMinLength is the minimum password length for provisioned accounts
	PasswordMinLength = 6
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				errors[field] = fmt.Sprintf("%s is required", e.Field())
			case "email":
				errors[field] = "Invalid email format"
			case "min":
				errors[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
			case "max":
				errors[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
			case "gt":
				errors[field] = fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
			case "oneof":
				errors[field] = fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
			default:
				errors[field] = fmt.Sprintf("%s is invalid", e.Field())
			}
		}
	}

	return errors
}

// ValidateEmail checks if an email is valid
func ValidateEmail(email string) bool {
	if len(email) < 3 || len(email) > 254 {
		return false
	}
	return EmailRegex.MatchString(email)
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}

// FieldErrors collects missing or invalid field names for fail-fast validation.
// The provisioning workflow returns the collected names in one 400 payload.
type FieldErrors struct {
	fields []string
}

// RequireString records name when value is empty after trimming
func (f *FieldErrors) RequireString(name, value string) {
	if strings.TrimSpace(value) == "" {
		f.fields = append(f.fields, name)
	}
}

// RequirePositive records name when value is not a positive number
func (f *FieldErrors) RequirePositive(name string, value float64) {
	if value <= 0 {
		f.fields = append(f.fields, name)
	}
}

// RequireEmail records a format error when value is not a plausible email
func (f *FieldErrors) RequireEmail(name, value string) {
	if !ValidateEmail(value) {
		f.fields = append(f.fields, "invalid "+name+" format")
	}
}

// RequirePassword records a length error when value is below the minimum
func (f *FieldErrors) RequirePassword(name, value string) {
	if len(value) < PasswordMinLength {
		f.fields = append(f.fields, fmt.Sprintf("%s too short (min %d chars)", name, PasswordMinLength))
	}
}

// Add records an arbitrary field error
func (f *FieldErrors) Add(name string) {
	f.fields = append(f.fields, name)
}

// HasErrors reports whether any field was recorded
func (f *FieldErrors) HasErrors() bool {
	return len(f.fields) > 0
}

// Fields returns the recorded field names in order
func (f *FieldErrors) Fields() []string {
	return f.fields
}
