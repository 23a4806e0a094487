package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("jo@college.edu"))
	assert.True(t, ValidateEmail("jo.smith+tag@sub.college.edu"))

	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("no-at-sign"))
	assert.False(t, ValidateEmail("two@@college.edu"))
	assert.False(t, ValidateEmail("spaces in@college.edu"))
	assert.False(t, ValidateEmail("jo@nodot"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Jo", SanitizeString("  Jo  "))
	assert.Equal(t, "Jo", SanitizeString("Jo\x00"))
}

func TestFieldErrorsCollectsInOrder(t *testing.T) {
	var fe FieldErrors
	fe.RequireString("title", "")
	fe.RequireString("contact", "cs@college.edu")
	fe.RequirePositive("fee", 0)
	fe.RequireEmail("adminEmail", "nope")
	fe.RequirePassword("adminPassword", "tiny")

	assert.True(t, fe.HasErrors())
	assert.Equal(t, []string{
		"title",
		"fee",
		"invalid adminEmail format",
		"adminPassword too short (min 6 chars)",
	}, fe.Fields())
}

func TestFieldErrorsEmpty(t *testing.T) {
	var fe FieldErrors
	fe.RequireString("title", "B.Tech")
	fe.RequirePositive("fee", 85000)
	fe.RequireEmail("adminEmail", "jo@college.edu")
	fe.RequirePassword("adminPassword", "secret1")

	assert.False(t, fe.HasErrors())
	assert.Empty(t, fe.Fields())
}
