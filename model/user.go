package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Role decides which catalog and schema operations a caller may run.
const (
	RoleStudent             = "student"
	RoleContentAdmin        = "content_admin"
	RoleVerificationAdmin   = "verification_admin"
	RoleVerificationOfficer = "verification_officer"
	RoleAdmin               = "admin"
)

// AllowedAdminRoles are the roles an admin may assign when creating staff accounts.
var AllowedAdminRoles = []string{RoleAdmin, RoleContentAdmin, RoleVerificationOfficer, RoleVerificationAdmin}

// IsAllowedAdminRole reports whether role may be assigned through account
// management. Student accounts only come in through self-registration.
func IsAllowedAdminRole(role string) bool {
	for _, r := range AllowedAdminRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a registered account: a student, a portal admin, or one of the
// per-course staff roles created by the provisioning workflow.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(32);default:'student'" json:"role"`
	Verified     bool           `gorm:"default:false" json:"verified"`

	// Relationships
	Courses      []UserCourse      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
	Applications []ApplicationForm `gorm:"foreignKey:UserID" json:"-"`
}

// UserCourse is a user's course affiliation. Provisioning appends a row here for
// each course a staff account is assigned to.
type UserCourse struct {
	UserID     uint  `gorm:"primaryKey" json:"user_id"`
	CourseID   uint  `gorm:"primaryKey" json:"course_id"`
	AssignedAt int64 `gorm:"autoCreateTime" json:"assigned_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
