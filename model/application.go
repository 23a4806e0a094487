package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Application statuses used by the review workflow.
const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusVerified  = "verified"
	ApplicationStatusRejected  = "rejected"
)

// ApplicationForm is a student's submission for a course. The payload is
// free-form: the server validates presence only and stores whatever shape the
// course's FormSchema asked the client to collect.
type ApplicationForm struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID  uint           `gorm:"not null;index" json:"courseId"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Status    string         `gorm:"type:varchar(20);default:'submitted'" json:"status"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data"`                // free-form answers keyed by field name
	Documents datatypes.JSON `gorm:"type:jsonb" json:"documents,omitempty"` // []ApplicationDocument
}

// ApplicationDocument records one uploaded document attached to an application.
type ApplicationDocument struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	PageCount  int    `json:"pageCount,omitempty"`
	UploadedAt int64  `json:"uploadedAt"`
}
