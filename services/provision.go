package services

import (
	"errors"
	"strings"

	"github.com/campusgate/admissions-api/model"
	"github.com/campusgate/admissions-api/utils/auth"
	"gorm.io/gorm"
)

var ErrSubjectCodeTaken = errors.New("course with this subject code already exists")

// ProvisionService runs the "new course" workflow: create the course together
// with its content-admin and verification-admin accounts in one transaction.
type ProvisionService struct {
	db *gorm.DB
}

// NewProvisionService creates a new provision service
func NewProvisionService(db *gorm.DB) *ProvisionService {
	return &ProvisionService{db: db}
}

// ProvisionCourseInput carries the validated fields of a provisioning request.
type ProvisionCourseInput struct {
	Title       string
	Description string
	Duration    int
	Fee         float64
	Requirement string
	Contact     string
	SubjectCode string

	ContentAdminEmail         string
	ContentAdminPassword      string
	VerificationAdminEmail    string
	VerificationAdminPassword string
}

// ProvisionCourse creates the course and both admin accounts atomically. A course
// without both admin references is unusable and a user left in a half-updated
// role is a security hazard, so any failure rolls the whole unit back.
func (s *ProvisionService) ProvisionCourse(in ProvisionCourseInput) (*model.Course, error) {
	var course model.Course

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Course
		if err := tx.Where("LOWER(subject_code) = LOWER(?)", in.SubjectCode).First(&existing).Error; err == nil {
			return ErrSubjectCodeTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		course = model.Course{
			Title:       in.Title,
			Description: in.Description,
			Duration:    in.Duration,
			Fee:         in.Fee,
			Requirement: in.Requirement,
			Contact:     in.Contact,
			SubjectCode: in.SubjectCode,
		}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}

		contentAdmin, err := upsertCourseAdmin(tx, in.ContentAdminEmail, in.ContentAdminPassword, model.RoleContentAdmin, course.ID)
		if err != nil {
			return err
		}

		verificationAdmin, err := upsertCourseAdmin(tx, in.VerificationAdminEmail, in.VerificationAdminPassword, model.RoleVerificationAdmin, course.ID)
		if err != nil {
			return err
		}

		course.ContentAdminID = &contentAdmin.ID
		course.VerificationAdminID = &verificationAdmin.ID
		return tx.Save(&course).Error
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

// upsertCourseAdmin assigns an admin account for a course. An existing user is
// reused: its role is overwritten to the assigned role and the course is appended
// to its affiliations if absent. Role-overwrite on reuse is intended behavior.
func upsertCourseAdmin(tx *gorm.DB, email, password, role string, courseID uint) (*model.User, error) {
	var user model.User
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.Role != role {
			user.Role = role
			if err := tx.Save(&user).Error; err != nil {
				return nil, err
			}
		}
		if err := appendAffiliation(tx, user.ID, courseID); err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user = model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         emailLocalPart(email),
		Role:         role,
		Verified:     true,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	if err := appendAffiliation(tx, user.ID, courseID); err != nil {
		return nil, err
	}
	return &user, nil
}

func appendAffiliation(tx *gorm.DB, userID, courseID uint) error {
	var count int64
	if err := tx.Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&model.UserCourse{UserID: userID, CourseID: courseID}).Error
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
