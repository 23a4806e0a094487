package cron

import (
	"fmt"
	"time"

	"github.com/campusgate/admissions-api/model"
)

// Soft-deleted rows and cron logs older than this are removed permanently.
const retentionDays = 30

// ReportPendingApplications counts submitted applications still waiting for a
// verdict and records the number for operators.
func (m *CronManager) ReportPendingApplications() {
	jobName := "report_pending_applications"

	var pending int64
	err := m.db.Model(&model.ApplicationForm{}).
		Where("status = ?", model.ApplicationStatusSubmitted).
		Count(&pending).Error
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("%d applications awaiting verification", pending))
}

// PurgeSoftDeleted permanently removes soft-deleted users and courses once the
// retention window has passed.
func (m *CronManager) PurgeSoftDeleted() {
	jobName := "purge_soft_deleted"
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	users := m.db.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&model.User{})
	if users.Error != nil {
		m.logJobError(jobName, users.Error)
		return
	}

	courses := m.db.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&model.Course{})
	if courses.Error != nil {
		m.logJobError(jobName, courses.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("purged %d users, %d courses", users.RowsAffected, courses.RowsAffected))
}

// CleanupCronLogs trims job log rows older than the retention window.
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := m.db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("removed %d old log rows", result.RowsAffected))
}
