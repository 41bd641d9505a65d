// internals/features/attendance/sessions/model/attendance_violation_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ViolationType string

const (
	ViolationLateArrival       ViolationType = "late_arrival"
	ViolationEarlyDeparture    ViolationType = "early_departure"
	ViolationMissedCheckout    ViolationType = "missed_checkout"
	ViolationLocationViolation ViolationType = "location_violation"
)

func (t ViolationType) Valid() bool {
	switch t {
	case ViolationLateArrival, ViolationEarlyDeparture, ViolationMissedCheckout, ViolationLocationViolation:
		return true
	}
	return false
}

type ViolationSeverity string

const (
	SeverityLow      ViolationSeverity = "low"
	SeverityMedium   ViolationSeverity = "medium"
	SeverityHigh     ViolationSeverity = "high"
	SeverityCritical ViolationSeverity = "critical"
)

func (s ViolationSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type AttendanceViolationModel struct {
	AttendanceViolationID         uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_violation_id" json:"attendance_violation_id"`
	AttendanceViolationEmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_violation_employee;column:attendance_violation_employee_id" json:"attendance_violation_employee_id"`
	AttendanceViolationSessionID  uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_violation_session;column:attendance_violation_session_id" json:"attendance_violation_session_id"`

	AttendanceViolationType         ViolationType     `gorm:"type:varchar(32);not null;index:idx_attendance_violation_type;column:attendance_violation_type" json:"attendance_violation_type"`
	AttendanceViolationSeverity     ViolationSeverity `gorm:"type:varchar(16);not null;column:attendance_violation_severity" json:"attendance_violation_severity"`
	AttendanceViolationDescription  string            `gorm:"type:text;not null;column:attendance_violation_description" json:"attendance_violation_description"`
	AttendanceViolationAutoDetected bool              `gorm:"not null;default:false;column:attendance_violation_auto_detected" json:"attendance_violation_auto_detected"`

	// Resolution
	AttendanceViolationResolved        bool       `gorm:"not null;default:false;index:idx_attendance_violation_resolved;column:attendance_violation_resolved" json:"attendance_violation_resolved"`
	AttendanceViolationResolvedBy      *uuid.UUID `gorm:"type:uuid;column:attendance_violation_resolved_by" json:"attendance_violation_resolved_by,omitempty"`
	AttendanceViolationResolutionNotes *string    `gorm:"type:text;column:attendance_violation_resolution_notes" json:"attendance_violation_resolution_notes,omitempty"`
	AttendanceViolationResolvedAt      *time.Time `gorm:"column:attendance_violation_resolved_at" json:"attendance_violation_resolved_at,omitempty"`

	AttendanceViolationCreatedAt time.Time `gorm:"column:attendance_violation_created_at;autoCreateTime;index:idx_attendance_violation_created" json:"attendance_violation_created_at"`
	AttendanceViolationUpdatedAt time.Time `gorm:"column:attendance_violation_updated_at;autoUpdateTime" json:"attendance_violation_updated_at"`
}

func (AttendanceViolationModel) TableName() string {
	return "attendance_violations"
}

func (m *AttendanceViolationModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceViolationID == uuid.Nil {
		m.AttendanceViolationID = uuid.New()
	}
	return nil
}
