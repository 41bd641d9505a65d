// internals/features/attendance/sessions/model/attendance_session_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionCheckedIn  SessionStatus = "checked_in"
	SessionOnBreak    SessionStatus = "on_break"
	SessionCheckedOut SessionStatus = "checked_out"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionCheckedIn, SessionOnBreak, SessionCheckedOut:
		return true
	}
	return false
}

// One row per (employee, session_date); mutated in place during the day.
type AttendanceSessionModel struct {
	AttendanceSessionID         uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_session_id" json:"attendance_session_id"`
	AttendanceSessionEmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_session_employee_date,priority:1;column:attendance_session_employee_id" json:"attendance_session_employee_id"`
	AttendanceSessionDate       time.Time `gorm:"type:date;not null;uniqueIndex:uq_attendance_session_employee_date,priority:2;index:idx_attendance_session_date;column:attendance_session_date" json:"attendance_session_date"`

	AttendanceSessionCheckInTime    *time.Time `gorm:"column:attendance_session_check_in_time" json:"attendance_session_check_in_time,omitempty"`
	AttendanceSessionCheckOutTime   *time.Time `gorm:"column:attendance_session_check_out_time" json:"attendance_session_check_out_time,omitempty"`
	AttendanceSessionBreakStartTime *time.Time `gorm:"column:attendance_session_break_start_time" json:"attendance_session_break_start_time,omitempty"`
	AttendanceSessionBreakEndTime   *time.Time `gorm:"column:attendance_session_break_end_time" json:"attendance_session_break_end_time,omitempty"`

	AttendanceSessionTotalBreakMinutes int           `gorm:"not null;default:0;column:attendance_session_total_break_minutes" json:"attendance_session_total_break_minutes"`
	AttendanceSessionStatus            SessionStatus `gorm:"type:varchar(16);not null;index:idx_attendance_session_status;column:attendance_session_status" json:"attendance_session_status"`

	// Context
	AttendanceSessionLocationData  datatypes.JSONMap `gorm:"column:attendance_session_location_data" json:"attendance_session_location_data,omitempty"`
	AttendanceSessionDeviceInfo    datatypes.JSONMap `gorm:"column:attendance_session_device_info" json:"attendance_session_device_info,omitempty"`
	AttendanceSessionIPAddress     *string           `gorm:"type:varchar(64);column:attendance_session_ip_address" json:"attendance_session_ip_address,omitempty"`
	AttendanceSessionIsManualEntry bool              `gorm:"not null;default:false;column:attendance_session_is_manual_entry" json:"attendance_session_is_manual_entry"`
	AttendanceSessionApprovedBy    *uuid.UUID        `gorm:"type:uuid;column:attendance_session_approved_by" json:"attendance_session_approved_by,omitempty"`
	AttendanceSessionNotes         *string           `gorm:"type:text;column:attendance_session_notes" json:"attendance_session_notes,omitempty"`

	// Optimistic concurrency: every guarded write bumps it
	AttendanceSessionVersion int `gorm:"not null;default:1;column:attendance_session_version" json:"-"`

	AttendanceSessionCreatedAt time.Time `gorm:"column:attendance_session_created_at;autoCreateTime" json:"attendance_session_created_at"`
	AttendanceSessionUpdatedAt time.Time `gorm:"column:attendance_session_updated_at;autoUpdateTime" json:"attendance_session_updated_at"`
}

func (AttendanceSessionModel) TableName() string {
	return "attendance_sessions"
}

func (m *AttendanceSessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceSessionID == uuid.Nil {
		m.AttendanceSessionID = uuid.New()
	}
	if m.AttendanceSessionVersion == 0 {
		m.AttendanceSessionVersion = 1
	}
	return nil
}
