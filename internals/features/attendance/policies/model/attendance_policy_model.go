// internals/features/attendance/policies/model/attendance_policy_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"workforce_backend/internals/helpers/dbtime"
)

// Managed by the settings service. The row with is_default AND is_active is
// the policy the violation detector evaluates against.
type AttendancePolicyModel struct {
	AttendancePolicyID   uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_policy_id" json:"attendance_policy_id"`
	AttendancePolicyName string    `gorm:"type:varchar(120);not null;column:attendance_policy_name" json:"attendance_policy_name"`

	AttendancePolicyWorkHoursStart dbtime.Tod `gorm:"type:time;not null;column:attendance_policy_work_hours_start" json:"work_hours_start"`
	AttendancePolicyWorkHoursEnd   dbtime.Tod `gorm:"type:time;not null;column:attendance_policy_work_hours_end" json:"work_hours_end"`

	AttendancePolicyLateThresholdMinutes     int `gorm:"not null;default:0;column:attendance_policy_late_threshold_minutes" json:"late_arrival_threshold_minutes"`
	AttendancePolicyOvertimeThresholdMinutes int `gorm:"not null;default:0;column:attendance_policy_overtime_threshold_minutes" json:"overtime_threshold_minutes"`

	AttendancePolicyIsDefault bool `gorm:"not null;default:false;column:attendance_policy_is_default" json:"is_default"`
	AttendancePolicyIsActive  bool `gorm:"not null;default:true;column:attendance_policy_is_active" json:"is_active"`

	AttendancePolicyCreatedAt time.Time `gorm:"column:attendance_policy_created_at;autoCreateTime" json:"created_at"`
	AttendancePolicyUpdatedAt time.Time `gorm:"column:attendance_policy_updated_at;autoUpdateTime" json:"updated_at"`
}

func (AttendancePolicyModel) TableName() string { return "attendance_policies" }

func (m *AttendancePolicyModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendancePolicyID == uuid.Nil {
		m.AttendancePolicyID = uuid.New()
	}
	return nil
}
