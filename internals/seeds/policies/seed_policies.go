package policies

import (
	"os"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/gorm"

	policyModel "workforce_backend/internals/features/attendance/policies/model"
	"workforce_backend/internals/helpers/dbtime"
)

type PolicySeed struct {
	Name                     string     `json:"name"`
	WorkHoursStart           dbtime.Tod `json:"work_hours_start"`
	WorkHoursEnd             dbtime.Tod `json:"work_hours_end"`
	LateThresholdMinutes     int        `json:"late_arrival_threshold_minutes"`
	OvertimeThresholdMinutes int        `json:"overtime_threshold_minutes"`
	IsDefault                bool       `json:"is_default"`
}

// SeedPoliciesFromJSON inserts policies by name; existing names are skipped.
func SeedPoliciesFromJSON(db *gorm.DB, filePath string) error {
	zap.S().Infof("📥 Reading %s", filePath)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var seeds []PolicySeed
	if err := sonic.Unmarshal(raw, &seeds); err != nil {
		return err
	}

	for _, p := range seeds {
		var n int64
		if err := db.Model(&policyModel.AttendancePolicyModel{}).
			Where("attendance_policy_name = ?", p.Name).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			zap.S().Infof("ℹ️ Policy %q already exists, skipping", p.Name)
			continue
		}

		row := policyModel.AttendancePolicyModel{
			AttendancePolicyName:                     p.Name,
			AttendancePolicyWorkHoursStart:           p.WorkHoursStart,
			AttendancePolicyWorkHoursEnd:             p.WorkHoursEnd,
			AttendancePolicyLateThresholdMinutes:     p.LateThresholdMinutes,
			AttendancePolicyOvertimeThresholdMinutes: p.OvertimeThresholdMinutes,
			AttendancePolicyIsDefault:                p.IsDefault,
			AttendancePolicyIsActive:                 true,
		}
		if err := db.Create(&row).Error; err != nil {
			zap.S().Errorf("❌ Failed to insert policy %q: %v", p.Name, err)
			return err
		}
		zap.S().Infof("✅ Policy %q inserted", p.Name)
	}
	return nil
}
