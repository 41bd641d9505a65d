// internals/features/attendance/policies/service/policy_provider.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	policyModel "workforce_backend/internals/features/attendance/policies/model"
	"workforce_backend/internals/helpers/dbtime"
)

// Policy is the detector's view of the active attendance policy.
type Policy struct {
	Name                     string
	WorkHoursStart           dbtime.Tod
	WorkHoursEnd             dbtime.Tod
	LateThresholdMinutes     int
	OvertimeThresholdMinutes int
}

const activePolicyKey = "active"

// PolicyProvider reads the default/active policy and caches the answer,
// including "no policy", for ttl.
type PolicyProvider struct {
	DB    *gorm.DB
	cache *cache.Cache
}

func NewPolicyProvider(db *gorm.DB, ttl time.Duration) *PolicyProvider {
	p := &PolicyProvider{DB: db}
	if ttl > 0 {
		p.cache = cache.New(ttl, 2*ttl)
	}
	return p
}

// GetActivePolicy returns (nil, nil) when no policy is active.
func (p *PolicyProvider) GetActivePolicy(ctx context.Context) (*Policy, error) {
	if p.cache != nil {
		if v, ok := p.cache.Get(activePolicyKey); ok {
			return v.(*Policy), nil
		}
	}

	var m policyModel.AttendancePolicyModel
	err := p.DB.WithContext(ctx).
		Where("attendance_policy_is_default = ? AND attendance_policy_is_active = ?", true, true).
		Order("attendance_policy_updated_at DESC").
		Take(&m).Error

	var out *Policy
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		out = nil
	case err != nil:
		return nil, err
	default:
		out = &Policy{
			Name:                     m.AttendancePolicyName,
			WorkHoursStart:           m.AttendancePolicyWorkHoursStart,
			WorkHoursEnd:             m.AttendancePolicyWorkHoursEnd,
			LateThresholdMinutes:     m.AttendancePolicyLateThresholdMinutes,
			OvertimeThresholdMinutes: m.AttendancePolicyOvertimeThresholdMinutes,
		}
	}

	if p.cache != nil {
		p.cache.SetDefault(activePolicyKey, out)
	}
	return out, nil
}

// Invalidate drops the cached answer, e.g. after a settings change.
func (p *PolicyProvider) Invalidate() {
	if p.cache != nil {
		p.cache.Delete(activePolicyKey)
	}
}
