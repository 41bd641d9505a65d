package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	policyModel "workforce_backend/internals/features/attendance/policies/model"
	"workforce_backend/internals/helpers/dbtime"
	"workforce_backend/internals/testutil"
)

func TestGetActivePolicy(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	p := NewPolicyProvider(db, 0)

	got, err := p.GetActivePolicy(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "no policy configured")

	require.NoError(t, db.Create(&policyModel.AttendancePolicyModel{
		AttendancePolicyName:                 "Office",
		AttendancePolicyWorkHoursStart:       dbtime.MustParse("09:00"),
		AttendancePolicyWorkHoursEnd:         dbtime.MustParse("17:00"),
		AttendancePolicyLateThresholdMinutes: 15,
		AttendancePolicyIsDefault:            true,
		AttendancePolicyIsActive:             true,
	}).Error)

	got, err = p.GetActivePolicy(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Office", got.Name)
	assert.Equal(t, "09:00", got.WorkHoursStart.String())
	assert.Equal(t, "17:00", got.WorkHoursEnd.String())
	assert.Equal(t, 15, got.LateThresholdMinutes)
}

func TestGetActivePolicyCachesAbsence(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	p := NewPolicyProvider(db, time.Minute)

	got, err := p.GetActivePolicy(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.Create(&policyModel.AttendancePolicyModel{
		AttendancePolicyName:           "Office",
		AttendancePolicyWorkHoursStart: dbtime.MustParse("09:00"),
		AttendancePolicyWorkHoursEnd:   dbtime.MustParse("17:00"),
		AttendancePolicyIsDefault:      true,
		AttendancePolicyIsActive:       true,
	}).Error)

	got, err = p.GetActivePolicy(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "cached answer until invalidated")

	p.Invalidate()
	got, err = p.GetActivePolicy(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
