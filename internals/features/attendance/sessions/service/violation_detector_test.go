package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce_backend/internals/constants"
	policyService "workforce_backend/internals/features/attendance/policies/service"
	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/helpers/dbtime"
)

func officeHours(late int) *policyService.Policy {
	return &policyService.Policy{
		WorkHoursStart:       dbtime.MustParse("09:00"),
		WorkHoursEnd:         dbtime.MustParse("17:00"),
		LateThresholdMinutes: late,
	}
}

func sessionAt(checkIn, checkOut *time.Time) *model.AttendanceSessionModel {
	return &model.AttendanceSessionModel{
		AttendanceSessionID:           uuid.New(),
		AttendanceSessionEmployeeID:   uuid.New(),
		AttendanceSessionDate:         time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		AttendanceSessionCheckInTime:  checkIn,
		AttendanceSessionCheckOutTime: checkOut,
	}
}

func TestEvaluateLateArrivalBoundary(t *testing.T) {
	policy := officeHours(15)
	cases := []struct {
		name    string
		checkIn time.Time
		want    string
	}{
		{"exactly at deadline", time.Date(2024, 5, 6, 9, 15, 0, 0, wib), ""},
		{"one second after", time.Date(2024, 5, 6, 9, 15, 1, 0, wib), "Checked in 1 minutes late (deadline 09:15)"},
		{"twenty past", time.Date(2024, 5, 6, 9, 20, 0, 0, wib), "Checked in 5 minutes late (deadline 09:15)"},
		{"early bird", time.Date(2024, 5, 6, 7, 0, 0, 0, wib), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(policy, EventCheckIn, sessionAt(&tc.checkIn, nil), wib)
			if tc.want == "" {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].AttendanceViolationDescription)
		})
	}
}

func TestEvaluateEarlyDeparture(t *testing.T) {
	in := time.Date(2024, 5, 6, 8, 0, 0, 0, wib)
	out := time.Date(2024, 5, 6, 16, 30, 0, 0, wib)
	s := sessionAt(&in, &out)

	got := Evaluate(officeHours(0), EventCheckOut, s, wib)
	require.Len(t, got, 1)
	assert.Equal(t, model.ViolationEarlyDeparture, got[0].AttendanceViolationType)
	assert.Equal(t, "Checked out 30 minutes early (work ends 17:00)", got[0].AttendanceViolationDescription)
	assert.Equal(t, s.AttendanceSessionID, got[0].AttendanceViolationSessionID)

	onTime := time.Date(2024, 5, 6, 17, 0, 0, 0, wib)
	assert.Empty(t, Evaluate(officeHours(0), EventCheckOut, sessionAt(&in, &onTime), wib))
}

func TestEvaluateIgnoresBreaksAndMissingPolicy(t *testing.T) {
	late := time.Date(2024, 5, 6, 11, 0, 0, 0, wib)
	s := sessionAt(&late, nil)
	assert.Empty(t, Evaluate(nil, EventCheckIn, s, wib))
	assert.Empty(t, Evaluate(officeHours(0), EventStartBreak, s, wib))
	assert.Empty(t, Evaluate(officeHours(0), EventEndBreak, s, wib))
}

func TestRepeatedCheckOutsAppendViolations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.policy(t, "09:00", "17:00", 15)
	emp := f.employee(t, nil, constants.RoleEmployee)

	_, err := f.svc.CheckIn(ctx, emp.UserID, TransitionRequest{})
	require.NoError(t, err)
	f.at(15, 0, 0)
	_, err = f.svc.CheckOut(ctx, emp.UserID, TransitionRequest{})
	require.NoError(t, err)
	f.at(15, 5, 0)
	_, err = f.svc.CheckIn(ctx, emp.UserID, TransitionRequest{})
	require.NoError(t, err)
	f.at(16, 0, 0)
	_, err = f.svc.CheckOut(ctx, emp.UserID, TransitionRequest{})
	require.NoError(t, err)

	// 15:05 is late against 09:15 too
	var early, lateArrivals int
	for _, v := range f.violations(t, emp.EmployeeID) {
		switch v.AttendanceViolationType {
		case model.ViolationEarlyDeparture:
			early++
		case model.ViolationLateArrival:
			lateArrivals++
		}
	}
	assert.Equal(t, 2, early)
	assert.Equal(t, 1, lateArrivals)
}

func TestSweepMissedCheckoutsOncePerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.employee(t, nil, constants.RoleEmployee)
	closed := f.employee(t, nil, constants.RoleEmployee)

	_, err := f.svc.CheckIn(ctx, open.UserID, TransitionRequest{})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, closed.UserID, TransitionRequest{})
	require.NoError(t, err)
	f.at(17, 0, 0)
	_, err = f.svc.CheckOut(ctx, closed.UserID, TransitionRequest{})
	require.NoError(t, err)

	// same day: nothing is overdue yet
	n, err := f.svc.Detector.SweepMissedCheckouts(ctx, f.now)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.now = f.now.Add(24 * time.Hour)
	n, err = f.svc.Detector.SweepMissedCheckouts(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.svc.Detector.SweepMissedCheckouts(ctx, f.now)
	require.NoError(t, err)
	assert.Zero(t, n)

	got := f.violations(t, open.EmployeeID)
	require.Len(t, got, 1)
	assert.Equal(t, model.ViolationMissedCheckout, got[0].AttendanceViolationType)
	assert.Equal(t, model.SeverityLow, got[0].AttendanceViolationSeverity)
	assert.Equal(t, "No check-out recorded for 2024-05-06", got[0].AttendanceViolationDescription)
	assert.Empty(t, f.violations(t, closed.EmployeeID))
}
