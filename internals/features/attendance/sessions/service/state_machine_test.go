package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/helpers/apperr"
)

func stateOf(status model.SessionStatus) SessionState {
	if status == "" {
		return NoSession()
	}
	start := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	return SessionState{Session: &model.AttendanceSessionModel{
		AttendanceSessionID:             uuid.New(),
		AttendanceSessionStatus:         status,
		AttendanceSessionBreakStartTime: &start,
		AttendanceSessionVersion:        3,
	}}
}

func TestTransitionTableIsClosed(t *testing.T) {
	type want struct {
		next model.SessionStatus
		kind apperr.Kind
	}
	none := model.SessionStatus("")
	cases := map[model.SessionStatus]map[string]want{
		none: {
			EventCheckIn:    {next: model.SessionCheckedIn},
			EventCheckOut:   {kind: apperr.KindNotFound},
			EventStartBreak: {kind: apperr.KindNotFound},
			EventEndBreak:   {kind: apperr.KindNotFound},
		},
		model.SessionCheckedIn: {
			EventCheckIn:    {kind: apperr.KindConflict},
			EventCheckOut:   {next: model.SessionCheckedOut},
			EventStartBreak: {next: model.SessionOnBreak},
			EventEndBreak:   {kind: apperr.KindConflict},
		},
		model.SessionOnBreak: {
			EventCheckIn:    {next: model.SessionCheckedIn},
			EventCheckOut:   {next: model.SessionCheckedOut},
			EventStartBreak: {kind: apperr.KindConflict},
			EventEndBreak:   {next: model.SessionCheckedIn},
		},
		model.SessionCheckedOut: {
			EventCheckIn:    {next: model.SessionCheckedIn},
			EventCheckOut:   {kind: apperr.KindConflict},
			EventStartBreak: {kind: apperr.KindConflict},
			EventEndBreak:   {kind: apperr.KindConflict},
		},
	}

	for from, events := range cases {
		for event, w := range events {
			next, err := NextStatus(stateOf(from), event)
			if w.next != "" {
				require.NoError(t, err, "%q --%s-->", from, event)
				assert.Equal(t, w.next, next, "%q --%s-->", from, event)
				continue
			}
			require.Error(t, err, "%q --%s-->", from, event)
			assert.Equal(t, w.kind, apperr.KindOf(err), "%q --%s-->", from, event)
		}
	}
}

func TestUnknownEventIsValidationError(t *testing.T) {
	_, err := NextStatus(NoSession(), "teleport")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	state := stateOf(model.SessionOnBreak)
	now := time.Date(2024, 5, 6, 12, 30, 0, 0, time.UTC)

	next, err := Apply(state, EventEndBreak, TransitionInput{Now: now})
	require.NoError(t, err)
	assert.Equal(t, 30, next.AttendanceSessionTotalBreakMinutes)
	assert.Equal(t, model.SessionCheckedIn, next.AttendanceSessionStatus)
	assert.Equal(t, 3, next.AttendanceSessionVersion)

	assert.Equal(t, model.SessionOnBreak, state.Session.AttendanceSessionStatus)
	assert.Zero(t, state.Session.AttendanceSessionTotalBreakMinutes)
}

func TestApplyCheckInOnNewDay(t *testing.T) {
	emp := uuid.New()
	actor := uuid.New()
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 6, 1, 55, 0, 0, time.UTC)

	s, err := Apply(NoSession(), EventCheckIn, TransitionInput{
		EmployeeID:   emp,
		SessionDate:  day,
		Now:          now,
		LocationData: datatypes.JSONMap{"lat": -6.2, "lng": 106.8},
		IPAddress:    ptr("10.0.0.7"),
		ActingUserID: &actor,
	})
	require.NoError(t, err)
	assert.Equal(t, emp, s.AttendanceSessionEmployeeID)
	assert.Equal(t, day, s.AttendanceSessionDate)
	assert.Equal(t, now, *s.AttendanceSessionCheckInTime)
	assert.Equal(t, -6.2, s.AttendanceSessionLocationData["lat"])
	assert.Equal(t, "10.0.0.7", *s.AttendanceSessionIPAddress)
	assert.True(t, s.AttendanceSessionIsManualEntry)
	assert.Equal(t, actor, *s.AttendanceSessionApprovedBy)
}

func TestBreakNeverDecreasesTotal(t *testing.T) {
	state := stateOf(model.SessionOnBreak)
	state.Session.AttendanceSessionTotalBreakMinutes = 12
	// clock went backwards between start and end
	now := state.Session.AttendanceSessionBreakStartTime.Add(-5 * time.Minute)

	next, err := Apply(state, EventEndBreak, TransitionInput{Now: now})
	require.NoError(t, err)
	assert.Equal(t, 12, next.AttendanceSessionTotalBreakMinutes)
}
