// internals/features/attendance/sessions/service/state_machine.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"gorm.io/datatypes"

	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/helpers/apperr"
	"workforce_backend/internals/helpers/dbtime"
)

// StateNone is the zeroth state: no session stored for the day.
const StateNone = "none"

const (
	EventCheckIn    = "check_in"
	EventCheckOut   = "check_out"
	EventStartBreak = "start_break"
	EventEndBreak   = "end_break"
)

var sessionTransitions = fsm.Events{
	{Name: EventCheckIn, Src: []string{StateNone, string(model.SessionOnBreak), string(model.SessionCheckedOut)}, Dst: string(model.SessionCheckedIn)},
	{Name: EventCheckOut, Src: []string{string(model.SessionCheckedIn), string(model.SessionOnBreak)}, Dst: string(model.SessionCheckedOut)},
	{Name: EventStartBreak, Src: []string{string(model.SessionCheckedIn)}, Dst: string(model.SessionOnBreak)},
	{Name: EventEndBreak, Src: []string{string(model.SessionOnBreak)}, Dst: string(model.SessionCheckedIn)},
}

// SessionState is either NoSession (Session == nil) or an existing session.
type SessionState struct {
	Session *model.AttendanceSessionModel
}

func NoSession() SessionState { return SessionState{} }

func (s SessionState) Exists() bool { return s.Session != nil }

func (s SessionState) Current() string {
	if s.Session == nil {
		return StateNone
	}
	return string(s.Session.AttendanceSessionStatus)
}

// TransitionInput carries everything a transition writes. Now is read once
// per request by the caller.
type TransitionInput struct {
	EmployeeID   uuid.UUID
	SessionDate  time.Time
	Now          time.Time
	LocationData datatypes.JSONMap
	DeviceInfo   datatypes.JSONMap
	IPAddress    *string
	Notes        *string
	// ActingUserID is set when someone other than the employee performs the transition.
	ActingUserID *uuid.UUID
}

// NextStatus validates event against the current state.
func NextStatus(state SessionState, event string) (model.SessionStatus, error) {
	machine := fsm.NewFSM(state.Current(), sessionTransitions, fsm.Callbacks{})
	if err := machine.Event(context.Background(), event); err != nil {
		var unknown fsm.UnknownEventError
		if errors.As(err, &unknown) {
			return "", apperr.Validation("unknown transition %q", event)
		}
		if !state.Exists() {
			return "", apperr.NotFound("no attendance session for today")
		}
		return "", apperr.Conflict("%s", conflictMessage(event, state.Session.AttendanceSessionStatus))
	}
	return model.SessionStatus(machine.Current()), nil
}

func conflictMessage(event string, current model.SessionStatus) string {
	switch {
	case event == EventCheckIn && current == model.SessionCheckedIn:
		return "already checked in"
	case current == model.SessionCheckedOut:
		return "already checked out"
	case event == EventStartBreak && current == model.SessionOnBreak:
		return "already on break"
	case event == EventEndBreak:
		return "not on break"
	default:
		return "invalid transition " + event + " from " + string(current)
	}
}

// Apply returns the session as it must be stored after event. The input
// state is not modified.
func Apply(state SessionState, event string, in TransitionInput) (*model.AttendanceSessionModel, error) {
	next, err := NextStatus(state, event)
	if err != nil {
		return nil, err
	}

	var s model.AttendanceSessionModel
	if state.Exists() {
		s = *state.Session
	} else {
		s = model.AttendanceSessionModel{
			AttendanceSessionEmployeeID: in.EmployeeID,
			AttendanceSessionDate:       in.SessionDate,
		}
	}
	prev := s.AttendanceSessionStatus
	now := in.Now

	switch event {
	case EventCheckIn:
		if prev == model.SessionOnBreak {
			closeBreak(&s, now)
		}
		s.AttendanceSessionCheckInTime = &now
		s.AttendanceSessionCheckOutTime = nil
		attachContext(&s, in)
	case EventCheckOut:
		if prev == model.SessionOnBreak {
			closeBreak(&s, now)
		}
		s.AttendanceSessionCheckOutTime = &now
		attachContext(&s, in)
	case EventStartBreak:
		s.AttendanceSessionBreakStartTime = &now
		s.AttendanceSessionBreakEndTime = nil
	case EventEndBreak:
		closeBreak(&s, now)
	}

	s.AttendanceSessionStatus = next
	return &s, nil
}

// closeBreak adds round(now - breakStart) minutes to the running total.
func closeBreak(s *model.AttendanceSessionModel, now time.Time) {
	if s.AttendanceSessionBreakStartTime != nil {
		if delta := dbtime.RoundMinutes(now.Sub(*s.AttendanceSessionBreakStartTime)); delta > 0 {
			s.AttendanceSessionTotalBreakMinutes += delta
		}
	}
	s.AttendanceSessionBreakEndTime = &now
}

func attachContext(s *model.AttendanceSessionModel, in TransitionInput) {
	if in.LocationData != nil {
		s.AttendanceSessionLocationData = in.LocationData
	}
	if in.DeviceInfo != nil {
		s.AttendanceSessionDeviceInfo = in.DeviceInfo
	}
	if in.IPAddress != nil {
		s.AttendanceSessionIPAddress = in.IPAddress
	}
	if in.Notes != nil {
		s.AttendanceSessionNotes = in.Notes
	}
	if in.ActingUserID != nil {
		s.AttendanceSessionIsManualEntry = true
		s.AttendanceSessionApprovedBy = in.ActingUserID
	}
}
