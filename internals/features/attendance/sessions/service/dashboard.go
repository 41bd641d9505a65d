// internals/features/attendance/sessions/service/dashboard.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/helpers/apperr"
	"workforce_backend/internals/helpers/dbtime"
)

type DashboardStats struct {
	CheckedIn    int   `json:"checked_in"`
	OnBreak      int   `json:"on_break"`
	CheckedOut   int   `json:"checked_out"`
	NotCheckedIn int   `json:"not_checked_in"`
	Violations   int64 `json:"violations"`
}

type LiveDashboard struct {
	Date     string                         `json:"date"`
	Sessions []model.AttendanceSessionModel `json:"sessions"`
	Stats    DashboardStats                 `json:"stats"`
}

// LiveDashboard is a read projection of today's sessions and unresolved
// violations within the caller's read scope.
func (s *AttendanceService) LiveDashboard(ctx context.Context, callerID uuid.UUID, departmentID *uuid.UUID) (*LiveDashboard, error) {
	caller, err := s.Gate.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	scope, err := s.Gate.ReadScope(ctx, caller)
	if err != nil {
		return nil, err
	}

	active, err := s.Dir.ActiveEmployeeIDs(ctx, departmentID)
	if err != nil {
		return nil, apperr.Internal("active employees", err)
	}
	ids := make([]uuid.UUID, 0, len(active))
	for _, id := range active {
		if scope.Contains(id) {
			ids = append(ids, id)
		}
	}

	now := s.Now()
	today := dbtime.DateOf(now, s.Loc)
	out := &LiveDashboard{
		Date:     today.Format("2006-01-02"),
		Sessions: make([]model.AttendanceSessionModel, 0),
	}
	if len(ids) == 0 {
		return out, nil
	}

	if err := s.DB.WithContext(ctx).
		Where("attendance_session_date = ? AND attendance_session_employee_id IN ?", today, ids).
		Order("attendance_session_check_in_time DESC").
		Find(&out.Sessions).Error; err != nil {
		return nil, apperr.Internal("today sessions", err)
	}

	for _, sess := range out.Sessions {
		switch sess.AttendanceSessionStatus {
		case model.SessionCheckedIn:
			out.Stats.CheckedIn++
		case model.SessionOnBreak:
			out.Stats.OnBreak++
		case model.SessionCheckedOut:
			out.Stats.CheckedOut++
		}
	}
	if n := len(ids) - len(out.Sessions); n > 0 {
		out.Stats.NotCheckedIn = n
	}

	y, m, d := now.In(s.Loc).Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, s.Loc)
	if err := s.DB.WithContext(ctx).
		Model(&model.AttendanceViolationModel{}).
		Where("attendance_violation_resolved = ? AND attendance_violation_created_at >= ?", false, dayStart).
		Where("attendance_violation_employee_id IN ?", ids).
		Count(&out.Stats.Violations).Error; err != nil {
		return nil, apperr.Internal("count violations", err)
	}
	return out, nil
}
