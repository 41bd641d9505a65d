// internals/features/attendance/sessions/service/violation_detector.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	policyService "workforce_backend/internals/features/attendance/policies/service"
	"workforce_backend/internals/features/attendance/sessions/broadcast"
	"workforce_backend/internals/features/attendance/sessions/metrics"
	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/helpers/apperr"
	"workforce_backend/internals/helpers/dbtime"
)

type PolicySource interface {
	GetActivePolicy(ctx context.Context) (*policyService.Policy, error)
}

// ViolationDetector compares a session, right after a transition, against
// the active policy. It never fails the transition that triggered it.
type ViolationDetector struct {
	DB       *gorm.DB
	Policies PolicySource
	Events   Broadcaster
	Loc      *time.Location
}

func NewViolationDetector(db *gorm.DB, policies PolicySource, events Broadcaster, loc *time.Location) *ViolationDetector {
	return &ViolationDetector{DB: db, Policies: policies, Events: events, Loc: loc}
}

// Evaluate is the pure rule set. It returns unsaved violations.
func Evaluate(policy *policyService.Policy, event string, s *model.AttendanceSessionModel, loc *time.Location) []model.AttendanceViolationModel {
	if policy == nil || s == nil {
		return nil
	}

	var out []model.AttendanceViolationModel
	switch event {
	case EventCheckIn:
		if s.AttendanceSessionCheckInTime == nil {
			return nil
		}
		deadline := policy.WorkHoursStart.On(s.AttendanceSessionDate, loc).
			Add(time.Duration(policy.LateThresholdMinutes) * time.Minute)
		if s.AttendanceSessionCheckInTime.After(deadline) {
			late := dbtime.CeilMinutes(s.AttendanceSessionCheckInTime.Sub(deadline))
			out = append(out, newViolation(s, model.ViolationLateArrival, model.SeverityMedium,
				fmt.Sprintf("Checked in %d minutes late (deadline %s)", late, deadline.In(loc).Format("15:04"))))
		}
	case EventCheckOut:
		if s.AttendanceSessionCheckOutTime == nil {
			return nil
		}
		workEnd := policy.WorkHoursEnd.On(s.AttendanceSessionDate, loc)
		if s.AttendanceSessionCheckOutTime.Before(workEnd) {
			early := dbtime.CeilMinutes(workEnd.Sub(*s.AttendanceSessionCheckOutTime))
			out = append(out, newViolation(s, model.ViolationEarlyDeparture, model.SeverityMedium,
				fmt.Sprintf("Checked out %d minutes early (work ends %s)", early, policy.WorkHoursEnd.String())))
		}
	}
	return out
}

func newViolation(s *model.AttendanceSessionModel, typ model.ViolationType, sev model.ViolationSeverity, desc string) model.AttendanceViolationModel {
	return model.AttendanceViolationModel{
		AttendanceViolationEmployeeID:   s.AttendanceSessionEmployeeID,
		AttendanceViolationSessionID:    s.AttendanceSessionID,
		AttendanceViolationType:         typ,
		AttendanceViolationSeverity:     sev,
		AttendanceViolationDescription:  desc,
		AttendanceViolationAutoDetected: true,
	}
}

// Detect persists whatever Evaluate finds, stamped at now. Failures are
// logged and counted.
func (d *ViolationDetector) Detect(ctx context.Context, event string, s *model.AttendanceSessionModel, now time.Time) []model.AttendanceViolationModel {
	if event != EventCheckIn && event != EventCheckOut {
		return nil
	}

	policy, err := d.Policies.GetActivePolicy(ctx)
	if err != nil {
		metrics.DetectorFailuresTotal.Inc()
		zap.S().Errorw("violation detector: load policy", "session_id", s.AttendanceSessionID, "error", err)
		return nil
	}
	if policy == nil {
		return nil
	}

	found := Evaluate(policy, event, s, d.Loc)
	saved := make([]model.AttendanceViolationModel, 0, len(found))
	for i := range found {
		if err := d.save(ctx, &found[i], now); err != nil {
			zap.S().Errorw("violation detector: persist",
				"employee_id", s.AttendanceSessionEmployeeID,
				"session_id", s.AttendanceSessionID,
				"type", found[i].AttendanceViolationType,
				"error", err)
			continue
		}
		saved = append(saved, found[i])
	}
	return saved
}

func (d *ViolationDetector) save(ctx context.Context, v *model.AttendanceViolationModel, now time.Time) error {
	v.AttendanceViolationCreatedAt = now
	v.AttendanceViolationUpdatedAt = now
	if err := d.DB.WithContext(ctx).Create(v).Error; err != nil {
		metrics.DetectorFailuresTotal.Inc()
		return err
	}
	metrics.ViolationsTotal.WithLabelValues(string(v.AttendanceViolationType)).Inc()
	if d.Events != nil {
		d.Events.PublishViolation(broadcast.EventViolationCreated, *v)
	}
	return nil
}

// SweepMissedCheckouts flags every past session still open, once per session.
func (d *ViolationDetector) SweepMissedCheckouts(ctx context.Context, now time.Time) (int, error) {
	today := dbtime.DateOf(now, d.Loc)

	var open []model.AttendanceSessionModel
	err := d.DB.WithContext(ctx).
		Where("attendance_session_date < ? AND attendance_session_status <> ?", today, model.SessionCheckedOut).
		Where(`NOT EXISTS (
			SELECT 1 FROM attendance_violations v
			WHERE v.attendance_violation_session_id = attendance_sessions.attendance_session_id
			  AND v.attendance_violation_type = ?)`, model.ViolationMissedCheckout).
		Order("attendance_session_date ASC").
		Find(&open).Error
	if err != nil {
		return 0, apperr.Internal("find open sessions", err)
	}

	created := 0
	for i := range open {
		s := &open[i]
		v := newViolation(s, model.ViolationMissedCheckout, model.SeverityLow,
			fmt.Sprintf("No check-out recorded for %s", s.AttendanceSessionDate.Format("2006-01-02")))
		if err := d.save(ctx, &v, now); err != nil {
			zap.S().Errorw("missed checkout sweep: persist", "session_id", s.AttendanceSessionID, "error", err)
			continue
		}
		created++
	}
	return created, nil
}
