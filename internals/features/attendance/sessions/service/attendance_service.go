// internals/features/attendance/sessions/service/attendance_service.go
package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"workforce_backend/internals/constants"
	"workforce_backend/internals/features/attendance/sessions/broadcast"
	"workforce_backend/internals/features/attendance/sessions/metrics"
	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/helpers/apperr"
	"workforce_backend/internals/helpers/dbtime"
)

// Broadcaster receives fire-and-forget notifications. Implementations must not block.
type Broadcaster interface {
	Publish(employeeID uuid.UUID, kind broadcast.EventKind, snapshot model.AttendanceSessionModel)
	PublishViolation(kind broadcast.EventKind, v model.AttendanceViolationModel)
}

type AttendanceService struct {
	DB       *gorm.DB
	Gate     *AccessGate
	Dir      Directory
	Store    *SessionStore
	Detector *ViolationDetector
	Events   Broadcaster
	Loc      *time.Location
	Now      func() time.Time
}

func NewAttendanceService(db *gorm.DB, dir Directory, policies PolicySource, events Broadcaster, loc *time.Location) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		DB:       db,
		Gate:     NewAccessGate(dir),
		Dir:      dir,
		Store:    NewSessionStore(db),
		Detector: NewViolationDetector(db, policies, events, loc),
		Events:   events,
		Loc:      loc,
		Now:      time.Now,
	}
}

/* =========================
   Transitions
========================= */

// TransitionRequest: EmployeeID nil means the caller's own employee record.
type TransitionRequest struct {
	EmployeeID   *uuid.UUID
	LocationData datatypes.JSONMap
	DeviceInfo   datatypes.JSONMap
	IPAddress    *string
	Notes        *string
}

// TransitionResult.Created is true when the transition opened the day's
// session row.
type TransitionResult struct {
	Session    *model.AttendanceSessionModel    `json:"session"`
	Violations []model.AttendanceViolationModel `json:"violations"`
	Created    bool                             `json:"created"`
}

func (s *AttendanceService) CheckIn(ctx context.Context, callerID uuid.UUID, req TransitionRequest) (*TransitionResult, error) {
	return s.transition(ctx, callerID, EventCheckIn, req)
}

func (s *AttendanceService) CheckOut(ctx context.Context, callerID uuid.UUID, req TransitionRequest) (*TransitionResult, error) {
	return s.transition(ctx, callerID, EventCheckOut, req)
}

// StartBreak and EndBreak carry no context; only EmployeeID is read from req.
func (s *AttendanceService) StartBreak(ctx context.Context, callerID uuid.UUID, employeeID *uuid.UUID) (*TransitionResult, error) {
	return s.transition(ctx, callerID, EventStartBreak, TransitionRequest{EmployeeID: employeeID})
}

func (s *AttendanceService) EndBreak(ctx context.Context, callerID uuid.UUID, employeeID *uuid.UUID) (*TransitionResult, error) {
	return s.transition(ctx, callerID, EventEndBreak, TransitionRequest{EmployeeID: employeeID})
}

func (s *AttendanceService) transition(ctx context.Context, callerID uuid.UUID, event string, req TransitionRequest) (res *TransitionResult, err error) {
	defer func() {
		metrics.TransitionsTotal.WithLabelValues(event, outcomeOf(err)).Inc()
	}()

	caller, err := s.Gate.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	target, err := s.targetOf(ctx, caller, req.EmployeeID, ActionWrite)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	in := TransitionInput{
		EmployeeID:   target,
		SessionDate:  dbtime.DateOf(now, s.Loc),
		Now:          now,
		LocationData: req.LocationData,
		DeviceInfo:   req.DeviceInfo,
		IPAddress:    req.IPAddress,
		Notes:        req.Notes,
	}
	if !caller.IsSelf(target) {
		in.ActingUserID = &caller.UserID
	}

	session, err := s.Store.UpsertGuarded(ctx, target, in.SessionDate, now, func(state SessionState) (*model.AttendanceSessionModel, error) {
		return Apply(state, event, in)
	})
	if err != nil {
		return nil, err
	}

	violations := s.Detector.Detect(ctx, event, session, now)
	if s.Events != nil {
		s.Events.Publish(target, eventKindOf(event), *session)
	}
	return &TransitionResult{
		Session:    session,
		Violations: violations,
		Created:    session.AttendanceSessionVersion == 1,
	}, nil
}

// targetOf picks the employee a request is about and checks the gate before
// checking existence, so out-of-scope callers learn nothing about which employees exist.
func (s *AttendanceService) targetOf(ctx context.Context, caller *Caller, requested *uuid.UUID, action Action) (uuid.UUID, error) {
	var target uuid.UUID
	switch {
	case requested != nil && *requested != uuid.Nil:
		target = *requested
	case caller.Employee != nil:
		target = caller.Employee.ID
	default:
		return uuid.Nil, apperr.Validation("employee_id is required")
	}

	ok, err := s.Gate.Allows(ctx, caller, &target, action)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, apperr.Authorization("%s", constants.RoleErrorOutOfScope(verbOf(action)))
	}

	emp, err := s.Dir.GetActiveEmployee(ctx, target)
	if err != nil {
		return uuid.Nil, apperr.Internal("load employee", err)
	}
	if emp == nil {
		return uuid.Nil, apperr.NotFound("employee not found")
	}
	return target, nil
}

func verbOf(action Action) string {
	if action == ActionWrite {
		return "record"
	}
	return "view"
}

func eventKindOf(event string) broadcast.EventKind {
	switch event {
	case EventCheckIn:
		return broadcast.EventCheckedIn
	case EventCheckOut:
		return broadcast.EventCheckedOut
	case EventStartBreak:
		return broadcast.EventBreakStarted
	default:
		return broadcast.EventBreakEnded
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		return "conflict"
	case apperr.KindNotFound:
		return "not_found"
	case apperr.KindAuthorization:
		return "denied"
	case apperr.KindValidation:
		return "invalid"
	default:
		return "error"
	}
}

/* =========================
   Today
========================= */

type TodayView struct {
	EmployeeID  uuid.UUID                     `json:"employee_id"`
	SessionDate string                        `json:"session_date"`
	State       string                        `json:"state"`
	Session     *model.AttendanceSessionModel `json:"session,omitempty"`
}

// Today reports the day's state including the explicit "none" variant.
func (s *AttendanceService) Today(ctx context.Context, callerID uuid.UUID, employeeID *uuid.UUID) (*TodayView, error) {
	caller, err := s.Gate.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	target, err := s.targetOf(ctx, caller, employeeID, ActionRead)
	if err != nil {
		return nil, err
	}

	date := dbtime.DateOf(s.Now(), s.Loc)
	state, err := s.Store.Load(ctx, target, date)
	if err != nil {
		return nil, err
	}
	return &TodayView{
		EmployeeID:  target,
		SessionDate: date.Format("2006-01-02"),
		State:       state.Current(),
		Session:     state.Session,
	}, nil
}

/* =========================
   Lists
========================= */

type SessionFilter struct {
	EmployeeID   *uuid.UUID
	DepartmentID *uuid.UUID
	DateFrom     *time.Time
	DateTo       *time.Time
	Status       *model.SessionStatus
	Offset       int
	Limit        int
}

type ViolationFilter struct {
	EmployeeID   *uuid.UUID
	DepartmentID *uuid.UUID
	Type         *model.ViolationType
	Severity     *model.ViolationSeverity
	Resolved     *bool
	Since        *time.Time
	Offset       int
	Limit        int
}

// employeeSet narrows a list query. nil IDs with All=true means no restriction;
// an empty, non-All set means the caller can see nothing.
type employeeSet struct {
	All bool
	IDs []uuid.UUID
}

func (s *AttendanceService) visibleEmployees(ctx context.Context, caller *Caller, employeeID, departmentID *uuid.UUID) (employeeSet, error) {
	if employeeID != nil {
		ok, err := s.Gate.Allows(ctx, caller, employeeID, ActionRead)
		if err != nil {
			return employeeSet{}, err
		}
		if !ok {
			return employeeSet{}, apperr.Authorization("%s", constants.RoleErrorOutOfScope(verbOf(ActionRead)))
		}
		set := employeeSet{IDs: []uuid.UUID{*employeeID}}
		if departmentID != nil {
			return s.intersectDepartment(ctx, set, *departmentID)
		}
		return set, nil
	}

	scope, err := s.Gate.ReadScope(ctx, caller)
	if err != nil {
		return employeeSet{}, err
	}
	set := employeeSet{All: scope.All, IDs: scope.EmployeeIDs}
	if departmentID != nil {
		return s.intersectDepartment(ctx, set, *departmentID)
	}
	return set, nil
}

func (s *AttendanceService) intersectDepartment(ctx context.Context, set employeeSet, departmentID uuid.UUID) (employeeSet, error) {
	inDept, err := s.Dir.ActiveEmployeeIDs(ctx, &departmentID)
	if err != nil {
		return employeeSet{}, apperr.Internal("department lookup", err)
	}
	if set.All {
		return employeeSet{IDs: inDept}, nil
	}
	out := make([]uuid.UUID, 0, len(set.IDs))
	for _, id := range set.IDs {
		if slices.Contains(inDept, id) {
			out = append(out, id)
		}
	}
	return employeeSet{IDs: out}, nil
}

func (e employeeSet) empty() bool { return !e.All && len(e.IDs) == 0 }

func (s *AttendanceService) ListSessions(ctx context.Context, callerID uuid.UUID, f SessionFilter) ([]model.AttendanceSessionModel, int64, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, apperr.Validation("invalid status %q", *f.Status)
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, 0, apperr.Validation("date_to must not be before date_from")
	}

	caller, err := s.Gate.Resolve(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	set, err := s.visibleEmployees(ctx, caller, f.EmployeeID, f.DepartmentID)
	if err != nil {
		return nil, 0, err
	}
	items := make([]model.AttendanceSessionModel, 0)
	if set.empty() {
		return items, 0, nil
	}

	q := s.DB.WithContext(ctx).Model(&model.AttendanceSessionModel{})
	if !set.All {
		q = q.Where("attendance_session_employee_id IN ?", set.IDs)
	}
	if f.DateFrom != nil {
		q = q.Where("attendance_session_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("attendance_session_date <= ?", *f.DateTo)
	}
	if f.Status != nil {
		q = q.Where("attendance_session_status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count sessions", err)
	}
	if err := q.Order("attendance_session_date DESC").
		Order("attendance_session_check_in_time DESC").
		Offset(f.Offset).Limit(limitOrDefault(f.Limit)).
		Find(&items).Error; err != nil {
		return nil, 0, apperr.Internal("list sessions", err)
	}
	return items, total, nil
}

func (s *AttendanceService) ListViolations(ctx context.Context, callerID uuid.UUID, f ViolationFilter) ([]model.AttendanceViolationModel, int64, error) {
	if f.Type != nil && !f.Type.Valid() {
		return nil, 0, apperr.Validation("invalid violation type %q", *f.Type)
	}
	if f.Severity != nil && !f.Severity.Valid() {
		return nil, 0, apperr.Validation("invalid severity %q", *f.Severity)
	}

	caller, err := s.Gate.Resolve(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	set, err := s.visibleEmployees(ctx, caller, f.EmployeeID, f.DepartmentID)
	if err != nil {
		return nil, 0, err
	}
	items := make([]model.AttendanceViolationModel, 0)
	if set.empty() {
		return items, 0, nil
	}

	q := s.DB.WithContext(ctx).Model(&model.AttendanceViolationModel{})
	if !set.All {
		q = q.Where("attendance_violation_employee_id IN ?", set.IDs)
	}
	if f.Type != nil {
		q = q.Where("attendance_violation_type = ?", *f.Type)
	}
	if f.Severity != nil {
		q = q.Where("attendance_violation_severity = ?", *f.Severity)
	}
	if f.Resolved != nil {
		q = q.Where("attendance_violation_resolved = ?", *f.Resolved)
	}
	if f.Since != nil {
		q = q.Where("attendance_violation_created_at >= ?", *f.Since)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count violations", err)
	}
	if err := q.Order("attendance_violation_created_at DESC").
		Offset(f.Offset).Limit(limitOrDefault(f.Limit)).
		Find(&items).Error; err != nil {
		return nil, 0, apperr.Internal("list violations", err)
	}
	return items, total, nil
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return 20
	}
	return n
}

/* =========================
   Resolution
========================= */

// ResolveViolation marks a violation resolved. Callers that cannot even read
// the owning employee get NotFound.
func (s *AttendanceService) ResolveViolation(ctx context.Context, callerID, violationID uuid.UUID, notes string) (*model.AttendanceViolationModel, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, apperr.Validation("resolution_notes is required")
	}

	caller, err := s.Gate.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var v model.AttendanceViolationModel
	err = s.DB.WithContext(ctx).
		Where("attendance_violation_id = ?", violationID).
		Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("violation not found")
	}
	if err != nil {
		return nil, apperr.Internal("load violation", err)
	}

	target := v.AttendanceViolationEmployeeID
	canRead, err := s.Gate.Allows(ctx, caller, &target, ActionRead)
	if err != nil {
		return nil, err
	}
	if !canRead {
		return nil, apperr.NotFound("violation not found")
	}
	canReview, err := s.Gate.CanReview(ctx, caller, target)
	if err != nil {
		return nil, err
	}
	if !canReview {
		return nil, apperr.Authorization("%s", constants.RoleErrorReviewer("resolve this violation"))
	}
	if v.AttendanceViolationResolved {
		return nil, apperr.Conflict("violation already resolved")
	}

	now := s.Now()
	res := s.DB.WithContext(ctx).
		Model(&model.AttendanceViolationModel{}).
		Where("attendance_violation_id = ? AND attendance_violation_resolved = ?", violationID, false).
		Updates(map[string]any{
			"attendance_violation_resolved":         true,
			"attendance_violation_resolved_by":      caller.UserID,
			"attendance_violation_resolution_notes": notes,
			"attendance_violation_resolved_at":      now,
			"attendance_violation_updated_at":       now,
		})
	if res.Error != nil {
		return nil, apperr.Internal("resolve violation", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflict("violation already resolved")
	}

	v.AttendanceViolationResolved = true
	v.AttendanceViolationResolvedBy = &caller.UserID
	v.AttendanceViolationResolutionNotes = &notes
	v.AttendanceViolationResolvedAt = &now
	v.AttendanceViolationUpdatedAt = now

	if s.Events != nil {
		s.Events.PublishViolation(broadcast.EventViolationResolved, v)
	}
	return &v, nil
}
