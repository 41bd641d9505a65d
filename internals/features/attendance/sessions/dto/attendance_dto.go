// file: internals/features/attendance/sessions/dto/attendance_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"workforce_backend/internals/features/attendance/sessions/model"
	"workforce_backend/internals/features/attendance/sessions/service"
	"workforce_backend/internals/helpers/dbtime"
)

/* =========================================================
   TRANSITIONS
   ========================================================= */

// TransitionRequest is the body of check-in / check-out. employee_id empty = self.
type TransitionRequest struct {
	EmployeeID   *string        `json:"employee_id" validate:"omitempty,uuid"`
	LocationData map[string]any `json:"location_data" validate:"omitempty"`
	DeviceInfo   map[string]any `json:"device_info" validate:"omitempty"`
	Notes        *string        `json:"notes" validate:"omitempty,max=1000"`
}

func (in *TransitionRequest) ToService(ip string) service.TransitionRequest {
	out := service.TransitionRequest{
		EmployeeID: parseUUIDPtr(in.EmployeeID),
		Notes:      trimPtr(in.Notes),
	}
	if len(in.LocationData) > 0 {
		out.LocationData = datatypes.JSONMap(in.LocationData)
	}
	if len(in.DeviceInfo) > 0 {
		out.DeviceInfo = datatypes.JSONMap(in.DeviceInfo)
	}
	if ip = strings.TrimSpace(ip); ip != "" {
		out.IPAddress = &ip
	}
	return out
}

// BreakRequest is the (optional) body of break start / end.
type BreakRequest struct {
	EmployeeID *string `json:"employee_id" validate:"omitempty,uuid"`
}

func (in *BreakRequest) Target() *uuid.UUID { return parseUUIDPtr(in.EmployeeID) }

type TransitionResponse struct {
	Session    SessionResponse     `json:"session"`
	Violations []ViolationResponse `json:"violations"`
}

func NewTransitionResponse(r *service.TransitionResult, loc *time.Location) TransitionResponse {
	return TransitionResponse{
		Session:    FromSessionModel(r.Session, loc),
		Violations: FromViolationModels(r.Violations, loc),
	}
}

/* =========================================================
   SESSION VIEW
   ========================================================= */

type SessionResponse struct {
	ID                uuid.UUID           `json:"attendance_session_id"`
	EmployeeID        uuid.UUID           `json:"attendance_session_employee_id"`
	SessionDate       string              `json:"attendance_session_date"`
	CheckInTime       *time.Time          `json:"attendance_session_check_in_time,omitempty"`
	CheckOutTime      *time.Time          `json:"attendance_session_check_out_time,omitempty"`
	BreakStartTime    *time.Time          `json:"attendance_session_break_start_time,omitempty"`
	BreakEndTime      *time.Time          `json:"attendance_session_break_end_time,omitempty"`
	TotalBreakMinutes int                 `json:"attendance_session_total_break_minutes"`
	Status            model.SessionStatus `json:"attendance_session_status"`
	LocationData      datatypes.JSONMap   `json:"attendance_session_location_data,omitempty"`
	DeviceInfo        datatypes.JSONMap   `json:"attendance_session_device_info,omitempty"`
	IPAddress         *string             `json:"attendance_session_ip_address,omitempty"`
	IsManualEntry     bool                `json:"attendance_session_is_manual_entry"`
	ApprovedBy        *uuid.UUID          `json:"attendance_session_approved_by,omitempty"`
	Notes             *string             `json:"attendance_session_notes,omitempty"`
	UpdatedAt         time.Time           `json:"attendance_session_updated_at"`
}

// FromSessionModel renders timestamps in loc and the date as YYYY-MM-DD.
func FromSessionModel(m *model.AttendanceSessionModel, loc *time.Location) SessionResponse {
	return SessionResponse{
		ID:                m.AttendanceSessionID,
		EmployeeID:        m.AttendanceSessionEmployeeID,
		SessionDate:       m.AttendanceSessionDate.Format("2006-01-02"),
		CheckInTime:       dbtime.PtrIn(m.AttendanceSessionCheckInTime, loc),
		CheckOutTime:      dbtime.PtrIn(m.AttendanceSessionCheckOutTime, loc),
		BreakStartTime:    dbtime.PtrIn(m.AttendanceSessionBreakStartTime, loc),
		BreakEndTime:      dbtime.PtrIn(m.AttendanceSessionBreakEndTime, loc),
		TotalBreakMinutes: m.AttendanceSessionTotalBreakMinutes,
		Status:            m.AttendanceSessionStatus,
		LocationData:      m.AttendanceSessionLocationData,
		DeviceInfo:        m.AttendanceSessionDeviceInfo,
		IPAddress:         m.AttendanceSessionIPAddress,
		IsManualEntry:     m.AttendanceSessionIsManualEntry,
		ApprovedBy:        m.AttendanceSessionApprovedBy,
		Notes:             m.AttendanceSessionNotes,
		UpdatedAt:         m.AttendanceSessionUpdatedAt,
	}
}

func FromSessionModels(items []model.AttendanceSessionModel, loc *time.Location) []SessionResponse {
	out := make([]SessionResponse, 0, len(items))
	for i := range items {
		out = append(out, FromSessionModel(&items[i], loc))
	}
	return out
}

type TodayResponse struct {
	EmployeeID  uuid.UUID        `json:"employee_id"`
	SessionDate string           `json:"session_date"`
	State       string           `json:"state"`
	Session     *SessionResponse `json:"session,omitempty"`
}

func NewTodayResponse(v *service.TodayView, loc *time.Location) TodayResponse {
	out := TodayResponse{EmployeeID: v.EmployeeID, SessionDate: v.SessionDate, State: v.State}
	if v.Session != nil {
		s := FromSessionModel(v.Session, loc)
		out.Session = &s
	}
	return out
}

/* =========================================================
   LIST QUERIES
   ========================================================= */

type ListSessionsQuery struct {
	EmployeeID   string `query:"employee_id" validate:"omitempty,uuid"`
	DepartmentID string `query:"department_id" validate:"omitempty,uuid"`
	DateFrom     string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo       string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Status       string `query:"status" validate:"omitempty,oneof=checked_in on_break checked_out"`
}

// ToFilter assumes the query passed validation.
func (q *ListSessionsQuery) ToFilter(offset, limit int) service.SessionFilter {
	f := service.SessionFilter{
		EmployeeID:   parseUUIDPtr(&q.EmployeeID),
		DepartmentID: parseUUIDPtr(&q.DepartmentID),
		DateFrom:     parseDatePtr(q.DateFrom),
		DateTo:       parseDatePtr(q.DateTo),
		Offset:       offset,
		Limit:        limit,
	}
	if q.Status != "" {
		st := model.SessionStatus(q.Status)
		f.Status = &st
	}
	return f
}

type ListViolationsQuery struct {
	EmployeeID   string `query:"employee_id" validate:"omitempty,uuid"`
	DepartmentID string `query:"department_id" validate:"omitempty,uuid"`
	Type         string `query:"type" validate:"omitempty,oneof=late_arrival early_departure missed_checkout location_violation"`
	Severity     string `query:"severity" validate:"omitempty,oneof=low medium high critical"`
	Resolved     *bool  `query:"resolved"`
	Since        string `query:"since" validate:"omitempty,datetime=2006-01-02"`
}

// ToFilter reads since as a local calendar date in loc.
func (q *ListViolationsQuery) ToFilter(offset, limit int, loc *time.Location) service.ViolationFilter {
	f := service.ViolationFilter{
		EmployeeID:   parseUUIDPtr(&q.EmployeeID),
		DepartmentID: parseUUIDPtr(&q.DepartmentID),
		Resolved:     q.Resolved,
		Offset:       offset,
		Limit:        limit,
	}
	if q.Type != "" {
		t := model.ViolationType(q.Type)
		f.Type = &t
	}
	if q.Severity != "" {
		s := model.ViolationSeverity(q.Severity)
		f.Severity = &s
	}
	if d := parseDatePtr(q.Since); d != nil {
		since := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		f.Since = &since
	}
	return f
}

type DashboardQuery struct {
	DepartmentID string `query:"department_id" validate:"omitempty,uuid"`
}

func (q *DashboardQuery) Department() *uuid.UUID { return parseUUIDPtr(&q.DepartmentID) }

/* =========================================================
   VIOLATIONS
   ========================================================= */

type ResolveViolationRequest struct {
	ResolutionNotes string `json:"resolution_notes" validate:"required,max=2000"`
}

type ViolationResponse struct {
	ID              uuid.UUID               `json:"attendance_violation_id"`
	EmployeeID      uuid.UUID               `json:"attendance_violation_employee_id"`
	SessionID       uuid.UUID               `json:"attendance_violation_session_id"`
	Type            model.ViolationType     `json:"attendance_violation_type"`
	Severity        model.ViolationSeverity `json:"attendance_violation_severity"`
	Description     string                  `json:"attendance_violation_description"`
	AutoDetected    bool                    `json:"attendance_violation_auto_detected"`
	Resolved        bool                    `json:"attendance_violation_resolved"`
	ResolvedBy      *uuid.UUID              `json:"attendance_violation_resolved_by,omitempty"`
	ResolutionNotes *string                 `json:"attendance_violation_resolution_notes,omitempty"`
	ResolvedAt      *time.Time              `json:"attendance_violation_resolved_at,omitempty"`
	CreatedAt       time.Time               `json:"attendance_violation_created_at"`
}

func FromViolationModel(m *model.AttendanceViolationModel, loc *time.Location) ViolationResponse {
	return ViolationResponse{
		ID:              m.AttendanceViolationID,
		EmployeeID:      m.AttendanceViolationEmployeeID,
		SessionID:       m.AttendanceViolationSessionID,
		Type:            m.AttendanceViolationType,
		Severity:        m.AttendanceViolationSeverity,
		Description:     m.AttendanceViolationDescription,
		AutoDetected:    m.AttendanceViolationAutoDetected,
		Resolved:        m.AttendanceViolationResolved,
		ResolvedBy:      m.AttendanceViolationResolvedBy,
		ResolutionNotes: m.AttendanceViolationResolutionNotes,
		ResolvedAt:      dbtime.PtrIn(m.AttendanceViolationResolvedAt, loc),
		CreatedAt:       m.AttendanceViolationCreatedAt,
	}
}

func FromViolationModels(items []model.AttendanceViolationModel, loc *time.Location) []ViolationResponse {
	out := make([]ViolationResponse, 0, len(items))
	for i := range items {
		out = append(out, FromViolationModel(&items[i], loc))
	}
	return out
}

/* =========================================================
   helpers
   ========================================================= */

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func parseUUIDPtr(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &id
}

func parseDatePtr(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := dbtime.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &d
}

/* =========================================================
   DASHBOARD
   ========================================================= */

type DashboardResponse struct {
	Date     string                 `json:"date"`
	Sessions []SessionResponse      `json:"sessions"`
	Stats    service.DashboardStats `json:"stats"`
}

func NewDashboardResponse(d *service.LiveDashboard, loc *time.Location) DashboardResponse {
	return DashboardResponse{
		Date:     d.Date,
		Sessions: FromSessionModels(d.Sessions, loc),
		Stats:    d.Stats,
	}
}
