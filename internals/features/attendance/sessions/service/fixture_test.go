package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	policyModel "workforce_backend/internals/features/attendance/policies/model"
	policyService "workforce_backend/internals/features/attendance/policies/service"
	"workforce_backend/internals/features/attendance/sessions/broadcast"
	"workforce_backend/internals/features/attendance/sessions/model"
	dirModel "workforce_backend/internals/features/users/directory/model"
	dirService "workforce_backend/internals/features/users/directory/service"
	"workforce_backend/internals/helpers/dbtime"
	"workforce_backend/internals/testutil"
)

var wib = time.FixedZone("WIB", 7*60*60)

type recordedEvent struct {
	Kind       broadcast.EventKind
	EmployeeID uuid.UUID
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(employeeID uuid.UUID, kind broadcast.EventKind, _ model.AttendanceSessionModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Kind: kind, EmployeeID: employeeID})
}

func (r *recorder) PublishViolation(kind broadcast.EventKind, v model.AttendanceViolationModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Kind: kind, EmployeeID: v.AttendanceViolationEmployeeID})
}

func (r *recorder) kinds() []broadcast.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]broadcast.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	db     *gorm.DB
	svc    *AttendanceService
	events *recorder
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	f := &fixture{
		db:     db,
		events: &recorder{},
		now:    time.Date(2024, 5, 6, 8, 0, 0, 0, wib),
	}
	f.svc = NewAttendanceService(db,
		dirService.NewDirectoryService(db, 0),
		policyService.NewPolicyProvider(db, 0),
		f.events, wib)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

// at moves the clock to hh:mm:ss on the fixture's current local day.
func (f *fixture) at(hh, mm, ss int) {
	y, m, d := f.now.In(wib).Date()
	f.now = time.Date(y, m, d, hh, mm, ss, 0, wib)
}

type person struct {
	UserID     uuid.UUID
	EmployeeID uuid.UUID
}

func (f *fixture) employee(t *testing.T, dept *uuid.UUID, roles ...string) person {
	t.Helper()
	e := dirModel.EmployeeModel{
		EmployeeUserID:       uuid.New(),
		EmployeeFullName:     "Employee " + uuid.NewString()[:8],
		EmployeeDepartmentID: dept,
		EmployeeIsActive:     true,
	}
	require.NoError(t, f.db.Create(&e).Error)
	f.grant(t, e.EmployeeUserID, roles...)
	return person{UserID: e.EmployeeUserID, EmployeeID: e.EmployeeID}
}

// admin is a user with roles but no employee record.
func (f *fixture) admin(t *testing.T, roles ...string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.grant(t, id, roles...)
	return id
}

func (f *fixture) grant(t *testing.T, userID uuid.UUID, roles ...string) {
	t.Helper()
	for _, r := range roles {
		require.NoError(t, f.db.Create(&dirModel.UserRoleModel{UserRoleUserID: userID, UserRoleRole: r, UserRoleIsActive: true}).Error)
	}
}

func (f *fixture) reports(t *testing.T, manager, report person) {
	t.Helper()
	require.NoError(t, f.db.Create(&dirModel.EmployeeHierarchyModel{
		EmployeeHierarchyManagerID:  manager.EmployeeID,
		EmployeeHierarchyEmployeeID: report.EmployeeID,
		EmployeeHierarchyRelation:   dirModel.RelationDirectReport,
	}).Error)
}

func (f *fixture) policy(t *testing.T, start, end string, late int) {
	t.Helper()
	require.NoError(t, f.db.Create(&policyModel.AttendancePolicyModel{
		AttendancePolicyName:                 "Office hours",
		AttendancePolicyWorkHoursStart:       dbtime.MustParse(start),
		AttendancePolicyWorkHoursEnd:         dbtime.MustParse(end),
		AttendancePolicyLateThresholdMinutes: late,
		AttendancePolicyIsDefault:            true,
		AttendancePolicyIsActive:             true,
	}).Error)
}

func (f *fixture) countSessions(t *testing.T, employeeID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_employee_id = ?", employeeID).
		Count(&n).Error)
	return n
}

func (f *fixture) violations(t *testing.T, employeeID uuid.UUID) []model.AttendanceViolationModel {
	t.Helper()
	var out []model.AttendanceViolationModel
	require.NoError(t, f.db.Where("attendance_violation_employee_id = ?", employeeID).
		Order("attendance_violation_created_at ASC").
		Find(&out).Error)
	return out
}

func ptr[T any](v T) *T { return &v }
