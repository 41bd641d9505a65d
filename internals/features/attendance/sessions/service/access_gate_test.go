package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce_backend/internals/constants"
	dirService "workforce_backend/internals/features/users/directory/service"
	"workforce_backend/internals/helpers/apperr"
)

type fakeDirectory struct {
	roles     map[uuid.UUID][]string
	employees map[uuid.UUID]*dirService.Employee // by user id
	reports   map[uuid.UUID][]uuid.UUID          // manager employee id -> reports
	err       error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		roles:     map[uuid.UUID][]string{},
		employees: map[uuid.UUID]*dirService.Employee{},
		reports:   map[uuid.UUID][]uuid.UUID{},
	}
}

func (d *fakeDirectory) add(roles ...string) *dirService.Employee {
	e := &dirService.Employee{ID: uuid.New(), UserID: uuid.New()}
	d.employees[e.UserID] = e
	d.roles[e.UserID] = roles
	return e
}

func (d *fakeDirectory) ActiveRoles(_ context.Context, userID uuid.UUID) ([]string, error) {
	return d.roles[userID], d.err
}

func (d *fakeDirectory) IsDirectReport(_ context.Context, manager, target uuid.UUID) (bool, error) {
	for _, id := range d.reports[manager] {
		if id == target {
			return true, d.err
		}
	}
	return false, d.err
}

func (d *fakeDirectory) DirectReportIDs(_ context.Context, manager uuid.UUID) ([]uuid.UUID, error) {
	return d.reports[manager], d.err
}

func (d *fakeDirectory) GetActiveEmployee(_ context.Context, id uuid.UUID) (*dirService.Employee, error) {
	for _, e := range d.employees {
		if e.ID == id {
			return e, d.err
		}
	}
	return nil, d.err
}

func (d *fakeDirectory) GetEmployeeByUserID(_ context.Context, userID uuid.UUID) (*dirService.Employee, error) {
	return d.employees[userID], d.err
}

func (d *fakeDirectory) ActiveEmployeeIDs(_ context.Context, _ *uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(d.employees))
	for _, e := range d.employees {
		ids = append(ids, e.ID)
	}
	return ids, d.err
}

func TestCanAccess(t *testing.T) {
	dir := newFakeDirectory()
	gate := NewAccessGate(dir)
	ctx := context.Background()

	admin := dir.add(constants.RoleHRAdmin)
	manager := dir.add(constants.RoleManager)
	report := dir.add(constants.RoleEmployee)
	other := dir.add(constants.RoleEmployee)
	dir.reports[manager.ID] = []uuid.UUID{report.ID}

	cases := []struct {
		name   string
		caller uuid.UUID
		target *uuid.UUID
		action Action
		want   bool
	}{
		{"admin any target", admin.UserID, &other.ID, ActionWrite, true},
		{"admin collection", admin.UserID, nil, ActionRead, true},
		{"manager direct report write", manager.UserID, &report.ID, ActionWrite, true},
		{"manager direct report read", manager.UserID, &report.ID, ActionRead, true},
		{"manager no edge write", manager.UserID, &other.ID, ActionWrite, false},
		{"manager no edge read", manager.UserID, &other.ID, ActionRead, false},
		{"manager collection read", manager.UserID, nil, ActionRead, true},
		{"manager collection write", manager.UserID, nil, ActionWrite, false},
		{"manager without employee role on self", manager.UserID, &manager.ID, ActionWrite, false},
		{"employee self", report.UserID, &report.ID, ActionWrite, true},
		{"employee other", report.UserID, &other.ID, ActionRead, false},
		{"employee collection", report.UserID, nil, ActionRead, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := gate.CanAccess(ctx, tc.caller, tc.target, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestResolveWithoutRolesIsAuthorizationError(t *testing.T) {
	dir := newFakeDirectory()
	nobody := dir.add()

	_, err := NewAccessGate(dir).CanAccess(context.Background(), nobody.UserID, nil, ActionRead)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestDirectoryFailureIsInternal(t *testing.T) {
	dir := newFakeDirectory()
	emp := dir.add(constants.RoleEmployee)
	dir.err = errors.New("connection reset")

	_, err := NewAccessGate(dir).CanAccess(context.Background(), emp.UserID, &emp.ID, ActionRead)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "internal server error", apperr.PublicMessage(err))
}

func TestReadScopeAndReview(t *testing.T) {
	dir := newFakeDirectory()
	gate := NewAccessGate(dir)
	ctx := context.Background()

	manager := dir.add(constants.RoleManager, constants.RoleEmployee)
	report := dir.add(constants.RoleEmployee)
	other := dir.add(constants.RoleEmployee)
	dir.reports[manager.ID] = []uuid.UUID{report.ID}

	mgr, err := gate.Resolve(ctx, manager.UserID)
	require.NoError(t, err)
	scope, err := gate.ReadScope(ctx, mgr)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.ElementsMatch(t, []uuid.UUID{report.ID, manager.ID}, scope.EmployeeIDs)
	assert.False(t, scope.Contains(other.ID))

	ok, err := gate.CanReview(ctx, mgr, report.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = gate.CanReview(ctx, mgr, manager.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	emp, err := gate.Resolve(ctx, report.UserID)
	require.NoError(t, err)
	scope, err = gate.ReadScope(ctx, emp)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{report.ID}, scope.EmployeeIDs)
	ok, err = gate.CanReview(ctx, emp, report.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	admin := dir.add(constants.RoleSuperAdmin)
	adm, err := gate.Resolve(ctx, admin.UserID)
	require.NoError(t, err)
	scope, err = gate.ReadScope(ctx, adm)
	require.NoError(t, err)
	assert.True(t, scope.All)
}

func TestManagerOnlyScopeMatchesAllows(t *testing.T) {
	dir := newFakeDirectory()
	gate := NewAccessGate(dir)
	ctx := context.Background()

	manager := dir.add(constants.RoleManager)
	report := dir.add(constants.RoleEmployee)
	dir.reports[manager.ID] = []uuid.UUID{report.ID}

	mgr, err := gate.Resolve(ctx, manager.UserID)
	require.NoError(t, err)
	scope, err := gate.ReadScope(ctx, mgr)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{report.ID}, scope.EmployeeIDs)

	for _, target := range []uuid.UUID{manager.ID, report.ID} {
		ok, err := gate.Allows(ctx, mgr, &target, ActionRead)
		require.NoError(t, err)
		assert.Equal(t, scope.Contains(target), ok, "target %s", target)
	}
}

func TestResolveIgnoresUnknownRoles(t *testing.T) {
	dir := newFakeDirectory()
	gate := NewAccessGate(dir)

	guest := dir.add("guest")
	_, err := gate.Resolve(context.Background(), guest.UserID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	mixed := dir.add("guest", constants.RoleEmployee, constants.RoleEmployee)
	caller, err := gate.Resolve(context.Background(), mixed.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.RoleEmployee}, caller.Roles)
}
