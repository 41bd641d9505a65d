// internals/features/attendance/sessions/service/access_gate.go
package service

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"workforce_backend/internals/constants"
	dirService "workforce_backend/internals/features/users/directory/service"
	"workforce_backend/internals/helpers/apperr"
)

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Directory is what the gate and the service need from the employee/role data.
type Directory interface {
	ActiveRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	IsDirectReport(ctx context.Context, managerEmployeeID, targetEmployeeID uuid.UUID) (bool, error)
	DirectReportIDs(ctx context.Context, managerEmployeeID uuid.UUID) ([]uuid.UUID, error)
	GetActiveEmployee(ctx context.Context, employeeID uuid.UUID) (*dirService.Employee, error)
	GetEmployeeByUserID(ctx context.Context, userID uuid.UUID) (*dirService.Employee, error)
	ActiveEmployeeIDs(ctx context.Context, departmentID *uuid.UUID) ([]uuid.UUID, error)
}

// Caller is a resolved identity: active roles plus the caller's own employee
// record, which is nil for users without one (e.g. a pure HR admin account).
type Caller struct {
	UserID   uuid.UUID
	Roles    []string
	Employee *dirService.Employee
}

func (c *Caller) Has(role string) bool { return slices.Contains(c.Roles, role) }

func (c *Caller) HasAny(roles []string) bool { return slices.ContainsFunc(roles, c.Has) }

func (c *Caller) IsAdmin() bool { return c.HasAny(constants.AdminRoles) }

func (c *Caller) IsSelf(employeeID uuid.UUID) bool {
	return c.Employee != nil && c.Employee.ID == employeeID
}

// Scope is the set of employees a caller may read in list views.
type Scope struct {
	All         bool
	EmployeeIDs []uuid.UUID
}

func (s Scope) Contains(employeeID uuid.UUID) bool {
	return s.All || slices.Contains(s.EmployeeIDs, employeeID)
}

type AccessGate struct {
	Dir Directory
}

func NewAccessGate(dir Directory) *AccessGate {
	return &AccessGate{Dir: dir}
}

// Resolve loads the caller's active roles; roles this service does not know
// are ignored. No known active role is an AuthorizationError.
func (g *AccessGate) Resolve(ctx context.Context, callerID uuid.UUID) (*Caller, error) {
	all, err := g.Dir.ActiveRoles(ctx, callerID)
	if err != nil {
		return nil, apperr.Internal("resolve roles", err)
	}
	roles := make([]string, 0, len(all))
	for _, r := range all {
		if slices.Contains(constants.AllRoles, r) && !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		return nil, apperr.Authorization("caller has no active role")
	}
	emp, err := g.Dir.GetEmployeeByUserID(ctx, callerID)
	if err != nil {
		return nil, apperr.Internal("resolve caller employee", err)
	}
	return &Caller{UserID: callerID, Roles: roles, Employee: emp}, nil
}

// CanAccess answers canAccess(callerId, targetEmployeeId, action). A nil
// target means a collection (list view).
func (g *AccessGate) CanAccess(ctx context.Context, callerID uuid.UUID, target *uuid.UUID, action Action) (bool, error) {
	caller, err := g.Resolve(ctx, callerID)
	if err != nil {
		return false, err
	}
	return g.Allows(ctx, caller, target, action)
}

// CanActOnSelf is the pure self-service check.
func (g *AccessGate) CanActOnSelf(caller *Caller, target uuid.UUID) bool {
	return caller.Has(constants.RoleEmployee) && caller.IsSelf(target)
}

// Allows grants when any of the caller's roles grants.
func (g *AccessGate) Allows(ctx context.Context, caller *Caller, target *uuid.UUID, action Action) (bool, error) {
	if caller.IsAdmin() {
		return true, nil
	}

	if caller.Has(constants.RoleManager) {
		if target == nil {
			if action == ActionRead {
				return true, nil
			}
		} else if caller.Employee != nil {
			ok, err := g.Dir.IsDirectReport(ctx, caller.Employee.ID, *target)
			if err != nil {
				return false, apperr.Internal("hierarchy lookup", err)
			}
			if ok {
				return true, nil
			}
		}
	}

	if target != nil && g.CanActOnSelf(caller, *target) {
		return true, nil
	}
	return false, nil
}

// ReadScope narrows list views: admins see everyone, managers their direct
// reports, employees themselves. It grants exactly what Allows grants for read.
func (g *AccessGate) ReadScope(ctx context.Context, caller *Caller) (Scope, error) {
	if caller.IsAdmin() {
		return Scope{All: true}, nil
	}

	ids := make([]uuid.UUID, 0)
	if caller.Employee == nil {
		return Scope{EmployeeIDs: ids}, nil
	}
	if caller.Has(constants.RoleManager) {
		reports, err := g.Dir.DirectReportIDs(ctx, caller.Employee.ID)
		if err != nil {
			return Scope{}, apperr.Internal("direct reports lookup", err)
		}
		ids = append(ids, reports...)
	}
	if caller.Has(constants.RoleEmployee) && !slices.Contains(ids, caller.Employee.ID) {
		ids = append(ids, caller.Employee.ID)
	}
	return Scope{EmployeeIDs: ids}, nil
}

// CanReview decides who may resolve a violation of target: admins, or the
// target's manager. Nobody reviews their own violations unless admin.
func (g *AccessGate) CanReview(ctx context.Context, caller *Caller, target uuid.UUID) (bool, error) {
	if caller.IsAdmin() {
		return true, nil
	}
	if !caller.HasAny(constants.ReviewerRoles) || caller.Employee == nil || caller.IsSelf(target) {
		return false, nil
	}
	ok, err := g.Dir.IsDirectReport(ctx, caller.Employee.ID, target)
	if err != nil {
		return false, apperr.Internal("hierarchy lookup", err)
	}
	return ok, nil
}
