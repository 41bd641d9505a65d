// internals/features/users/directory/service/directory_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	dirModel "workforce_backend/internals/features/users/directory/model"
)

/*
Read-only lookups over data owned by the employee/role services:
  - ActiveRoles(userID)
  - IsDirectReport(managerEmployeeID, targetEmployeeID)
  - GetActiveEmployee(employeeID) / GetEmployeeByUserID(userID)
*/

type Employee struct {
	ID           uuid.UUID  `json:"employee_id"`
	UserID       uuid.UUID  `json:"user_id"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

type DirectoryService struct {
	DB    *gorm.DB
	roles *cache.Cache
}

// NewDirectoryService caches role sets for roleTTL; 0 disables caching.
func NewDirectoryService(db *gorm.DB, roleTTL time.Duration) *DirectoryService {
	s := &DirectoryService{DB: db}
	if roleTTL > 0 {
		s.roles = cache.New(roleTTL, 2*roleTTL)
	}
	return s
}

func (s *DirectoryService) ActiveRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	key := userID.String()
	if s.roles != nil {
		if v, ok := s.roles.Get(key); ok {
			return v.([]string), nil
		}
	}

	var raw []string
	if err := s.DB.WithContext(ctx).
		Model(&dirModel.UserRoleModel{}).
		Where("user_role_user_id = ? AND user_role_is_active = ?", userID, true).
		Pluck("user_role_role", &raw).Error; err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			roles = append(roles, r)
		}
	}
	if s.roles != nil {
		s.roles.SetDefault(key, roles)
	}
	return roles, nil
}

func (s *DirectoryService) IsDirectReport(ctx context.Context, managerEmployeeID, targetEmployeeID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&dirModel.EmployeeHierarchyModel{}).
		Where("employee_hierarchy_manager_id = ? AND employee_hierarchy_employee_id = ? AND employee_hierarchy_relation = ?",
			managerEmployeeID, targetEmployeeID, dirModel.RelationDirectReport).
		Count(&n).Error
	return n > 0, err
}

func (s *DirectoryService) DirectReportIDs(ctx context.Context, managerEmployeeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&dirModel.EmployeeHierarchyModel{}).
		Where("employee_hierarchy_manager_id = ? AND employee_hierarchy_relation = ?",
			managerEmployeeID, dirModel.RelationDirectReport).
		Pluck("employee_hierarchy_employee_id", &ids).Error
	return ids, err
}

// GetActiveEmployee returns (nil, nil) when the employee is absent or inactive.
func (s *DirectoryService) GetActiveEmployee(ctx context.Context, employeeID uuid.UUID) (*Employee, error) {
	return s.first(ctx, "employee_id = ?", employeeID)
}

func (s *DirectoryService) GetEmployeeByUserID(ctx context.Context, userID uuid.UUID) (*Employee, error) {
	return s.first(ctx, "employee_user_id = ?", userID)
}

func (s *DirectoryService) first(ctx context.Context, cond string, arg uuid.UUID) (*Employee, error) {
	var m dirModel.EmployeeModel
	err := s.DB.WithContext(ctx).
		Where(cond, arg).
		Where("employee_is_active = ?", true).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Employee{ID: m.EmployeeID, UserID: m.EmployeeUserID, DepartmentID: m.EmployeeDepartmentID}, nil
}

// ActiveEmployeeIDs lists active employees, optionally within one department.
func (s *DirectoryService) ActiveEmployeeIDs(ctx context.Context, departmentID *uuid.UUID) ([]uuid.UUID, error) {
	q := s.DB.WithContext(ctx).
		Model(&dirModel.EmployeeModel{}).
		Where("employee_is_active = ?", true)
	if departmentID != nil {
		q = q.Where("employee_department_id = ?", *departmentID)
	}
	var ids []uuid.UUID
	err := q.Pluck("employee_id", &ids).Error
	return ids, err
}
