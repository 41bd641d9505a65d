// internals/features/users/directory/model/directory_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Owned by the employee CRUD service; read-only here.
type EmployeeModel struct {
	EmployeeID           uuid.UUID  `gorm:"type:uuid;primaryKey;column:employee_id" json:"employee_id"`
	EmployeeUserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_employee_user;column:employee_user_id" json:"employee_user_id"`
	EmployeeDepartmentID *uuid.UUID `gorm:"type:uuid;index:idx_employee_department;column:employee_department_id" json:"employee_department_id,omitempty"`
	EmployeeFullName     string     `gorm:"type:varchar(160);not null;column:employee_full_name" json:"employee_full_name"`
	EmployeeIsActive     bool       `gorm:"not null;default:true;column:employee_is_active" json:"employee_is_active"`

	EmployeeCreatedAt time.Time `gorm:"column:employee_created_at;autoCreateTime" json:"employee_created_at"`
	EmployeeUpdatedAt time.Time `gorm:"column:employee_updated_at;autoUpdateTime" json:"employee_updated_at"`
}

func (EmployeeModel) TableName() string { return "employees" }

func (m *EmployeeModel) BeforeCreate(tx *gorm.DB) error {
	if m.EmployeeID == uuid.Nil {
		m.EmployeeID = uuid.New()
	}
	return nil
}

type UserRoleModel struct {
	UserRoleID       uuid.UUID `gorm:"type:uuid;primaryKey;column:user_role_id" json:"user_role_id"`
	UserRoleUserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_user_role_user;column:user_role_user_id" json:"user_role_user_id"`
	UserRoleRole     string    `gorm:"type:varchar(32);not null;column:user_role_role" json:"user_role_role"`
	UserRoleIsActive bool      `gorm:"not null;default:true;column:user_role_is_active" json:"user_role_is_active"`

	UserRoleCreatedAt time.Time `gorm:"column:user_role_created_at;autoCreateTime" json:"user_role_created_at"`
}

func (UserRoleModel) TableName() string { return "user_roles" }

func (m *UserRoleModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserRoleID == uuid.Nil {
		m.UserRoleID = uuid.New()
	}
	return nil
}

const RelationDirectReport = "direct_report"

type EmployeeHierarchyModel struct {
	EmployeeHierarchyID         uuid.UUID `gorm:"type:uuid;primaryKey;column:employee_hierarchy_id" json:"employee_hierarchy_id"`
	EmployeeHierarchyManagerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_hierarchy_manager;column:employee_hierarchy_manager_id" json:"employee_hierarchy_manager_id"`
	EmployeeHierarchyEmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_hierarchy_employee;column:employee_hierarchy_employee_id" json:"employee_hierarchy_employee_id"`
	EmployeeHierarchyRelation   string    `gorm:"type:varchar(32);not null;default:direct_report;column:employee_hierarchy_relation" json:"employee_hierarchy_relation"`

	EmployeeHierarchyCreatedAt time.Time `gorm:"column:employee_hierarchy_created_at;autoCreateTime" json:"employee_hierarchy_created_at"`
}

func (EmployeeHierarchyModel) TableName() string { return "employee_hierarchy" }

func (m *EmployeeHierarchyModel) BeforeCreate(tx *gorm.DB) error {
	if m.EmployeeHierarchyID == uuid.Nil {
		m.EmployeeHierarchyID = uuid.New()
	}
	return nil
}
