package directory

import (
	"errors"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	dirModel "workforce_backend/internals/features/users/directory/model"
)

// EmployeeSeed mirrors what the employee service owns. Manager refers to
// another seed's user_id.
type EmployeeSeed struct {
	UserID       uuid.UUID  `json:"user_id"`
	FullName     string     `json:"full_name"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Roles        []string   `json:"roles"`
	Manager      *uuid.UUID `json:"manager_user_id"`
	NoEmployee   bool       `json:"no_employee"`
}

// SeedDirectoryFromJSON creates employees, their roles, then manager edges.
// Users that already have an employee row are left alone.
func SeedDirectoryFromJSON(db *gorm.DB, filePath string) error {
	zap.S().Infof("📥 Reading %s", filePath)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var seeds []EmployeeSeed
	if err := sonic.Unmarshal(raw, &seeds); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		employeeOf := map[uuid.UUID]uuid.UUID{}
		fresh := map[uuid.UUID]bool{}

		for _, s := range seeds {
			if s.NoEmployee {
				continue
			}
			var existing dirModel.EmployeeModel
			err := tx.Where("employee_user_id = ?", s.UserID).Take(&existing).Error
			switch {
			case err == nil:
				employeeOf[s.UserID] = existing.EmployeeID
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			e := dirModel.EmployeeModel{
				EmployeeUserID:       s.UserID,
				EmployeeFullName:     s.FullName,
				EmployeeDepartmentID: s.DepartmentID,
				EmployeeIsActive:     true,
			}
			if err := tx.Create(&e).Error; err != nil {
				return err
			}
			employeeOf[s.UserID] = e.EmployeeID
			fresh[s.UserID] = true
			zap.S().Infof("✅ Employee %s inserted", s.FullName)
		}

		for _, s := range seeds {
			if !s.NoEmployee && !fresh[s.UserID] {
				continue
			}
			var n int64
			if err := tx.Model(&dirModel.UserRoleModel{}).Where("user_role_user_id = ?", s.UserID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			for _, role := range s.Roles {
				if err := tx.Create(&dirModel.UserRoleModel{
					UserRoleUserID:   s.UserID,
					UserRoleRole:     role,
					UserRoleIsActive: true,
				}).Error; err != nil {
					return err
				}
			}
		}

		for _, s := range seeds {
			if s.Manager == nil || !fresh[s.UserID] {
				continue
			}
			managerID, ok := employeeOf[*s.Manager]
			if !ok {
				zap.S().Warnf("⚠️ Manager %s of %s not found, skipping edge", s.Manager, s.FullName)
				continue
			}
			if err := tx.Create(&dirModel.EmployeeHierarchyModel{
				EmployeeHierarchyManagerID:  managerID,
				EmployeeHierarchyEmployeeID: employeeOf[s.UserID],
				EmployeeHierarchyRelation:   dirModel.RelationDirectReport,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
