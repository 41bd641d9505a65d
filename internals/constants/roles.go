package constants

import "fmt"

const (
	RoleSuperAdmin = "super-admin"
	RoleHRAdmin    = "hr-admin"
	RoleManager    = "manager"
	RoleEmployee   = "employee"
)

// Role error message templates
const (
	ErrOnlyReviewersCanAccess = "Only HR admins or the employee's manager may %s."
	ErrOutOfScope             = "You are not allowed to %s attendance for this employee."
)

func RoleErrorReviewer(action string) string {
	return fmt.Sprintf(ErrOnlyReviewersCanAccess, action)
}

func RoleErrorOutOfScope(action string) string {
	return fmt.Sprintf(ErrOutOfScope, action)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleSuperAdmin,
		RoleHRAdmin,
		RoleManager,
		RoleEmployee,
	}

	AdminRoles = []string{
		RoleSuperAdmin,
		RoleHRAdmin,
	}

	ReviewerRoles = []string{
		RoleSuperAdmin,
		RoleHRAdmin,
		RoleManager,
	}
)
