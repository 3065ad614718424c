package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionStudentsRead allows viewing student lists and details.
	PermissionStudentsRead Permission = "students:read"

	// PermissionStudentsWrite allows creating and updating students.
	PermissionStudentsWrite Permission = "students:write"

	// PermissionStudentsResetSession allows resetting a student's active session.
	PermissionStudentsResetSession Permission = "students:reset_session"

	// PermissionQBanksWriteOwn allows authoring questions in banks the admin created.
	PermissionQBanksWriteOwn Permission = "qbanks:write_own"

	// PermissionQBanksWriteAll allows authoring questions in any bank.
	PermissionQBanksWriteAll Permission = "qbanks:write_all"

	PermissionExamsRead     Permission = "exams:read"
	PermissionExamsWriteOwn Permission = "exams:write_own"
	PermissionExamsPublish  Permission = "exams:publish"

	// PermissionAdminsManage allows managing staff accounts and their roles.
	PermissionAdminsManage Permission = "admins:manage"
)

// Role is a fixed bundle of permissions.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleInstructor Role = "instructor"
	RoleProctor    Role = "proctor"
)

var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionStudentsRead,
		PermissionStudentsWrite,
		PermissionStudentsResetSession,
		PermissionQBanksWriteOwn,
		PermissionQBanksWriteAll,
		PermissionExamsRead,
		PermissionExamsWriteOwn,
		PermissionExamsPublish,
		PermissionAdminsManage,
	},
	RoleInstructor: {
		PermissionStudentsRead,
		PermissionQBanksWriteOwn,
		PermissionExamsRead,
		PermissionExamsWriteOwn,
		PermissionExamsPublish,
	},
	RoleProctor: {
		PermissionStudentsRead,
		PermissionStudentsResetSession,
		PermissionExamsRead,
	},
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns the permission codes granted to r.
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// Has reports whether r grants p.
func (r Role) Has(p Permission) bool {
	for _, rp := range rolePermissions[r] {
		if rp == p {
			return true
		}
	}
	return false
}

// Roles lists every role in display order.
var Roles = []Role{RoleSuperAdmin, RoleInstructor, RoleProctor}
