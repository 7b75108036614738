package memberhub

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin checks if this role grants full roster access
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// CanModify reports whether the session's identity may modify the target
// member: self-service always, anyone else only for admins.
func CanModify(session *Session, target Member) bool {
	if session == nil {
		return false
	}
	if session.Username != "" && session.Username == target.Username {
		return true
	}
	return session.Role.IsAdmin()
}
