package utils

// Permission levels
const (
	DeveloperPermission = "developer"
	AdminPermission     = "admin"
	UserPermission      = "user"
	GuestPermission     = "guest"
)

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// CheckPermission returns the highest permission level the member holds
// for the guild, given their role IDs and the guild's configured lists.
func CheckPermission(memberRoleIDs []string, userID string, adminRoleIDs, userRoleIDs, developerUserIDs []string) string {
	if contains(developerUserIDs, userID) {
		return DeveloperPermission
	}

	for _, roleID := range memberRoleIDs {
		if contains(adminRoleIDs, roleID) {
			return AdminPermission
		}
	}

	for _, roleID := range memberRoleIDs {
		if contains(userRoleIDs, roleID) {
			return UserPermission
		}
	}

	return GuestPermission
}

// IsAdminLevel reports whether the level carries admin rights.
func IsAdminLevel(level string) bool {
	return level == AdminPermission || level == DeveloperPermission
}
