package auth

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleUser     = "user"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

var Roles = []string{RoleAdmin, RoleEmployee, RoleUser}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if role == candidate {
			return true
		}
	}
	return false
}
