package auth

import "time"

type User struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	Role                  string     `json:"role"`
	Phone                 string     `json:"phone,omitempty"`
	Address               string     `json:"address,omitempty"`
	EmergencyName         string     `json:"emergencyName,omitempty"`
	EmergencyRelationship string     `json:"emergencyRelationship,omitempty"`
	EmergencyPhone        string     `json:"emergencyPhone,omitempty"`
	EmployeeID            string     `json:"employeeId,omitempty"`
	MFAEnabled            bool       `json:"mfaEnabled"`
	Status                string     `json:"status"`
	LastLoginAt           *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Credentials is the store-side view of a user used during login.
// The password hash never leaves the auth package.
type Credentials struct {
	User         User
	PasswordHash string
	MFASecret    string
}
