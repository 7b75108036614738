package memberhub

import "time"

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is a regular member (self-service only)
	RoleUser UserRole = "USER"
	// RoleAdmin may view and modify the full roster
	RoleAdmin UserRole = "ADMIN"
)

// Member is the locally cached mirror of a server-side member record.
// ID is the stable identity used for roster reconciliation; all other
// fields are replaced wholesale from confirmed server responses.
type Member struct {
	ID                string     `json:"id,omitempty"`
	Username          string     `json:"userName,omitempty"`
	Name              string     `json:"name,omitempty"`
	Email             string     `json:"email,omitempty"`
	PhoneNumber       string     `json:"phoneNumber,omitempty"`
	Role              UserRole   `json:"role,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	UpdatedBy         string     `json:"updatedBy,omitempty"`
	PasswordTemporary bool       `json:"isPasswordTemporary,omitempty"`
}
