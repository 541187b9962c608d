package model

const (
	RoleDiner      = "diner"
	RoleFranchisee = "franchisee"
	RoleAdmin      = "admin"
)

// RoleAssignment is a role tag optionally scoped to an object (a franchise for franchisees).
type RoleAssignment struct {
	Role     string `json:"role"`
	ObjectID int    `json:"objectId,omitempty"`
}

// User represents a user in the system
type User struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"` // Do not expose password hash in JSON responses
	Roles        []RoleAssignment `json:"roles"`
}

// HasRole reports whether the user holds role, regardless of scope.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// IsFranchisee reports whether the user is a franchisee scoped to franchiseID.
func (u *User) IsFranchisee(franchiseID int) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Role == RoleFranchisee && r.ObjectID == franchiseID {
			return true
		}
	}
	return false
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest carries optional credential changes; empty fields are left untouched.
type UpdateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
