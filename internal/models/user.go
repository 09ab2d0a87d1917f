package models

import "time"

// Role identifies the access level of a user account.
type Role string

const (
	// RoleStandard is the default role, subject to the daily request limit.
	RoleStandard Role = "standard"
	// RoleAdmin bypasses the daily request limit and can access admin routes.
	RoleAdmin Role = "admin"
)

// User represents an end-user account persisted in the users collection.
type User struct {
	ID       string `json:"id"`       // Immutable identifier, assigned at creation.
	Email    string `json:"email"`    // Login email, unique at creation time.
	Password string `json:"password"` // Bcrypt hash, never returned by the API.
	Role     Role   `json:"role"`     // "standard" or "admin".
	Verified bool   `json:"verified"` // Accounts are auto-verified on signup.

	RequestCount    int        `json:"requestCount"`    // Requests counted on LastRequestDate's day.
	LastRequestDate *time.Time `json:"lastRequestDate"` // Most recent counted request, nil if none.

	CreatedAt time.Time `json:"createdAt"` // Creation timestamp.
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Public is the API-facing view of a user, without the password hash.
type Public struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	Verified        bool       `json:"verified"`
	RequestCount    int        `json:"requestCount"`
	LastRequestDate *time.Time `json:"lastRequestDate"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Public strips the password hash for API responses.
func (u User) Public() Public {
	return Public{
		ID:              u.ID,
		Email:           u.Email,
		Role:            u.Role,
		Verified:        u.Verified,
		RequestCount:    u.RequestCount,
		LastRequestDate: u.LastRequestDate,
		CreatedAt:       u.CreatedAt,
	}
}
