package models

// User represents the authenticated account.
type User struct {
	ID               int64   `json:"id"`
	Email            string  `json:"email"`
	FullName         *string `json:"full_name"`
	IsActive         bool    `json:"is_active"`
	IsAdmin          bool    `json:"is_admin"`
	OrganizationID   int64   `json:"organization_id"`
	OrganizationName *string `json:"organization_name,omitempty"`
}

// UserUpdate is the partial payload for PATCH /api/v1/auth/me.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}
