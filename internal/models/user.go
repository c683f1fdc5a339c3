package models

import "time"

// User is the external identity referenced by bills.
// Credentials live with the identity provider; billsplit only remembers
// the ID and the display name carried by the caller's token.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   int64
	UpdatedAt   int64
}

// NewUser creates a user record for a principal seen for the first time.
func NewUser(id, displayName string) *User {
	now := time.Now().Unix()
	return &User{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Name returns the display name, falling back to the ID.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}
