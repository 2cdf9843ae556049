// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Users sign up with a username and password. We never store the plaintext
// password — only the bcrypt hash (see internal/auth/password.go).
//
// WHY `json:"-"` ON PasswordHash?
// The dash tells encoding/json to NEVER serialize this field. Handlers
// return User values directly in API responses (e.g. GET /api/me), and
// without the dash the hash would leak into every one of them. Even a
// bcrypt hash is sensitive — it's offline-crackable material.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"` // unique, minimum 8 characters
	PasswordHash string    `json:"-"`        // bcrypt hash, never serialized or logged
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
