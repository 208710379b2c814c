// Package models defines the identity and catalog records exchanged with the
// library backend.
package models

// User is the identity snapshot of the logged-in account.
type User struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
}
