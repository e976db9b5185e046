// Package models defines the records persisted by the credential stores.
package models

import (
	"slices"
	"time"
)

// User is a registered principal as stored. PasswordHash never leaves the
// server; callers get users.PublicUser instead.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	IsActive     bool      `db:"is_active"`
	Roles        []string  `db:"roles"`
	CreatedAt    time.Time `db:"created_at"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
