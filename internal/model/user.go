// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Password holds the bcrypt hash of the user's password, never the
// plaintext. The json tag "-" keeps it out of every API response, including
// the register response that echoes the created user back to the caller.
//
// Email carries a UNIQUE constraint in the database, so one email maps to
// exactly one account even under concurrent registrations.
type User struct {
	ID        int64     `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Email     string    `json:"email"      db:"email"`
	Password  string    `json:"-"          db:"password"` // bcrypt hash
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
