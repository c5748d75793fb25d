package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The email doubles as the username; NormalizedUserName is its
// lower-cased form and carries the unique index used for lookups.  The
// plain password is never stored.
type User struct {
	ID                 int64     `db:"id"`
	UserName           string    `db:"user_name"`
	NormalizedUserName string    `db:"normalized_user_name"`
	Email              string    `db:"email"`
	PasswordHash       string    `db:"password_hash"`
	CreatedAt          time.Time `db:"created_at"`
}
