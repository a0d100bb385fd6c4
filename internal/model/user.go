// Package model defines the data structures used throughout the application.
package model

import "time"

// AnonymousAuthor is the fixed display label used when a post or comment is
// created without a logged-in session (or by a user with no nickname and no
// email). The product ships a Japanese frontend, so the label is 匿名
// ("anonymous").
const AnonymousAuthor = "匿名"

// User represents a registered account.
//
// Email is stored in canonical form — lowercased, NFC-normalized, confusable
// whitespace stripped (see internal/normalize). The UNIQUE constraint in the
// DB applies to the exact stored string: rows written by earlier revisions of
// the normalizer may be canonical under *looser* rules, which is why login
// resolves users through an ordered candidate list instead of a single
// equality lookup.
//
// WHY Nickname string (not *string)?
// Nickname is optional. We use the empty string as "absent" rather than a
// nullable pointer — simpler to work with and safe to display. The author
// fallback chain (nickname → email → anonymous) treats "" as absent.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"` // never serialized
	Nickname     string    `json:"nickname"  db:"nickname"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// PublicUser is the subset of User that is safe to return to clients.
// The password hash must never leave the service layer.
type PublicUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the client-visible view of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt,
	}
}

// DisplayName returns the name shown next to the user's posts and comments:
// nickname if set, else email, else the anonymous label.
func (u *User) DisplayName() string {
	if u == nil {
		return AnonymousAuthor
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	if u.Email != "" {
		return u.Email
	}
	return AnonymousAuthor
}
