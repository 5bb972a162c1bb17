package model

import "time"

// Identity represents a row in the `identities` table: the authenticated
// principal (email + credential) as owned by the session layer.  Display
// attributes live on the Profile, not here.  Metadata captured at sign-up
// (full name, requested role) is kept so a missing profile can later be
// synthesized from it.
//
// Fields:
//  ID           – uuid primary key.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  MetaFullName – full name supplied at sign-up (may be empty).
//  MetaRole     – role requested at sign-up (may be empty).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	MetaFullName string
	MetaRole     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
