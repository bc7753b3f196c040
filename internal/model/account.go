package model

import "time"

// AccountID uniquely identifies an account
type AccountID uint

// Role is the account type. Every account has exactly one.
type Role string

const (
	RolePlayer    Role = "player"
	RoleDeveloper Role = "developer"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleDeveloper
}

// Label returns the display name of the role
func (r Role) Label() string {
	switch r {
	case RolePlayer:
		return "Player"
	case RoleDeveloper:
		return "Developer"
	default:
		return string(r)
	}
}

// Account is a registered user of the store
type Account struct {
	ID           AccountID
	Username     string // login name (immutable)
	PasswordHash string // bcrypt hash
	Email        string
	FirstName    string
	LastName     string
	Role         Role

	// Activated flips once, when the emailed verification hash is used
	Activated        bool
	VerificationHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPlayer returns true for player accounts
func (a *Account) IsPlayer() bool {
	return a != nil && a.Role == RolePlayer
}

// IsDeveloper returns true for developer accounts
func (a *Account) IsDeveloper() bool {
	return a != nil && a.Role == RoleDeveloper
}

// DisplayName returns the full name if set, the username otherwise
func (a *Account) DisplayName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	default:
		return a.Username
	}
}
