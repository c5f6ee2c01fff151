package model

import "time"

// Account represents a row in the `accounts` table.  Accounts are owned by
// the authentication layer; listings, bookings and reviews only reference
// them.  The json tags are omitted on purpose: the credential must never be
// rendered, so handlers always go through dto.AccountResponse.
//
// Fields:
//  ID           – primary key identifier (auto increment).
//  Username     – unique login name.
//  Email        – unique email address.
//  FirstName    – display first name.
//  LastName     – display last name.
//  PasswordHash – bcrypt hash of the password.
//  IsSuperuser  – privileged accounts survive demo-data seeding.
//  CreatedAt    – timestamp of creation.
type Account struct {
	ID           uint64    // accounts.id
	Username     string    // accounts.username
	Email        string    // accounts.email
	FirstName    string    // accounts.first_name
	LastName     string    // accounts.last_name
	PasswordHash string    // accounts.password_hash
	IsSuperuser  bool      // accounts.is_superuser
	CreatedAt    time.Time // accounts.created_at
}

// Role returns the role claim issued in access tokens for this account.
func (a Account) Role() string {
	if a.IsSuperuser {
		return RoleAdmin
	}
	return RoleUser
}

// Roles carried in the JWT "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AccountID uint64     // refresh_tokens.account_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
