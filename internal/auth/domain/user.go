package domain

import "time"

// Role is a closed enumeration. Anything that is not one of the two
// defined values is rejected at the boundary.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TwoFactorEnrollment is a user's TOTP material. Backup codes are stored
// separately as SHA-256 hashes and are not carried on this struct.
type TwoFactorEnrollment struct {
	UserID     string
	Secret     string
	Method     string
	Verified   bool
	CreatedAt  time.Time
	VerifiedAt *time.Time
}

const MethodTOTP = "totp"
