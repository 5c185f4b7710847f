package domain

//go:generate mockgen -destination=../../mocks/mock_repository.go -package=mocks github.com/agrwalh/aidfusion-auth/internal/auth/domain UserRepository,TwoFactorRepository

import "context"

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// UpdateRole performs a single conditional update and reports whether a
	// row matched.
	UpdateRole(ctx context.Context, id string, role Role) (bool, error)
}

type TwoFactorRepository interface {
	// Upsert replaces any existing enrollment for the user together with its
	// backup-code hashes, resetting it to the unverified state.
	Upsert(ctx context.Context, enrollment *TwoFactorEnrollment, codeHashes []string) error
	Get(ctx context.Context, userID string) (*TwoFactorEnrollment, error)
	// MarkVerified flips a pending enrollment to verified and reports whether
	// one existed.
	MarkVerified(ctx context.Context, userID string) (bool, error)
	// ConsumeBackupCode atomically removes the code hash if present and
	// reports whether it was. Two concurrent redemptions of the same code
	// cannot both succeed.
	ConsumeBackupCode(ctx context.Context, userID, codeHash string) (bool, error)
}
