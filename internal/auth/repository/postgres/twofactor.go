package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
)

type TwoFactorRepository struct {
	db DB
}

func NewTwoFactorRepository(db DB) *TwoFactorRepository {
	return &TwoFactorRepository{db: db}
}

// Upsert replaces the user's enrollment and backup codes in one transaction,
// resetting it to the unverified state. A user has at most one enrollment.
func (r *TwoFactorRepository) Upsert(ctx context.Context, enrollment *domain.TwoFactorEnrollment, codeHashes []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO two_factor_enrollments (user_id, secret, method, verified, created_at, verified_at)
		VALUES ($1, $2, $3, FALSE, $4, NULL)
		ON CONFLICT (user_id)
		DO UPDATE SET
			secret = EXCLUDED.secret,
			method = EXCLUDED.method,
			verified = FALSE,
			created_at = EXCLUDED.created_at,
			verified_at = NULL
	`, enrollment.UserID, enrollment.Secret, enrollment.Method, enrollment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert enrollment: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE user_id = $1`, enrollment.UserID)
	if err != nil {
		return fmt.Errorf("failed to clear backup codes: %w", err)
	}

	for _, hash := range codeHashes {
		_, err = tx.Exec(ctx, `
			INSERT INTO two_factor_backup_codes (user_id, code_hash)
			VALUES ($1, $2)
		`, enrollment.UserID, hash)
		if err != nil {
			return fmt.Errorf("failed to store backup code: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *TwoFactorRepository) Get(ctx context.Context, userID string) (*domain.TwoFactorEnrollment, error) {
	query := `
		SELECT user_id, secret, method, verified, created_at, verified_at
		FROM two_factor_enrollments
		WHERE user_id = $1
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, userID)

	var e domain.TwoFactorEnrollment
	err := row.Scan(&e.UserID, &e.Secret, &e.Method, &e.Verified, &e.CreatedAt, &e.VerifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return &e, nil
}

func (r *TwoFactorRepository) MarkVerified(ctx context.Context, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE two_factor_enrollments
		SET verified = TRUE, verified_at = now()
		WHERE user_id = $1 AND verified = FALSE
	`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark enrollment verified: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ConsumeBackupCode is an atomic remove-if-present. The DELETE either claims
// the code or finds it already gone; two concurrent redemptions of the same
// code cannot both report success.
func (r *TwoFactorRepository) ConsumeBackupCode(ctx context.Context, userID, codeHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM two_factor_backup_codes
		WHERE user_id = $1 AND code_hash = $2
	`, userID, codeHash)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
