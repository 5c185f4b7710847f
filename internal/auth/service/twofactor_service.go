package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
	"github.com/agrwalh/aidfusion-auth/internal/auth/dto"
	autherror "github.com/agrwalh/aidfusion-auth/internal/errors"
)

const (
	backupCodeCount = 8
	totpSecretBytes = 20
	totpPeriod      = 30
	totpSkew        = 2
)

// TwoFactorService owns the enrollment state machine: a fresh secret starts
// unverified and becomes enabled only after the first valid code generated
// from it is accepted. Verification always runs against the stored secret,
// never one supplied by the request.
type TwoFactorService struct {
	repo   domain.TwoFactorRepository
	issuer string
	now    func() time.Time
}

func NewTwoFactorService(repo domain.TwoFactorRepository, issuer string) *TwoFactorService {
	return &TwoFactorService{repo: repo, issuer: issuer, now: time.Now}
}

// Begin mints a new TOTP secret and backup codes for the user and persists
// them in the unverified state, replacing any previous enrollment. The plain
// backup codes are returned exactly once; only their hashes are stored.
func (s *TwoFactorService) Begin(ctx context.Context, userID, email string) (*dto.TwoFactorSetupOutput, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
		SecretSize:  totpSecretBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	codes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to generate backup codes: %w", err)
	}

	hashes := make([]string, 0, len(codes))
	for _, code := range codes {
		hashes = append(hashes, hashBackupCode(code))
	}

	enrollment := &domain.TwoFactorEnrollment{
		UserID:    userID,
		Secret:    key.Secret(),
		Method:    domain.MethodTOTP,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Upsert(ctx, enrollment, hashes); err != nil {
		return nil, err
	}

	qrCode, err := qrDataURL(key)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}

	return &dto.TwoFactorSetupOutput{
		Secret:      key.Secret(),
		BackupCodes: codes,
		QRCode:      qrCode,
	}, nil
}

// Confirm checks a code against the pending enrollment's stored secret and,
// on the first match, flips it to verified.
func (s *TwoFactorService) Confirm(ctx context.Context, userID, code string) error {
	if !isSixDigits(code) {
		return autherror.ErrInvalidTwoFactorCode
	}

	enrollment, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if enrollment == nil {
		return autherror.ErrNoPendingEnrollment
	}

	if !verifyTOTP(enrollment.Secret, code, s.now()) {
		return autherror.ErrInvalidTwoFactorCode
	}

	verified, err := s.repo.MarkVerified(ctx, userID)
	if err != nil {
		return err
	}
	if !verified && !enrollment.Verified {
		return autherror.ErrNoPendingEnrollment
	}

	return nil
}

// Enrollment returns the user's enrollment, or nil when none exists.
func (s *TwoFactorService) Enrollment(ctx context.Context, userID string) (*domain.TwoFactorEnrollment, error) {
	return s.repo.Get(ctx, userID)
}

// VerifyLogin accepts either a current TOTP code or a backup code for a
// verified enrollment. A backup code is consumed atomically and cannot be
// redeemed twice, even by concurrent attempts.
func (s *TwoFactorService) VerifyLogin(ctx context.Context, enrollment *domain.TwoFactorEnrollment, code string) (bool, error) {
	if isSixDigits(code) {
		return verifyTOTP(enrollment.Secret, code, s.now()), nil
	}

	return s.repo.ConsumeBackupCode(ctx, enrollment.UserID, hashBackupCode(code))
}

func verifyTOTP(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return err == nil && ok
}

func isSixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// generateBackupCodes returns n codes formatted for transcription, e.g.
// "3F9A-C02B".
func generateBackupCodes(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		raw := make([]byte, 4)
		if _, err := rand.Read(raw); err != nil {
			return nil, err
		}
		code := strings.ToUpper(hex.EncodeToString(raw))
		codes = append(codes, code[:4]+"-"+code[4:])
	}

	return codes, nil
}

func canonicalizeBackupCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func hashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(canonicalizeBackupCode(code)))
	return hex.EncodeToString(sum[:])
}

func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(200, 200)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
