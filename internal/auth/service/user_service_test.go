package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
	"github.com/agrwalh/aidfusion-auth/internal/auth/dto"
	"github.com/agrwalh/aidfusion-auth/internal/auth/service"
	autherror "github.com/agrwalh/aidfusion-auth/internal/errors"
	"github.com/agrwalh/aidfusion-auth/internal/logging"
	"github.com/agrwalh/aidfusion-auth/internal/mocks"
)

type userServiceFixture struct {
	users     *mocks.MockUserRepository
	twoFactor *mocks.MockTwoFactorRepository
	sessions  *service.SessionService
	svc       *service.UserService
}

func newUserServiceFixture(t *testing.T) *userServiceFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	users := mocks.NewMockUserRepository(ctrl)
	twoFactorRepo := mocks.NewMockTwoFactorRepository(ctrl)
	sessions := service.NewSessionService(testSecret, 7*24*time.Hour)
	twoFactor := service.NewTwoFactorService(twoFactorRepo, "AidFusion")

	return &userServiceFixture{
		users:     users,
		twoFactor: twoFactorRepo,
		sessions:  sessions,
		svc:       service.NewUserService(users, twoFactor, sessions, logging.NewNop()),
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newUserServiceFixture(t)

		var created *domain.User
		f.users.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *domain.User) error {
				created = u
				return nil
			})

		user, token, err := f.svc.Signup(context.Background(), dto.SignupInput{
			Email:    "a@b.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, created, user)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.NotEmpty(t, user.ID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))

		claims := f.sessions.Parse(token)
		require.NotNil(t, claims)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, "a@b.com", claims.Email)
		assert.Equal(t, domain.RoleUser, claims.Role)
	})

	t.Run("email is normalized before storage", func(t *testing.T) {
		f := newUserServiceFixture(t)

		f.users.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *domain.User) error {
				assert.Equal(t, "a@b.com", u.Email)
				return nil
			})

		user, _, err := f.svc.Signup(context.Background(), dto.SignupInput{
			Email:    "  A@B.Com ",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", user.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newUserServiceFixture(t)

		for _, email := range []string{"", "not-an-email", "a@b", "a b@c.com", "@b.com"} {
			_, _, err := f.svc.Signup(context.Background(), dto.SignupInput{Email: email, Password: "secret1"})
			assert.ErrorIs(t, err, autherror.ErrInvalidEmail, "email %q", email)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		f := newUserServiceFixture(t)

		_, _, err := f.svc.Signup(context.Background(), dto.SignupInput{Email: "a@b.com", Password: "12345"})
		assert.ErrorIs(t, err, autherror.ErrWeakPassword)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newUserServiceFixture(t)

		f.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(autherror.ErrEmailAlreadyRegistered)

		_, _, err := f.svc.Signup(context.Background(), dto.SignupInput{Email: "a@b.com", Password: "secret1"})
		assert.ErrorIs(t, err, autherror.ErrEmailAlreadyRegistered)
	})
}

func TestLogin(t *testing.T) {
	password := "secret1"

	t.Run("success round-trips the registered identity", func(t *testing.T) {
		f := newUserServiceFixture(t)
		stored := &domain.User{ID: "user-123", Email: "a@b.com", PasswordHash: hashPassword(t, password), Role: domain.RoleUser}

		f.users.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(stored, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), "user-123").Return(nil, nil)

		user, token, err := f.svc.Login(context.Background(), dto.LoginInput{Email: "A@b.com", Password: password})
		require.NoError(t, err)
		assert.Equal(t, "user-123", user.ID)
		require.NotNil(t, f.sessions.Parse(token))
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		f := newUserServiceFixture(t)

		f.users.EXPECT().GetByEmail(gomock.Any(), "missing@b.com").Return(nil, nil)
		_, _, err := f.svc.Login(context.Background(), dto.LoginInput{Email: "missing@b.com", Password: password})
		assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)

		stored := &domain.User{ID: "user-123", Email: "a@b.com", PasswordHash: hashPassword(t, password), Role: domain.RoleUser}
		f.users.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(stored, nil)
		_, _, err = f.svc.Login(context.Background(), dto.LoginInput{Email: "a@b.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	})

	t.Run("verified enrollment requires a code", func(t *testing.T) {
		f := newUserServiceFixture(t)
		stored := &domain.User{ID: "user-123", Email: "a@b.com", PasswordHash: hashPassword(t, password), Role: domain.RoleUser}
		enrollment := &domain.TwoFactorEnrollment{UserID: "user-123", Secret: "SECRET", Verified: true}

		f.users.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(stored, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), "user-123").Return(enrollment, nil)

		_, _, err := f.svc.Login(context.Background(), dto.LoginInput{Email: "a@b.com", Password: password})
		assert.ErrorIs(t, err, autherror.ErrTwoFactorRequired)
	})

	t.Run("valid TOTP code completes login", func(t *testing.T) {
		f := newUserServiceFixture(t)

		key, err := totp.Generate(totp.GenerateOpts{Issuer: "AidFusion", AccountName: "a@b.com"})
		require.NoError(t, err)
		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)

		stored := &domain.User{ID: "user-123", Email: "a@b.com", PasswordHash: hashPassword(t, password), Role: domain.RoleUser}
		enrollment := &domain.TwoFactorEnrollment{UserID: "user-123", Secret: key.Secret(), Verified: true}

		f.users.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(stored, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), "user-123").Return(enrollment, nil)

		user, _, err := f.svc.Login(context.Background(), dto.LoginInput{Email: "a@b.com", Password: password, Code: code})
		require.NoError(t, err)
		assert.Equal(t, "user-123", user.ID)
	})

	t.Run("backup code completes login and is consumed", func(t *testing.T) {
		f := newUserServiceFixture(t)
		stored := &domain.User{ID: "user-123", Email: "a@b.com", PasswordHash: hashPassword(t, password), Role: domain.RoleUser}
		enrollment := &domain.TwoFactorEnrollment{UserID: "user-123", Secret: "SECRET", Verified: true}

		f.users.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(stored, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), "user-123").Return(enrollment, nil)
		f.twoFactor.EXPECT().ConsumeBackupCode(gomock.Any(), "user-123", gomock.Any()).Return(true, nil)

		user, _, err := f.svc.Login(context.Background(), dto.LoginInput{Email: "a@b.com", Password: password, Code: "3F9A-C02B"})
		require.NoError(t, err)
		assert.Equal(t, "user-123", user.ID)
	})

	t.Run("wrong code fails", func(t *testing.T) {
		f := newUserServiceFixture(t)
		stored := &domain.User{ID: "user-123", Email: "a@b.com", PasswordHash: hashPassword(t, password), Role: domain.RoleUser}
		enrollment := &domain.TwoFactorEnrollment{UserID: "user-123", Secret: "SECRET", Verified: true}

		f.users.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(stored, nil)
		f.twoFactor.EXPECT().Get(gomock.Any(), "user-123").Return(enrollment, nil)
		f.twoFactor.EXPECT().ConsumeBackupCode(gomock.Any(), "user-123", gomock.Any()).Return(false, nil)

		_, _, err := f.svc.Login(context.Background(), dto.LoginInput{Email: "a@b.com", Password: password, Code: "XXXX-YYYY"})
		assert.ErrorIs(t, err, autherror.ErrInvalidTwoFactorCode)
	})
}

func TestGetByIDRetriesTransientErrors(t *testing.T) {
	f := newUserServiceFixture(t)
	stored := &domain.User{ID: "user-123", Email: "a@b.com", Role: domain.RoleUser}

	gomock.InOrder(
		f.users.EXPECT().GetByID(gomock.Any(), "user-123").Return(nil, errors.New("connection reset")),
		f.users.EXPECT().GetByID(gomock.Any(), "user-123").Return(stored, nil),
	)

	user, err := f.svc.GetByID(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Equal(t, stored, user)
}

// TestUpdateRole exercises the full acting/target/role grid. The only
// rejected combination is an admin demoting themselves.
func TestUpdateRole(t *testing.T) {
	acting := &service.SessionClaims{Email: "admin@b.com", Role: domain.RoleAdmin}
	acting.Subject = "admin-1"

	cases := []struct {
		name       string
		targetID   string
		newRole    string
		wantUpdate bool
		wantErr    error
	}{
		{name: "self demotion rejected", targetID: "admin-1", newRole: "user", wantErr: autherror.ErrSelfDemotion},
		{name: "self promotion to admin is a no-op and allowed", targetID: "admin-1", newRole: "admin", wantUpdate: true},
		{name: "demote another user", targetID: "user-2", newRole: "user", wantUpdate: true},
		{name: "promote another user", targetID: "user-2", newRole: "admin", wantUpdate: true},
		{name: "invalid role rejected", targetID: "user-2", newRole: "superadmin", wantErr: autherror.ErrInvalidRole},
		{name: "empty role rejected", targetID: "user-2", newRole: "", wantErr: autherror.ErrInvalidRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newUserServiceFixture(t)

			if tc.wantUpdate {
				f.users.EXPECT().
					UpdateRole(gomock.Any(), tc.targetID, domain.Role(tc.newRole)).
					Return(true, nil)
			}

			err := f.svc.UpdateRole(context.Background(), acting, tc.targetID, tc.newRole)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("target not found", func(t *testing.T) {
		f := newUserServiceFixture(t)

		f.users.EXPECT().UpdateRole(gomock.Any(), "ghost", domain.RoleUser).Return(false, nil)

		err := f.svc.UpdateRole(context.Background(), acting, "ghost", "user")
		assert.ErrorIs(t, err, autherror.ErrUserNotFound)
	})
}
