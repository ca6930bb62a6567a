package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func newAuthFixture(t *testing.T) (*AuthService, *testutil.MockUserRepository) {
	t.Helper()
	users := testutil.NewMockUserRepository()
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	require.NoError(t, users.Create(&models.User{Username: "alice", Nickname: "Alice", PasswordHash: hash}))
	require.NoError(t, users.Create(&models.User{Username: "mallory", Nickname: "M", PasswordHash: hash, Status: models.StatusDisabled}))
	return NewAuthService(users, testSecret, time.Hour), users
}

func TestLogin(t *testing.T) {
	auth, _ := newAuthFixture(t)

	tests := []struct {
		name    string
		input   LoginInput
		wantErr error
	}{
		{"valid credentials", LoginInput{Username: "alice", Password: "correct horse"}, nil},
		{"surrounding whitespace in username", LoginInput{Username: "  alice ", Password: "correct horse"}, nil},
		{"wrong password", LoginInput{Username: "alice", Password: "battery staple"}, ErrInvalidCredentials},
		{"unknown user", LoginInput{Username: "nobody", Password: "correct horse"}, ErrInvalidCredentials},
		{"empty password", LoginInput{Username: "alice"}, ErrInvalidCredentials},
		{"disabled account", LoginInput{Username: "mallory", Password: "correct horse"}, ErrAccountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := auth.Login(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, resp.Token)
			require.Equal(t, "alice", resp.User.Username)
		})
	}
}

func TestLoginTokenVerifies(t *testing.T) {
	auth, _ := newAuthFixture(t)

	resp, err := auth.Login(LoginInput{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	userID, err := auth.VerifyToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, userID)
}

func TestVerifyTokenRejects(t *testing.T) {
	auth, _ := newAuthFixture(t)
	user := &models.User{ID: 1, Username: "alice", Role: models.RoleUser}

	other := NewAuthService(testutil.NewMockUserRepository(), "another-secret", time.Hour)
	foreign, err := other.GenerateToken(user)
	require.NoError(t, err)

	expiredIssuer := NewAuthService(testutil.NewMockUserRepository(), testSecret, time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.GenerateToken(user)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	zeroID, err := auth.GenerateToken(&models.User{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"other secret", foreign},
		{"expired", expired},
		{"alg none", unsigned},
		{"no user id", zeroID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.VerifyToken(tt.token)
			require.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
