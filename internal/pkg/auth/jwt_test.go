// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbox-gh/storefront-backend/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "blackbox-test"
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.AccessTokenExpiry = 15 * time.Minute
	cfg.JWT.RefreshTokenExpiry = 7 * 24 * time.Hour
	cfg.Security.BcryptCost = 4
	return cfg
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken("U-01", "kwame@gh.com", false)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "U-01", claims.UserID)
	assert.Equal(t, "kwame@gh.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenNotValidAsAccess(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateRefreshToken("U-01", "kwame@gh.com")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.Error(t, err)

	claims, err := manager.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken("U-01", "kwame@gh.com", true)
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"

	_, err = NewJWTManager(other).ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"missing prefix", "abc.def.ghi", ""},
		{"empty header", "", ""},
		{"prefix only", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokenFromHeader(tt.header))
		})
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	hash, err := manager.HashPassword("blackbox123")
	require.NoError(t, err)
	assert.NotEqual(t, "blackbox123", hash)

	assert.NoError(t, manager.VerifyPassword("blackbox123", hash))
	assert.Error(t, manager.VerifyPassword("wrong-pass1", hash))
}

func TestValidatePassword(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"letters and numbers", "blackbox123", false},
		{"too short", "bb1", true},
		{"letters only", "blackboxpass", true},
		{"numbers only", "1234567890", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
