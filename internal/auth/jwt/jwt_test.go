package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesalabs/mesa/internal/ids"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, d time.Duration) *Service {
	t.Helper()
	s, err := NewService(Config{SecretKey: testSecret, Duration: d})
	require.NoError(t, err)
	return s
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{SecretKey: "", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)

	_, err = NewService(Config{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)

	_, err = NewService(Config{SecretKey: testSecret, Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestService_AdminToken_RoundTrip(t *testing.T) {
	s := newTestService(t, time.Hour)
	tok, err := s.GenerateAdminToken(ids.UserID("u-1"), "owner")
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, KindSaaSAdmin, claims.Kind)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "owner", claims.Role)
	assert.Empty(t, claims.TenantID)
}

func TestService_TenantToken_RoundTrip(t *testing.T) {
	s := newTestService(t, time.Hour)
	tok, err := s.GenerateTenantToken(
		ids.UserID("u-2"),
		ids.TenantID("t-1"),
		"manager",
		[]string{"menu.read", "orders.write"},
		[]ids.ModuleID{"menu", "orders"},
	)
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, KindTenantUser, claims.Kind)
	assert.Equal(t, "t-1", claims.TenantID)
	assert.Equal(t, []string{"menu.read", "orders.write"}, claims.Permissions)
	assert.Equal(t, []string{"menu", "orders"}, claims.ActiveModules)
}

func TestService_ExpiredAndInvalid(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Nanosecond})
	require.NoError(t, err)

	tok, err := s.GenerateAdminToken(ids.UserID("u-1"), "owner")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	claims, err := s.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)

	claims, err = s.ValidateToken("not-a-token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RejectsForeignSignature(t *testing.T) {
	s1 := newTestService(t, time.Hour)
	s2, err := NewService(Config{SecretKey: "ffffffffffffffffffffffffffffffff", Duration: time.Hour})
	require.NoError(t, err)

	tok, err := s1.GenerateAdminToken(ids.UserID("u-1"), "owner")
	require.NoError(t, err)

	_, err = s2.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
