package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
)

const testSecret = "unit-test-secret"

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-id-123",
		Username: "carlo",
		Role:     domain.RoleUser,
		IsActive: true,
	}
}

func testPermissions() []domain.Permission {
	return []domain.Permission{domain.PermissionReadDevices, domain.PermissionWriteDevices}
}

func TestService_IssueAndVerifyRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(testSecret, time.Hour, clock)

	signed, err := svc.Issue(testUser(), testPermissions())
	require.NoError(t, err)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)

	assert.Equal(t, "user-id-123", claims.Subject)
	assert.Equal(t, "carlo", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, testPermissions(), claims.Permissions)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Contains(t, claims.Audience, Audience)
}

func TestService_ExpIsIssuedAtPlusTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	svc := NewService(testSecret, 45*time.Minute, clock)

	signed, err := svc.Issue(testUser(), nil)
	require.NoError(t, err)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(45*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestService_VerifyExpiredToken(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(testSecret, time.Second, clock)

	signed, err := svc.Issue(testUser(), nil)
	require.NoError(t, err)

	// Valid right up to the TTL boundary.
	_, err = svc.Verify(signed)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestService_VerifyWrongSecret(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewService(testSecret, time.Hour, clock)
	verifier := NewService("some-other-secret", time.Hour, clock)

	signed, err := issuer.Issue(testUser(), nil)
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestService_VerifyRejectsForeignIssuerAndAudience(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(testSecret, time.Hour, clock)

	now := clock.Now()
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "carlo",
		Role:     domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-id-123",
			Issuer:    "some-other-api",
			Audience:  jwt.ClaimStrings{"some-other-client"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.VerifyExpired(signed)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestService_VerifyGarbage(t *testing.T) {
	svc := NewService(testSecret, time.Hour, clockwork.NewRealClock())
	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestService_VerifyExpiredAcceptsExpiredSignature(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(testSecret, time.Second, clock)

	signed, err := svc.Issue(testUser(), testPermissions())
	require.NoError(t, err)

	clock.Advance(time.Hour)

	// Regular verification refuses it, the refresh path still decodes it.
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	claims, err := svc.VerifyExpired(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-id-123", claims.Subject)
	assert.Equal(t, testPermissions(), claims.Permissions)
}

func TestService_VerifyExpiredStillChecksSignature(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewService("attacker-secret", time.Second, clock)
	verifier := NewService(testSecret, time.Second, clock)

	signed, err := issuer.Issue(testUser(), nil)
	require.NoError(t, err)

	_, err = verifier.VerifyExpired(signed)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
