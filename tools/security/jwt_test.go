package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapcap/tools/errs"
)

func testOpts() Options {
	return Options{Secret: []byte("test-secret"), Alg: "HS256", TTL: time.Hour}
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := testOpts()

	token, exp, err := Generate(opts, "u1", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	claims, err := Verify(opts, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyExpiredIsDistinct(t *testing.T) {
	opts := testOpts()
	opts.TTL = -time.Minute

	token, _, err := Generate(opts, "u1", "alice")
	require.NoError(t, err)

	_, err = Verify(opts, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTokenExpired)
	assert.NotErrorIs(t, err, errs.ErrTokenInvalid)
}

func TestVerifyBadSignature(t *testing.T) {
	token, _, err := Generate(testOpts(), "u1", "alice")
	require.NoError(t, err)

	other := Options{Secret: []byte("another-secret"), TTL: time.Hour}
	_, err = Verify(other, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := Verify(testOpts(), "not.a.token")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTokenInvalid)
}

func TestUnsupportedAlg(t *testing.T) {
	opts := testOpts()
	opts.Alg = "RS256"
	_, _, err := Generate(opts, "u1", "alice")
	assert.Error(t, err)
}
