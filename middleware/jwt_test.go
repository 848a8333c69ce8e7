package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestSignSession_RoundTrip(t *testing.T) {
	tok, err := SignSession(99, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := VerifySession(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.AccountID)
}

func TestVerifySession_WrongSecret(t *testing.T) {
	tok, err := SignSession(1, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = VerifySession(tok, "wrong-secret")
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestVerifySession_Expired(t *testing.T) {
	tok, err := SignSession(1, testSecret, -time.Second)
	require.NoError(t, err)

	_, err = VerifySession(tok, testSecret)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestVerifySession_Malformed(t *testing.T) {
	_, err := VerifySession("not.a.jwt", testSecret)
	assert.ErrorIs(t, err, ErrBadToken)
}
