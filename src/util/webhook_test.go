package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSignatureRoundTrip(t *testing.T) {
	key := []byte("job-secret")
	body := []byte(`{"job":"cleanup-old-data"}`)
	now := time.Now()

	sig, err := SignJobRequest(key, body, now)
	require.NoError(t, err)
	assert.NoError(t, VerifyJobRequest(sig, key, body, now.Add(time.Minute)))
}

func TestJobSignatureRejects(t *testing.T) {
	key := []byte("job-secret")
	body := []byte(`{"job":"cleanup-old-data"}`)
	now := time.Now()
	sig, err := SignJobRequest(key, body, now)
	require.NoError(t, err)

	assert.Error(t, VerifyJobRequest("", key, body, now), "missing header")
	assert.Error(t, VerifyJobRequest(sig, nil, body, now), "no key configured")
	assert.Error(t, VerifyJobRequest(sig, []byte("other"), body, now), "wrong key")
	assert.ErrorContains(t, VerifyJobRequest(sig, key, []byte(`{"job":"x"}`), now), "body hash mismatch")
	assert.ErrorContains(t, VerifyJobRequest(sig, key, body, now.Add(6*time.Minute)), "too old")

	future, err := SignJobRequest(key, body, now.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.ErrorContains(t, VerifyJobRequest(future, key, body, now), "issued in the future")
	assert.ErrorContains(t, VerifyJobRequest(future, key, body, now.AddDate(0, 6, 0)), "issued in the future")

	skewed, err := SignJobRequest(key, body, now.Add(10*time.Second))
	require.NoError(t, err)
	assert.NoError(t, VerifyJobRequest(skewed, key, body, now), "small clock skew is tolerated")
}

func TestJobSignatureRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iat":                 time.Now().Unix(),
		"request_body_sha256": bodyHash([]byte("{}")),
	})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Error(t, VerifyJobRequest(s, []byte("k"), []byte("{}"), time.Now()))
}

func TestCheckBodyClaims(t *testing.T) {
	now := time.Now()
	body := []byte("payload")

	assert.ErrorContains(t, checkBodyClaims(jwt.MapClaims{}, body, now), "missing iat")
	assert.ErrorContains(t, checkBodyClaims(jwt.MapClaims{"iat": "yesterday"}, body, now), "invalid iat type")
	assert.ErrorContains(t, checkBodyClaims(jwt.MapClaims{"iat": float64(now.Unix())}, body, now), "missing request_body_sha256")
	assert.NoError(t, checkBodyClaims(jwt.MapClaims{
		"iat":                 float64(now.Unix()),
		"request_body_sha256": bodyHash(body),
	}, body, now))
}
