package util

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/plaid/plaid-go/v41/plaid"
)

// Webhook callers sign a JWT whose claims carry the SHA-256 of the request body and an
// issue time; both are checked here for Plaid and for the job runner.

const (
	JobSignatureHeader   = "X-Job-Signature"
	PlaidSignatureHeader = "Plaid-Verification"
)

var (
	maxAge  = 5 * time.Minute
	maxSkew = 30 * time.Second
)

func jwkToECDSAPublicKey(jwk *plaid.JWKPublicKey) (*ecdsa.PublicKey, error) {
	if jwk == nil || jwk.X == "" || jwk.Y == "" ||
		jwk.Kty != "EC" ||
		jwk.Crv != "P-256" {
		return nil, errors.New("invalid/unsupported JWK")
	}
	xBytes, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("decode x: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(jwk.Y)
	if err != nil {
		return nil, fmt.Errorf("decode y: %w", err)
	}
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}

func bodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// checkBodyClaims verifies freshness and body integrity of already signature-checked claims.
func checkBodyClaims(claims jwt.MapClaims, body []byte, now time.Time) error {
	iatVal, ok := claims["iat"]
	if !ok {
		return errors.New("missing iat")
	}
	var iat time.Time
	switch v := iatVal.(type) {
	case float64:
		iat = time.Unix(int64(v), 0)
	case int64:
		iat = time.Unix(v, 0)
	default:
		return errors.New("invalid iat type")
	}
	if now.Sub(iat) > maxAge {
		return errors.New("token too old (>5m)")
	}
	if iat.Sub(now) > maxSkew {
		return errors.New("token issued in the future")
	}

	wantHash, ok := claims["request_body_sha256"].(string)
	if !ok || wantHash == "" {
		return errors.New("missing request_body_sha256")
	}
	if subtle.ConstantTimeCompare([]byte(bodyHash(body)), []byte(strings.ToLower(wantHash))) != 1 {
		return errors.New("body hash mismatch")
	}
	return nil
}

// SignJobRequest produces the X-Job-Signature value for body.
func SignJobRequest(key []byte, body []byte, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat":                 now.Unix(),
		"request_body_sha256": bodyHash(body),
	})
	return token.SignedString(key)
}

// VerifyJobRequest checks an X-Job-Signature token against the shared signing key.
func VerifyJobRequest(tokenString string, key []byte, body []byte, now time.Time) error {
	if tokenString == "" {
		return fmt.Errorf("missing %s header", JobSignatureHeader)
	}
	if len(key) == 0 {
		return errors.New("job signing key not configured")
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid token: %w", err)
	}
	return checkBodyClaims(claims, body, now)
}

// PlaidVerifier checks Plaid webhook signatures against Plaid's published keys.
type PlaidVerifier struct {
	client *plaid.APIClient

	mu       sync.Mutex
	jwkCache map[string]*plaid.JWKPublicKey
}

func NewPlaidVerifier(client *plaid.APIClient) *PlaidVerifier {
	return &PlaidVerifier{client: client, jwkCache: map[string]*plaid.JWKPublicKey{}}
}

func (v *PlaidVerifier) Verify(ctx context.Context, webhookBody []byte, headers http.Header) error {
	tokenString := headers.Get(PlaidSignatureHeader)
	if tokenString == "" {
		return fmt.Errorf("missing %s header", PlaidSignatureHeader)
	}

	// Decode JWT header (unverified) to extract alg and kid
	parser := jwt.NewParser(jwt.WithLeeway(30 * time.Second))

	unverified, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("parse unverified token: %w", err)
	}
	if unverified.Method.Alg() != jwt.SigningMethodES256.Alg() {
		return fmt.Errorf("unexpected alg %q (want ES256)", unverified.Method.Alg())
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return errors.New("missing kid in JWT header")
	}

	jwk, err := v.getJWK(ctx, kid)
	if err != nil {
		return fmt.Errorf("get JWK: %w", err)
	}
	pubKey, err := jwkToECDSAPublicKey(jwk)
	if err != nil {
		return fmt.Errorf("jwk->ecdsa: %w", err)
	}

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodES256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return pubKey, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid token: %w", err)
	}
	return checkBodyClaims(claims, webhookBody, time.Now())
}

func (v *PlaidVerifier) getJWK(ctx context.Context, kid string) (*plaid.JWKPublicKey, error) {
	v.mu.Lock()
	key, ok := v.jwkCache[kid]
	v.mu.Unlock()
	if ok && key != nil {
		return key, nil
	}

	req := *plaid.NewWebhookVerificationKeyGetRequest(kid)
	resp, _, err := v.client.PlaidApi.WebhookVerificationKeyGet(ctx).
		WebhookVerificationKeyGetRequest(req).
		Execute()
	if err != nil {
		return nil, err
	}
	jwk := resp.GetKey()
	if jwk.Kid == kid {
		v.mu.Lock()
		v.jwkCache[kid] = &jwk
		v.mu.Unlock()
	}
	return &jwk, nil
}
