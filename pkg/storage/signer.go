package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// URLSigner creates and validates signed download tokens for asset references.
type URLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewURLSigner constructs a signer with the provided secret and TTL.
func NewURLSigner(secret string, ttl time.Duration) *URLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &URLSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Sign returns a signed token embedding the asset reference and expiry.
func (s *URLSigner) Sign(ref string) (string, time.Time, error) {
	if ref == "" {
		return "", time.Time{}, fmt.Errorf("asset reference required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encodedRef := base64.RawURLEncoding.EncodeToString([]byte(ref))
	payload := fmt.Sprintf("%d|%s", expiresAt.Unix(), encodedRef)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	token := strings.Join([]string{fmt.Sprintf("%d", expiresAt.Unix()), encodedRef, signature}, ".")
	return token, expiresAt, nil
}

// Verify validates a token and returns the embedded asset reference.
func (s *URLSigner) Verify(token string) (string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", time.Time{}, fmt.Errorf("invalid token format")
	}
	ts := parts[0]
	encodedRef := parts[1]
	signature := parts[2]

	rawRef, err := base64.RawURLEncoding.DecodeString(encodedRef)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("decode reference: %w", err)
	}

	expUnix, err := parseUnix(ts)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Unix(expUnix, 0)

	payload := fmt.Sprintf("%s|%s", ts, encodedRef)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", time.Time{}, fmt.Errorf("invalid token signature")
	}
	if time.Now().After(expiresAt) {
		return "", time.Time{}, fmt.Errorf("token expired")
	}
	return string(rawRef), expiresAt, nil
}

func parseUnix(raw string) (int64, error) {
	var ts int64
	_, err := fmt.Sscanf(raw, "%d", &ts)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp")
	}
	return ts, nil
}
