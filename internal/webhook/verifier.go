package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const signaturePrefix = "sha256="

// Verification failure reasons, mapped to HTTP rejections by the gateway.
var (
	ErrMissingSignature   = errors.New("missing signature header")
	ErrMissingTimestamp   = errors.New("missing timestamp header")
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrBadSignature       = errors.New("signature mismatch")
	ErrStaleTimestamp     = errors.New("timestamp outside freshness window")
	ErrBadPayload         = errors.New("malformed event payload")
)

// Verifier validates inbound callback authenticity with a shared secret and
// a timestamp-bound HMAC-SHA256 signature.
type Verifier struct {
	secret    []byte
	freshness time.Duration
	now       func() time.Time
}

// NewVerifier creates a verifier. freshness bounds the allowed age of the
// timestamp header for replay protection.
func NewVerifier(secret string, freshness time.Duration) *Verifier {
	return &Verifier{
		secret:    []byte(secret),
		freshness: freshness,
		now:       time.Now,
	}
}

// Verify checks the signature and timestamp headers against the raw body and
// returns the parsed event on success. It has no side effects: a rejected
// delivery must leave the registry untouched.
func (v *Verifier) Verify(body []byte, signature, timestamp string) (*Event, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}
	if timestamp == "" {
		return nil, ErrMissingTimestamp
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingTimestamp, timestamp)
	}

	// Replay protection: reject timestamps too old or too far in the future.
	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.freshness || age < -v.freshness {
		return nil, fmt.Errorf("%w: age %s", ErrStaleTimestamp, age.Truncate(time.Second))
	}

	if !strings.HasPrefix(signature, signaturePrefix) {
		return nil, ErrMalformedSignature
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return nil, ErrMalformedSignature
	}

	expected := computeDigest(v.secret, timestamp, body)
	if !hmac.Equal(provided, expected) {
		return nil, ErrBadSignature
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrBadPayload)
	}

	return &ev, nil
}

// computeDigest computes HMAC-SHA256 over the timestamp-concatenated body.
func computeDigest(secret []byte, timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}
