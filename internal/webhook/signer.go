package webhook

import (
	"encoding/hex"
	"strconv"
	"time"
)

// Signer produces the signature and timestamp headers for an outbound
// delivery. Providers sign with the same shared secret the verifier checks.
type Signer struct {
	secret []byte
}

// NewSigner creates a signer for the shared secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the signature and timestamp header values for body.
func (s *Signer) Sign(body []byte) (signature, timestamp string) {
	return s.SignAt(body, time.Now())
}

// SignAt computes the header values for an explicit timestamp.
func (s *Signer) SignAt(body []byte, at time.Time) (signature, timestamp string) {
	timestamp = strconv.FormatInt(at.Unix(), 10)
	digest := computeDigest(s.secret, timestamp, body)
	return signaturePrefix + hex.EncodeToString(digest), timestamp
}
