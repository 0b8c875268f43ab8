package ticketing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// TimeFormat is the canonical form of the issuance instant inside the signed
// string and the QR payload: UTC, whole seconds.
const TimeFormat = "2006-01-02T15:04:05Z"

var ErrSecretMissing = errors.New("ticket signing secret is not configured")

// Signer computes the validation hash binding a ticket to its booking, holder
// and issuance instant. The secret is injected; there is no default.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the hex HMAC-SHA-256 of "{bookingID}:{userID}:{issuedAt}".
func (s *Signer) Sign(bookingID, userID, issuedAt string) string {
	data := fmt.Sprintf("%s:%s:%s", bookingID, userID, issuedAt)
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// SignAt is Sign with the issuance instant in its canonical form.
func (s *Signer) SignAt(bookingID, userID string, issuedAt time.Time) string {
	return s.Sign(bookingID, userID, issuedAt.UTC().Format(TimeFormat))
}

// Verify recomputes the signature for the presented tuple and compares it in
// constant time.
func (s *Signer) Verify(bookingID, userID, issuedAt, presented string) bool {
	expected := s.Sign(bookingID, userID, issuedAt)
	return hmac.Equal([]byte(expected), []byte(presented))
}
