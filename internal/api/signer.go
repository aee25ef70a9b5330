package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode"

	"futures-testnet-bot/internal/model"
)

// SigningError reports a secret that cannot be used to sign requests.
type SigningError struct {
	Reason string
}

func (e *SigningError) Error() string {
	return "signing: " + e.Reason
}

func (e *SigningError) Kind() model.ErrorKind { return model.KindSigning }

// Signer computes the HMAC-SHA256 signature Binance expects on SIGNED endpoints.
type Signer struct {
	secret []byte
	wiped  bool
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, &SigningError{Reason: "api secret is empty"}
	}
	for i, r := range secret {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return nil, &SigningError{Reason: fmt.Sprintf("api secret has an invalid character at offset %d", i)}
		}
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of queryString.
func (s *Signer) Sign(queryString string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(queryString))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignParams encodes p once and signs exactly that string.
func (s *Signer) SignParams(p Params) (query, signature string) {
	query = p.Encode()
	return query, s.Sign(query)
}

// Wipe zeroes the secret; the signer must not be used afterwards.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	for i := range s.secret {
		s.secret[i] = 0
	}
	s.wiped = true
}
