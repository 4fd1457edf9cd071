// Package feishu sends signed rich-text notifications to a Feishu (Lark)
// custom-bot webhook.
package feishu

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/kart-io/feishu-notifier/pkg/errors"
)

// SignatureWindow is how far a signed timestamp may drift from now
// before Feishu rejects the request.
const SignatureWindow = time.Hour

// Signer computes Feishu webhook signatures for a shared secret.
type Signer struct {
	secret string
}

// NewSigner creates a signer. An empty secret is allowed and signs with
// an empty secret string.
func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign generates the HMAC-SHA256 signature for timestamp.
// Feishu keys the HMAC with "timestamp\nsecret" and signs an empty message.
func (s *Signer) Sign(timestamp string) string {
	stringToSign := timestamp + "\n" + s.secret
	h := hmac.New(sha256.New, []byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// SignAt returns the unix-seconds timestamp for t and its signature.
func (s *Signer) SignAt(t time.Time) (timestamp, sign string) {
	timestamp = strconv.FormatInt(t.Unix(), 10)
	return timestamp, s.Sign(timestamp)
}

// Verify checks signature against timestamp, rejecting timestamps outside
// SignatureWindow around now.
func (s *Signer) Verify(timestamp, signature string, now time.Time) error {
	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.Wrap(err, errors.ErrSignatureInvalid, "invalid timestamp")
	}

	diff := now.Sub(time.Unix(secs, 0))
	if diff > SignatureWindow || diff < -SignatureWindow {
		return errors.New(errors.ErrTimestampExpired, "timestamp outside signature window").
			WithMetadata("diff_seconds", int64(diff.Seconds()))
	}

	if !hmac.Equal([]byte(signature), []byte(s.Sign(timestamp))) {
		return errors.New(errors.ErrSignatureInvalid, "signature mismatch")
	}
	return nil
}
