package feishu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/feishu-notifier/pkg/errors"
)

func TestSigner_Sign(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		timestamp string
		expected  string
	}{
		{
			name:      "known vector",
			secret:    "test-secret",
			timestamp: "1700000000",
			expected:  "mbm4Y4oluIPQ00qlBIhX8vAZ0EKv3nw0LuTb91jPL84=",
		},
		{
			name:      "empty secret still signs",
			secret:    "",
			timestamp: "1700000000",
			expected:  "DaBQacIHB6FCKocfPme7o5BIrwne87ibBLj7EYGUds0=",
		},
		{
			name:      "timestamp changes signature",
			secret:    "test-secret",
			timestamp: "1700000001",
			expected:  "wlkWJ5yHBgxkfCL58e+uYjHfCsGBZymTcoZgyih2z6M=",
		},
		{
			name:      "secret changes signature",
			secret:    "other-secret",
			timestamp: "1700000000",
			expected:  "CsekdnVRew3Kc6cuploXuJbf2RUxbZ21emZTOmVTN9s=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewSigner(tt.secret).Sign(tt.timestamp))
		})
	}
}

func TestSigner_Deterministic(t *testing.T) {
	s := NewSigner("gQURr67BPOsTZlI7jBn0Jh")
	first := s.Sign("1700000000")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Sign("1700000000"))
	}
	assert.NotEqual(t, first, s.Sign("1700000060"))
	assert.NotEqual(t, first, NewSigner("gQURr67BPOsTZlI7jBn0Jx").Sign("1700000000"))
}

func TestSigner_SignAt(t *testing.T) {
	s := NewSigner("test-secret")
	ts, sign := s.SignAt(time.Unix(1700000000, 999))
	assert.Equal(t, "1700000000", ts)
	assert.Equal(t, "mbm4Y4oluIPQ00qlBIhX8vAZ0EKv3nw0LuTb91jPL84=", sign)
}

func TestSigner_Verify(t *testing.T) {
	s := NewSigner("test-secret")
	now := time.Unix(1700000000, 0)
	ts, sign := s.SignAt(now)

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, s.Verify(ts, sign, now.Add(30*time.Minute)))
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := NewSigner("nope").Verify(ts, sign, now)
		assert.ErrorIs(t, err, errors.New(errors.ErrSignatureInvalid, ""))
	})

	t.Run("expired", func(t *testing.T) {
		err := s.Verify(ts, sign, now.Add(2*time.Hour))
		assert.ErrorIs(t, err, errors.New(errors.ErrTimestampExpired, ""))
	})

	t.Run("future", func(t *testing.T) {
		err := s.Verify(ts, sign, now.Add(-2*time.Hour))
		assert.ErrorIs(t, err, errors.New(errors.ErrTimestampExpired, ""))
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		err := s.Verify("yesterday", sign, now)
		assert.ErrorIs(t, err, errors.New(errors.ErrSignatureInvalid, ""))
	})
}
