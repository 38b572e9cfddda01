package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sign(secret []byte, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v0=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("shared-secret")
	body := []byte(`{"data":{}}`)
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{
			name:   "valid signature and fresh timestamp",
			header: sign(secret, now.Unix(), body),
		},
		{
			name:   "timestamp just inside tolerance",
			header: sign(secret, now.Add(-29*time.Minute).Unix(), body),
		},
		{
			name:    "missing header",
			header:  "",
			wantErr: ErrMissingSignature,
		},
		{
			name:    "malformed header",
			header:  "v0=abc,t=123",
			wantErr: ErrMalformedSignature,
		},
		{
			name:    "non-numeric timestamp",
			header:  "t=abc,v0=deadbeef",
			wantErr: ErrMalformedSignature,
		},
		{
			name: "stale timestamp with correct hmac",
			// Correct HMAC must not rescue a replayed request.
			header:  sign(secret, now.Add(-31*time.Minute).Unix(), body),
			wantErr: ErrStaleTimestamp,
		},
		{
			name:    "fresh timestamp with wrong hmac",
			header:  fmt.Sprintf("t=%d,v0=%s", now.Unix(), "00112233445566778899aabbccddeeff"),
			wantErr: ErrSignatureMismatch,
		},
		{
			name:    "wrong secret",
			header:  sign([]byte("other-secret"), now.Unix(), body),
			wantErr: ErrSignatureMismatch,
		},
		{
			name:    "tampered body",
			header:  sign(secret, now.Unix(), []byte(`{"data":{"x":1}}`)),
			wantErr: ErrSignatureMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(secret, tt.header, body, now, DefaultTolerance)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
