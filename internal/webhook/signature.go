package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is how far in the past a signed timestamp may lie
// before the request is treated as a replay.
const DefaultTolerance = 30 * time.Minute

var (
	// ErrMissingSignature is returned when no signature header was sent.
	ErrMissingSignature = errors.New("missing signature")
	// ErrMalformedSignature is returned when the header does not match
	// the expected "t=<ts>,v0=<hex>" form.
	ErrMalformedSignature = errors.New("malformed signature")
	// ErrStaleTimestamp is returned when the signed timestamp is older
	// than the replay tolerance.
	ErrStaleTimestamp = errors.New("stale timestamp")
	// ErrSignatureMismatch is returned when the HMAC does not verify.
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// VerifySignature checks a header of form "t=<unix_ts>,v0=<hex_hmac>"
// against HMAC-SHA256(secret, "<ts>.<body>"). The timestamp must not be
// older than tolerance relative to now; a correct HMAC does not rescue a
// stale request.
func VerifySignature(secret []byte, header string, body []byte, now time.Time, tolerance time.Duration) error {
	if header == "" {
		return ErrMissingSignature
	}

	parts := strings.SplitN(header, ",", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "t=") || !strings.HasPrefix(parts[1], "v0=") {
		return ErrMalformedSignature
	}

	tsRaw := strings.TrimPrefix(parts[0], "t=")
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %q", ErrMalformedSignature, tsRaw)
	}

	if ts < now.Add(-tolerance).Unix() {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.%s", ts, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return ErrSignatureMismatch
	}

	return nil
}
