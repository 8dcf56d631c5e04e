package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the length of generated codes (RFC 6238 standard).
	Digits = 6
	// Period is the validity window of a single code in seconds.
	Period = 30
	// Skew is the number of adjacent time steps accepted on either side of
	// the current one to tolerate clock drift.
	Skew = 1

	secretBytes = 20 // 160-bit secret per RFC 4226 recommendation
)

var (
	secretRegex = regexp.MustCompile("^[A-Z2-7]+$")
	codeRegex   = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// GenerateSecret returns a new cryptographically random secret encoded as
// unpadded Base32.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrSecretGenerationFailed, err)
	}
	return b32.EncodeToString(buf), nil
}

// ProvisioningURI builds an otpauth:// enrollment descriptor for the given
// secret, suitable for rendering as a QR code. Account name is typically the
// user's email; issuer is the service name shown in authenticator apps.
func ProvisioningURI(secret, accountName, issuer string) (string, error) {
	secret = normalizeSecret(secret)
	if !secretRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	if accountName == "" {
		return "", ErrMissingAccountName
	}
	if issuer == "" {
		return "", ErrMissingIssuer
	}

	label := url.PathEscape(issuer) + ":" + url.PathEscape(accountName)

	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Validate reports whether the submitted code is correct for the secret at
// the current time, accepting Skew adjacent steps in either direction.
func Validate(secret, code string) (bool, error) {
	return ValidateAt(secret, code, time.Now())
}

// ValidateAt is Validate against an explicit reference time.
func ValidateAt(secret, code string, at time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCode
	}

	counter := at.Unix() / Period
	for i := -Skew; i <= Skew; i++ {
		if formatCode(hotp(key, counter+int64(i))) == code {
			return true, nil
		}
	}
	return false, nil
}

// Code returns the code for the 30-second step containing the given time.
// Used for testing and for generating codes on the server side.
func Code(secret string, at time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return formatCode(hotp(key, at.Unix()/Period)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = normalizeSecret(secret)
	if !secretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

func normalizeSecret(secret string) string {
	return strings.TrimRight(strings.ToUpper(strings.TrimSpace(secret)), "=")
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm with
// dynamic truncation.
func hotp(key []byte, counter int64) int {
	msg := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(msg)
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	return code % int(math.Pow10(Digits))
}

func formatCode(code int) string {
	return fmt.Sprintf("%0*d", Digits, code)
}
