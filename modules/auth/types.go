package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account record. TotpSecret presence means the second
// factor is enabled; it never leaves the service in API responses.
type User struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	TotpSecret       string
	IsActive         bool
	IsEmailConfirmed bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TwoFactorEnabled reports whether the user has a TOTP secret enrolled.
func (u *User) TwoFactorEnabled() bool {
	return u.TotpSecret != ""
}

// TwoFactorSetup is returned by SetupTwoFactor so the client can enroll an
// authenticator app either by scanning the QR code or entering the secret
// manually.
type TwoFactorSetup struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qr_code"`
}
