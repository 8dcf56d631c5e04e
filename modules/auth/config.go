package auth

import "time"

type Config struct {
	JWTSecret string `env:"JWT_SECRET,required"`
	Issuer    string `env:"JWT_ISSUER" envDefault:"cyphervault"`

	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	EmailConfirmTTL  time.Duration `env:"EMAIL_CONFIRM_TTL" envDefault:"1h"`
	PasswordResetTTL time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`

	// AppBaseURL is used to build absolute confirmation and reset links in
	// outbound email.
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	SessionCookieName string `env:"SESSION_COOKIE_NAME" envDefault:"access_token"`
	SecureCookie      bool   `env:"SECURE_COOKIE" envDefault:"false"`

	// TOTPIssuer is the issuer label shown in authenticator apps.
	TOTPIssuer string `env:"TOTP_ISSUER" envDefault:"CypherVault"`
}
