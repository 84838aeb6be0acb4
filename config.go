package authcore

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable of the Service. Zero values are filled in by
// [DefaultConfig]; [Config.Validate] runs during [Builder.Build].
type Config struct {
	Password   PasswordConfig
	Session    SessionConfig
	Reset      ResetConfig
	EmailLogin EmailLoginConfig
	Ledger     LedgerConfig
	Audit      AuditConfig
}

// PasswordConfig holds the Argon2id parameters for the credential hasher.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// RehashOnLogin re-hashes a password transparently on successful login
	// when the stored hash was produced with weaker parameters. Best-effort:
	// a failed rewrite never fails the login.
	RehashOnLogin bool
}

// SessionConfig holds signing parameters for the session issuer.
type SessionConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	SigningKey    []byte
	PublicKey     []byte // ed25519 only
	Issuer        string
}

// ResetConfig holds the password-reset knobs.
type ResetConfig struct {
	TokenTTL        time.Duration
	RequestCooldown time.Duration
	// BaseURL is the prefix of the reset link placed in notifications, e.g.
	// "https://points.example.edu/reset". Empty leaves the link equal to the
	// raw token.
	BaseURL string
	// DiscloseUnknownUser preserves the observed behavior of reporting
	// ErrUserNotFound from the request flows. Set false to answer unknown
	// identifiers with a synthetic success instead, closing the enumeration
	// channel without touching call sites.
	DiscloseUnknownUser bool
}

// EmailLoginConfig holds the one-time-passcode knobs.
type EmailLoginConfig struct {
	CodeTTL   time.Duration
	OTPDigits int
	// AllowedDomains feeds the builtin domain validator. Ignored when a
	// custom DomainValidator is supplied through the Builder.
	AllowedDomains []string
}

// LedgerConfig applies only when the Service is built with a Redis client;
// the default in-memory ledgers take no tuning.
type LedgerConfig struct {
	RedisPrefix string
	// SupersededRetention bounds how long a superseded-token entry stays
	// resolvable in Redis. The in-memory ledger keeps entries for the process
	// lifetime instead.
	SupersededRetention time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// DefaultConfig returns the production defaults: 24h sessions, 1h reset
// tokens with a 60s per-address cooldown, and 6-digit codes valid for 10
// minutes.
func DefaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			SigningMethod: "hs256",
		},
		Reset: ResetConfig{
			TokenTTL:            time.Hour,
			RequestCooldown:     60 * time.Second,
			DiscloseUnknownUser: true,
		},
		EmailLogin: EmailLoginConfig{
			CodeTTL:   10 * time.Minute,
			OTPDigits: 6,
		},
		Ledger: LedgerConfig{
			RedisPrefix:         "ac",
			SupersededRetention: 30 * 24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate checks invariants that Build depends on. Hasher and issuer
// parameters get a second, stricter validation inside their own packages.
func (c Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if len(c.Session.SigningKey) == 0 {
		return errors.New("session signing key required")
	}
	if c.Reset.TokenTTL <= 0 {
		return errors.New("reset token TTL must be positive")
	}
	if c.Reset.RequestCooldown <= 0 {
		return errors.New("reset request cooldown must be positive")
	}
	if c.EmailLogin.CodeTTL <= 0 {
		return errors.New("login code TTL must be positive")
	}
	if c.EmailLogin.OTPDigits < 6 || c.EmailLogin.OTPDigits > 10 {
		return errors.New("otp digits must be between 6 and 10")
	}
	return nil
}

type envOverrides struct {
	SessionTTL          time.Duration `env:"AUTHCORE_SESSION_TTL"`
	SessionSigningKey   string        `env:"AUTHCORE_SESSION_SIGNING_KEY"`
	SessionIssuer       string        `env:"AUTHCORE_SESSION_ISSUER"`
	ResetTokenTTL       time.Duration `env:"AUTHCORE_RESET_TOKEN_TTL"`
	ResetCooldown       time.Duration `env:"AUTHCORE_RESET_COOLDOWN"`
	ResetBaseURL        string        `env:"AUTHCORE_RESET_BASE_URL"`
	CodeTTL             time.Duration `env:"AUTHCORE_LOGIN_CODE_TTL"`
	OTPDigits           int           `env:"AUTHCORE_OTP_DIGITS"`
	AllowedDomains      []string      `env:"AUTHCORE_ALLOWED_DOMAINS" envSeparator:","`
	RedisPrefix         string        `env:"AUTHCORE_REDIS_PREFIX"`
	SupersededRetention time.Duration `env:"AUTHCORE_SUPERSEDED_RETENTION"`
	AuditEnabled        bool          `env:"AUTHCORE_AUDIT_ENABLED" envDefault:"true"`
}

// ConfigFromEnv returns [DefaultConfig] with overrides applied from
// AUTHCORE_* environment variables. Unset variables leave the defaults
// untouched.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return Config{}, err
	}

	if o.SessionTTL > 0 {
		cfg.Session.TTL = o.SessionTTL
	}
	if o.SessionSigningKey != "" {
		cfg.Session.SigningKey = []byte(o.SessionSigningKey)
	}
	if o.SessionIssuer != "" {
		cfg.Session.Issuer = o.SessionIssuer
	}
	if o.ResetTokenTTL > 0 {
		cfg.Reset.TokenTTL = o.ResetTokenTTL
	}
	if o.ResetCooldown > 0 {
		cfg.Reset.RequestCooldown = o.ResetCooldown
	}
	if o.ResetBaseURL != "" {
		cfg.Reset.BaseURL = o.ResetBaseURL
	}
	if o.CodeTTL > 0 {
		cfg.EmailLogin.CodeTTL = o.CodeTTL
	}
	if o.OTPDigits > 0 {
		cfg.EmailLogin.OTPDigits = o.OTPDigits
	}
	if len(o.AllowedDomains) > 0 {
		cfg.EmailLogin.AllowedDomains = o.AllowedDomains
	}
	if o.RedisPrefix != "" {
		cfg.Ledger.RedisPrefix = o.RedisPrefix
	}
	if o.SupersededRetention > 0 {
		cfg.Ledger.SupersededRetention = o.SupersededRetention
	}
	cfg.Audit.Enabled = o.AuditEnabled

	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.SigningKey = cloneBytes(cfg.Session.SigningKey)
	out.Session.PublicKey = cloneBytes(cfg.Session.PublicKey)
	out.EmailLogin.AllowedDomains = append([]string(nil), cfg.EmailLogin.AllowedDomains...)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
