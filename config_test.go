package authcore

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.SigningKey = []byte("test-signing-key-0123456789abcdef")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.Session.SigningKey = []byte("test-signing-key-0123456789abcdef")
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"missing signing key", func(c *Config) { c.Session.SigningKey = nil }},
		{"zero token ttl", func(c *Config) { c.Reset.TokenTTL = 0 }},
		{"zero cooldown", func(c *Config) { c.Reset.RequestCooldown = 0 }},
		{"zero code ttl", func(c *Config) { c.EmailLogin.CodeTTL = 0 }},
		{"too few otp digits", func(c *Config) { c.EmailLogin.OTPDigits = 4 }},
		{"too many otp digits", func(c *Config) { c.EmailLogin.OTPDigits = 12 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHCORE_SESSION_TTL", "12h")
	t.Setenv("AUTHCORE_SESSION_SIGNING_KEY", "env-signing-key")
	t.Setenv("AUTHCORE_RESET_COOLDOWN", "90s")
	t.Setenv("AUTHCORE_ALLOWED_DOMAINS", "utoronto.ca,mail.utoronto.ca")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}

	if cfg.Session.TTL != 12*time.Hour {
		t.Fatalf("session TTL %v, want 12h", cfg.Session.TTL)
	}
	if string(cfg.Session.SigningKey) != "env-signing-key" {
		t.Fatalf("signing key %q", cfg.Session.SigningKey)
	}
	if cfg.Reset.RequestCooldown != 90*time.Second {
		t.Fatalf("cooldown %v, want 90s", cfg.Reset.RequestCooldown)
	}
	if len(cfg.EmailLogin.AllowedDomains) != 2 {
		t.Fatalf("allowed domains %v", cfg.EmailLogin.AllowedDomains)
	}

	// Untouched knobs keep their defaults.
	if cfg.Reset.TokenTTL != time.Hour {
		t.Fatalf("token TTL %v, want default 1h", cfg.Reset.TokenTTL)
	}
	if cfg.EmailLogin.OTPDigits != 6 {
		t.Fatalf("otp digits %d, want default 6", cfg.EmailLogin.OTPDigits)
	}
}

func TestAllowedDomainsValidate(t *testing.T) {
	v := AllowedDomains{"utoronto.ca", "mail.utoronto.ca"}

	valid := []string{
		"user@utoronto.ca",
		"user@UTORONTO.CA",
		"first.last@mail.utoronto.ca",
	}
	for _, email := range valid {
		if err := v.Validate(email); err != nil {
			t.Fatalf("Validate(%q): %v", email, err)
		}
	}

	invalid := []string{
		"user@gmail.com",
		"user@sub.utoronto.ca",
		"no-at-sign",
		"@utoronto.ca",
		"user@",
		"",
	}
	for _, email := range invalid {
		if err := v.Validate(email); err == nil {
			t.Fatalf("Validate(%q) should fail", email)
		}
	}
}
