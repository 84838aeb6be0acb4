package authcore

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/campuspoints/authcore/internal/audit"
	"github.com/campuspoints/authcore/internal/ledger"
	"github.com/campuspoints/authcore/password"
	"github.com/campuspoints/authcore/session"
)

// Builder assembles a [Service]. The zero value is not usable; start from
// [New]. Without a Redis client the three ledgers are in-memory and
// process-local, which matches the source system; WithRedis switches them to
// shared, TTL-bounded Redis state.
type Builder struct {
	config Config
	redis  *redis.Client

	directory UserDirectory
	notifier  Notifier
	validator DomainValidator
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the rate-limit, superseded-token, and OTP ledgers with
// Redis instead of process-local maps.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithDirectory sets the durable identity store. Required.
func (b *Builder) WithDirectory(d UserDirectory) *Builder {
	b.directory = d
	return b
}

// WithNotifier sets the email sender. Required.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithDomainValidator overrides the builtin allowed-domains validator.
func (b *Builder) WithDomainValidator(v DomainValidator) *Builder {
	b.validator = v
	return b
}

// WithAuditSink sets the destination for audit events. Defaults to a no-op
// sink when auditing is enabled without one.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the ledgers, hasher, issuer, and
// audit dispatcher, and returns a ready Service. A Builder builds once.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.directory == nil {
		return nil, errors.New("user directory required")
	}
	if b.notifier == nil {
		return nil, errors.New("notifier required")
	}

	validator := b.validator
	if validator == nil {
		if len(cfg.EmailLogin.AllowedDomains) == 0 {
			return nil, errors.New("email login requires allowed domains or a domain validator")
		}
		validator = AllowedDomains(cfg.EmailLogin.AllowedDomains)
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	issuer, err := session.NewIssuer(session.Config{
		TTL:           cfg.Session.TTL,
		SigningMethod: session.SigningMethod(cfg.Session.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Session.SigningKey),
		PublicKey:     cloneBytes(cfg.Session.PublicKey),
		Issuer:        cfg.Session.Issuer,
	})
	if err != nil {
		return nil, err
	}

	svc := &Service{
		config:    cfg,
		directory: b.directory,
		notifier:  b.notifier,
		validator: validator,
		hasher:    hasher,
		issuer:    issuer,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		now: time.Now,
	}

	if b.redis != nil {
		svc.requests = ledger.NewRedisRequestLimiter(b.redis, cfg.Ledger.RedisPrefix, cfg.Reset.RequestCooldown)
		svc.superseded = ledger.NewRedisSupersededLedger(b.redis, cfg.Ledger.RedisPrefix, cfg.Ledger.SupersededRetention)
		svc.otps = ledger.NewRedisOTPLedger(b.redis, cfg.Ledger.RedisPrefix)
	} else {
		svc.requests = ledger.NewMemoryRequestLimiter(cfg.Reset.RequestCooldown)
		svc.superseded = ledger.NewMemorySupersededLedger()
		svc.otps = ledger.NewMemoryOTPLedger()
	}

	b.built = true

	return svc, nil
}
