package authcore

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type mockDirectory struct {
	mu    sync.Mutex
	users map[string]*UserIdentity // keyed by ID

	failWith error
}

func newMockDirectory(users ...*UserIdentity) *mockDirectory {
	d := &mockDirectory{users: make(map[string]*UserIdentity)}
	for _, u := range users {
		clone := *u
		d.users[u.ID] = &clone
	}
	return d
}

func (d *mockDirectory) add(u *UserIdentity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *u
	d.users[u.ID] = &clone
}

func (d *mockDirectory) get(id string) *UserIdentity {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return nil
	}
	clone := *u
	return &clone
}

func (d *mockDirectory) find(match func(*UserIdentity) bool) (*UserIdentity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return nil, d.failWith
	}
	for _, u := range d.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *mockDirectory) FindByLoginID(_ context.Context, loginID string) (*UserIdentity, error) {
	return d.find(func(u *UserIdentity) bool { return u.LoginID == loginID })
}

func (d *mockDirectory) FindByEmail(_ context.Context, email string) (*UserIdentity, error) {
	return d.find(func(u *UserIdentity) bool { return strings.EqualFold(u.Email, email) })
}

func (d *mockDirectory) FindByResetToken(_ context.Context, token string) (*UserIdentity, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return d.find(func(u *UserIdentity) bool { return u.ResetToken == token })
}

func (d *mockDirectory) update(id string, apply func(*UserIdentity)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	u, ok := d.users[id]
	if !ok {
		return ErrUserNotFound
	}
	apply(u)
	return nil
}

func (d *mockDirectory) UpdatePassword(_ context.Context, id, hash string) error {
	return d.update(id, func(u *UserIdentity) { u.PasswordHash = hash })
}

func (d *mockDirectory) UpdateResetToken(_ context.Context, id, token string, expiresAt *time.Time) error {
	return d.update(id, func(u *UserIdentity) {
		u.ResetToken = token
		u.ResetTokenExpiresAt = expiresAt
	})
}

func (d *mockDirectory) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return d.update(id, func(u *UserIdentity) { u.LastLoginAt = &at })
}

type sentMail struct {
	kind  string // "reset" or "code"
	to    string
	token string
	code  string
}

type mockNotifier struct {
	sent     chan sentMail
	failWith error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{sent: make(chan sentMail, 16)}
}

func (n *mockNotifier) SendResetEmail(_ context.Context, to, _, _, token, _ string) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.sent <- sentMail{kind: "reset", to: to, token: token}
	return nil
}

func (n *mockNotifier) SendLoginCode(_ context.Context, to, _, code string) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.sent <- sentMail{kind: "code", to: to, code: code}
	return nil
}

// waitMail blocks until the notifier's background goroutine delivers, since
// dispatch is fire-and-forget.
func (n *mockNotifier) waitMail(t *testing.T) sentMail {
	t.Helper()
	select {
	case m := <-n.sent:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return sentMail{}
	}
}

// testClock is a manually advanced clock shared with the Service under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

// The clock starts at the real current time because session tokens are
// signed against the wall clock; only advancement is simulated.
func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fastConfig keeps hashing cheap enough for tests while staying above the
// hasher's validation floor.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Session.SigningKey = []byte("test-signing-key-0123456789abcdef")
	cfg.Session.Issuer = "authcore-test"
	cfg.EmailLogin.AllowedDomains = []string{"utoronto.ca"}
	cfg.Audit.Enabled = false
	return cfg
}

type testEnv struct {
	svc      *Service
	dir      *mockDirectory
	notifier *mockNotifier
	clock    *testClock
}

func newTestEnv(t *testing.T, cfg Config, users ...*UserIdentity) *testEnv {
	t.Helper()

	dir := newMockDirectory(users...)
	notifier := newMockNotifier()

	svc, err := New().
		WithConfig(cfg).
		WithDirectory(dir).
		WithNotifier(notifier).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(svc.Close)

	clock := newTestClock()
	svc.now = clock.Now

	return &testEnv{svc: svc, dir: dir, notifier: notifier, clock: clock}
}

func mustHash(t *testing.T, env *testEnv, password string) string {
	t.Helper()
	hash, err := env.svc.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}
