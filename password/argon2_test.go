package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	if !hasher.Verify("P@ssw0rd-Ascii", hash) {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if hasher.Verify("wrong-password", hash) {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestHashSaltsEveryCall(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	first, err := hasher.Hash("same-secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash("same-secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same secret must differ")
	}
	if !hasher.Verify("same-secret", first) || !hasher.Verify("same-secret", second) {
		t.Fatal("both hashes must verify the secret")
	}
}

func TestHashAcceptsShortPasswords(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	// Length policy lives with the caller; the hasher only refuses the
	// empty string.
	hash, err := hasher.Hash("NewPass1!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !hasher.Verify("NewPass1!", hash) {
		t.Fatal("expected short password to verify")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	if _, err := hasher.Hash(""); err == nil {
		t.Fatal("expected empty password hash to fail")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	malformed := []string{
		"",
		"not-a-phc-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
	}

	for _, hash := range malformed {
		if hasher.Verify("password", hash) {
			t.Fatalf("malformed hash %q must verify as false", hash)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	oldHasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2(old) error: %v", err)
	}

	hash, err := oldHasher.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	newHasher, err := NewArgon2(Config{
		Memory:      16384,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2(new) error: %v", err)
	}

	if !newHasher.NeedsRehash(hash) {
		t.Fatal("expected NeedsRehash to report true for weaker hash parameters")
	}
	if oldHasher.NeedsRehash(hash) {
		t.Fatal("expected NeedsRehash to report false for current parameters")
	}
	if !newHasher.NeedsRehash("not-a-phc-hash") {
		t.Fatal("expected NeedsRehash to report true for malformed hashes")
	}
}

func TestNewArgon2Validation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"low memory", Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero time", Config{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero parallelism", Config{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32}},
		{"short salt", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32}},
		{"short key", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewArgon2(tc.cfg); err == nil {
				t.Fatal("expected config validation to fail")
			}
		})
	}
}
