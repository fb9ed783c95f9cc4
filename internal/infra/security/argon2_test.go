package security

import (
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewHasher returned error: %v", err)
	}
	return h
}

func TestHashAndVerifySuccess(t *testing.T) {
	h := testHasher(t)
	password := "correct horse battery staple"

	encoded, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if encoded == "" {
		t.Fatal("Hash returned empty string")
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		t.Fatalf("unexpected hash format: %q", encoded)
	}
	if parts[0] != argon2Variant {
		t.Fatalf("unexpected variant: %s", parts[0])
	}
	if parts[1] != argon2Version {
		t.Fatalf("unexpected version: %s", parts[1])
	}

	if !h.Verify(password, encoded) {
		t.Fatal("Verify returned false for correct password")
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := testHasher(t)
	password := "same password hashed twice!!"

	first, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password were identical")
	}
	if !h.Verify(password, first) || !h.Verify(password, second) {
		t.Fatal("Verify rejected one of the hashes")
	}
}

func TestVerifyIncorrectPassword(t *testing.T) {
	h := testHasher(t)

	encoded, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if h.Verify("Tr0ub4dor&3", encoded) {
		t.Fatal("Verify returned true for incorrect password")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := testHasher(t)

	cases := []string{
		"",
		"invalid-format",
		"argon2id$v=19$m=65536,t=3$onlyfourparts",
		"argon2i$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"argon2id$v=19$m=banana,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"argon2id$v=19$m=65536,t=3,p=2$!!notbase64!!$aGFzaA",
	}

	for _, encoded := range cases {
		if h.Verify("password", encoded) {
			t.Fatalf("Verify returned true for malformed hash %q", encoded)
		}
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Argon2Config)
	}{
		{"low memory", func(c *Argon2Config) { c.Memory = 32 * 1024 }},
		{"low iterations", func(c *Argon2Config) { c.Iterations = 1 }},
		{"low parallelism", func(c *Argon2Config) { c.Parallelism = 1 }},
		{"short salt", func(c *Argon2Config) { c.SaltLength = 8 }},
		{"short key", func(c *Argon2Config) { c.KeyLength = 16 }},
	}

	for _, tc := range cases {
		cfg := DefaultArgon2Config()
		tc.mut(&cfg)
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("%s: NewHasher accepted weak configuration", tc.name)
		}
	}
}
