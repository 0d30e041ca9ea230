// ABOUTME: Tests for the AES-256-GCM field cipher
// ABOUTME: Verifies round trips, nonce freshness, and failure modes
package fieldcrypt

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return key
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := New(testKey(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []string{
		"Hello",
		"",
		"multi\nline\ncontent",
		strings.Repeat("x", 50000),
		"unicode: héllo wörld 你好",
	}

	for _, plaintext := range tests {
		sealed, err := c.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		if !strings.Contains(sealed, ":") {
			t.Errorf("sealed value %q missing nonce separator", sealed[:min(len(sealed), 40)])
		}
		got, err := c.Open(sealed)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if got != plaintext {
			t.Errorf("round trip mismatch for %d-byte plaintext", len(plaintext))
		}
	}
}

func TestCipher_FreshNoncePerSeal(t *testing.T) {
	c, err := New(testKey(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := c.Seal("same plaintext")
	b, _ := c.Seal("same plaintext")
	if a == b {
		t.Error("two seals of the same plaintext produced identical output")
	}
}

func TestCipher_WrongKey(t *testing.T) {
	c1, _ := New(testKey(t))
	c2, _ := New(testKey(t))

	sealed, err := c1.Seal("secret")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := c2.Open(sealed); !errors.Is(err, ErrBadCiphertext) {
		t.Errorf("Open with wrong key = %v, want ErrBadCiphertext", err)
	}
}

func TestCipher_MalformedInput(t *testing.T) {
	c, _ := New(testKey(t))

	tests := []string{
		"",
		"no-separator",
		"zz:zz",
		"abcd:1234", // nonce too short
	}
	for _, sealed := range tests {
		if _, err := c.Open(sealed); !errors.Is(err, ErrBadCiphertext) {
			t.Errorf("Open(%q) = %v, want ErrBadCiphertext", sealed, err)
		}
	}
}

func TestNew_RejectsBadKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		if _, err := New(bytes.Repeat([]byte{1}, n)); err == nil {
			t.Errorf("New with %d-byte key should fail", n)
		}
	}
}
