package password

import (
	"strings"
	"testing"
)

func testParams() Params {
	// Small parameters keep the test fast; production sizes are
	// exercised through defaults elsewhere.
	return Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h, err := New(testParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	digest, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Fatalf("digest %q not in PHC format", digest)
	}

	ok, err := h.Verify("correct horse", digest)
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong horse", digest)
	if err != nil || ok {
		t.Fatalf("wrong password verified: ok=%v err=%v", ok, err)
	}
}

func TestHashIsSalted(t *testing.T) {
	h, err := New(testParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("identical digests for identical passwords")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h, err := New(testParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := h.Hash("tiny"); err != ErrTooShort {
		t.Fatalf("got %v, want ErrTooShort", err)
	}
}

func TestVerifyRejectsMangledDigest(t *testing.T) {
	h, err := New(testParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := h.Verify("whatever", "$argon2id$garbage"); err == nil {
		t.Fatal("mangled digest verified")
	}
	if _, err := h.Verify("whatever", "plaintext"); err == nil {
		t.Fatal("non-PHC digest verified")
	}
}
