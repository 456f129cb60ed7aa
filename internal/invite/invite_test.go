package invite

import (
	"errors"
	"testing"
	"time"
)

func TestIssueVerify(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	s := NewSigner("secret", time.Hour, clock)

	tok, exp, err := s.Issue("ABCD1234")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", exp)
	}
	room, err := s.Verify(tok)
	if err != nil || room != "ABCD1234" {
		t.Fatalf("verify: room=%q err=%v", room, err)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Now()
	s := NewSigner("secret", time.Hour, func() time.Time { return now })
	tok, _, _ := s.Issue("ABCD1234")

	other := NewSigner("other", time.Hour, func() time.Time { return now })
	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for wrong secret, got %v", err)
	}

	later := NewSigner("secret", time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
	if _, err := later.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for expired token, got %v", err)
	}

	if _, err := s.Verify("not-a-token"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for garbage, got %v", err)
	}
}
