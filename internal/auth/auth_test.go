package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", "subscription-service", time.Hour)
	m.now = fixedClock(now)

	token, expiresAt, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(time.Hour), expiresAt)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestTokenManager_RejectsInvalidTokens(t *testing.T) {
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", "subscription-service", time.Hour)
	m.now = fixedClock(now)

	good, _, err := m.Issue(7)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	otherSecret := NewTokenManager("different", "subscription-service", time.Hour)
	otherSecret.now = m.now
	forged, _, _ := otherSecret.Issue(7)

	otherIssuer := NewTokenManager("secret", "someone-else", time.Hour)
	otherIssuer.now = m.now
	wrongIssuer, _, _ := otherIssuer.Issue(7)

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		clock time.Time
	}{
		{name: "garbage", token: "not-a-jwt", clock: now},
		{name: "wrong secret", token: forged, clock: now},
		{name: "wrong issuer", token: wrongIssuer, clock: now},
		{name: "alg none", token: noneToken, clock: now},
		{name: "expired", token: good, clock: now.Add(2 * time.Hour)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m.now = fixedClock(tc.clock)
			if _, err := m.Verify(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the plain password")
	}

	ok, err := CheckPassword(hash, "correct horse")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = CheckPassword(hash, "wrong")
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got ok=%v err=%v", ok, err)
	}

	if _, err := CheckPassword("not-a-bcrypt-hash", "x"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
