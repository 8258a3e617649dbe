package token

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), time.Hour)

	signed, err := iss.Issue("user-1", "asha", "Patient")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := iss.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "asha" || claims.Role != "Patient" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	iss := NewIssuer([]byte("secret-a"), time.Hour)
	other := NewIssuer([]byte("secret-b"), time.Hour)

	signed, err := iss.Issue("user-1", "asha", "Patient")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := other.Verify(signed); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	iss := NewIssuer([]byte("secret"), -time.Minute)

	signed, err := iss.Issue("user-1", "asha", "Patient")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.Verify(signed); err == nil {
		t.Error("expected expired token to fail verification")
	}
}
