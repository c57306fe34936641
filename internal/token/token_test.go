package token

import (
	"testing"
	"time"
)

func TestMintAndVerify(t *testing.T) {
	tok, err := Mint("api-key", "api-secret", "dineai-test-room", "test-user", time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if tok == "" {
		t.Fatal("Mint() returned empty token")
	}

	identity, err := Verify("api-secret", "dineai-test-room", tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity != "test-user" {
		t.Errorf("expected identity test-user, got %s", identity)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := Mint("api-key", "api-secret", "room-a", "alice", time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := Verify("other-secret", "room-a", tok); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongRoom(t *testing.T) {
	tok, err := Mint("api-key", "api-secret", "room-a", "alice", time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := Verify("api-secret", "room-b", tok); err != ErrWrongRoom {
		t.Errorf("expected ErrWrongRoom, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := Mint("api-key", "api-secret", "room-a", "alice", -time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := Verify("api-secret", "room-a", tok); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestMintRequiresCredentials(t *testing.T) {
	if _, err := Mint("", "", "room", "id", time.Hour); err == nil {
		t.Error("expected error for missing credentials")
	}
}
