package service

import (
	"testing"
	"time"
)

func TestMemoryRefreshTokenStoreLifecycle(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "u1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("jti-1")
	if err != nil || !ok {
		t.Fatalf("expected jti to exist, got ok=%v err=%v", ok, err)
	}

	if err := store.Revoke("jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = store.Exists("jti-1")
	if err != nil || ok {
		t.Fatalf("expected jti revoked, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryRefreshTokenStoreExpiry(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "u1", -time.Second); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("jti-1")
	if err != nil || ok {
		t.Fatalf("expired jti must not exist, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryRefreshTokenStoreIgnoresEmptyJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("  ", "u1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("  ")
	if err != nil || ok {
		t.Fatalf("blank jti must never exist, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryRefreshTokenStoreUnknownJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	ok, err := store.Exists("never-stored")
	if err != nil || ok {
		t.Fatalf("unknown jti must not exist, got ok=%v err=%v", ok, err)
	}
	if err := store.Revoke("never-stored"); err != nil {
		t.Fatalf("revoking unknown jti must be a no-op, got %v", err)
	}
}
