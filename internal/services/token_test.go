package services

import (
	"errors"
	"testing"
	"time"
)

func TestResetTokenRoundTrip(t *testing.T) {
	s := NewTokenService("test-secret")

	token, err := s.ResetToken(42)
	if err != nil {
		t.Fatalf("ResetToken failed: %v", err)
	}
	id, err := s.VerifyResetToken(token)
	if err != nil {
		t.Fatalf("VerifyResetToken failed: %v", err)
	}
	if id != 42 {
		t.Errorf("Expected user 42, got %d", id)
	}
}

func TestResetTokenExpires(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService("test-secret")
	s.now = func() time.Time { return issued }

	token, err := s.ResetToken(7)
	if err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return issued.Add(29 * time.Minute) }
	if _, err := s.VerifyResetToken(token); err != nil {
		t.Errorf("Expected token to be valid before expiry, got %v", err)
	}

	s.now = func() time.Time { return issued.Add(31 * time.Minute) }
	if _, err := s.VerifyResetToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestResetTokenRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenService("other-secret").ResetToken(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenService("test-secret").VerifyResetToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
	if _, err := NewTokenService("test-secret").VerifyResetToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for garbage, got %v", err)
	}
}
