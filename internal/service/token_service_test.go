package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Ydzz18/photo-web-sub000/internal/domain"
)

func TestTokenServiceIssueAndConsume(t *testing.T) {
	svc := NewTokenService(zap.NewNop(), newMockTokenRepo())
	ctx := context.Background()

	plaintext, token, err := svc.Issue(ctx, "acc-1", domain.PurposeConfirmEmail)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if plaintext == "" {
		t.Fatal("expected a plaintext token")
	}
	if token.TokenHash == plaintext {
		t.Fatal("plaintext must not be stored as the hash")
	}
	if got := token.ExpiresAt.Sub(token.CreatedAt); got != tokenTTL {
		t.Fatalf("expected ttl %v, got %v", tokenTTL, got)
	}

	accountID, err := svc.ConsumeValid(ctx, plaintext, domain.PurposeConfirmEmail)
	if err != nil {
		t.Fatalf("ConsumeValid: %v", err)
	}
	if accountID != "acc-1" {
		t.Fatalf("expected acc-1, got %s", accountID)
	}

	if _, err := svc.ConsumeValid(ctx, plaintext, domain.PurposeConfirmEmail); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("second consume should fail with ErrTokenInvalid, got %v", err)
	}
}

func TestTokenServiceRejectsWrongPurpose(t *testing.T) {
	svc := NewTokenService(zap.NewNop(), newMockTokenRepo())
	ctx := context.Background()

	plaintext, _, err := svc.Issue(ctx, "acc-1", domain.PurposeConfirmEmail)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.ConsumeValid(ctx, plaintext, domain.PurposeResetPassword); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong purpose, got %v", err)
	}
	if _, err := svc.ConsumeValid(ctx, plaintext, domain.PurposeConfirmEmail); err != nil {
		t.Fatalf("token should still be valid for its own purpose: %v", err)
	}
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	svc := NewTokenService(zap.NewNop(), newMockTokenRepo())
	ctx := context.Background()

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }

	plaintext, _, err := svc.Issue(ctx, "acc-1", domain.PurposeResetPassword)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.now = func() time.Time { return base.Add(tokenTTL + time.Minute) }
	if _, err := svc.Verify(ctx, plaintext, domain.PurposeResetPassword); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after expiry, got %v", err)
	}
	if _, err := svc.ConsumeValid(ctx, plaintext, domain.PurposeResetPassword); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after expiry, got %v", err)
	}
}

func TestTokenServiceReissueSupersedesPrior(t *testing.T) {
	svc := NewTokenService(zap.NewNop(), newMockTokenRepo())
	ctx := context.Background()

	first, _, err := svc.Issue(ctx, "acc-1", domain.PurposeConfirmEmail)
	if err != nil {
		t.Fatalf("Issue first: %v", err)
	}
	second, _, err := svc.Issue(ctx, "acc-1", domain.PurposeConfirmEmail)
	if err != nil {
		t.Fatalf("Issue second: %v", err)
	}

	if _, err := svc.ConsumeValid(ctx, first, domain.PurposeConfirmEmail); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("superseded token should be invalid, got %v", err)
	}
	if _, err := svc.ConsumeValid(ctx, second, domain.PurposeConfirmEmail); err != nil {
		t.Fatalf("latest token should be valid: %v", err)
	}
}

func TestTokenServiceVerifyDoesNotConsume(t *testing.T) {
	svc := NewTokenService(zap.NewNop(), newMockTokenRepo())
	ctx := context.Background()

	plaintext, _, err := svc.Issue(ctx, "acc-1", domain.PurposeResetPassword)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Verify(ctx, plaintext, domain.PurposeResetPassword); err != nil {
			t.Fatalf("Verify round %d: %v", i, err)
		}
	}
	if _, err := svc.ConsumeValid(ctx, plaintext, domain.PurposeResetPassword); err != nil {
		t.Fatalf("token should survive verification: %v", err)
	}
}

func TestTokenServiceConsumeIsIdempotent(t *testing.T) {
	svc := NewTokenService(zap.NewNop(), newMockTokenRepo())
	ctx := context.Background()

	if err := svc.Consume(ctx, "never-issued", domain.PurposeConfirmEmail); err != nil {
		t.Fatalf("consuming an unknown token should not error: %v", err)
	}

	plaintext, _, err := svc.Issue(ctx, "acc-1", domain.PurposeConfirmEmail)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := svc.Consume(ctx, plaintext, domain.PurposeConfirmEmail); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := svc.Consume(ctx, plaintext, domain.PurposeConfirmEmail); err != nil {
		t.Fatalf("repeated Consume should stay nil: %v", err)
	}
}
