package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/kv"
)

func TestOTPIssueAndVerify(t *testing.T) {
	store := NewOTPStore(kv.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "v@acme.com", models.UserTypeVendor)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code = %q, want 6 digits", code)
	}

	if err := store.Verify(ctx, "v@acme.com", models.UserTypeDealer, code); !errors.Is(err, ErrCodeInvalid) {
		t.Errorf("code must be bound to the user type, got %v", err)
	}
	if err := store.Verify(ctx, "v@acme.com", models.UserTypeVendor, code); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if err := store.Verify(ctx, "v@acme.com", models.UserTypeVendor, code); !errors.Is(err, ErrCodeInvalid) {
		t.Errorf("code must be single use, got %v", err)
	}
}

func TestOTPAttemptLimit(t *testing.T) {
	store := NewOTPStore(kv.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "v@acme.com", models.UserTypeVendor)
	if err != nil {
		t.Fatal(err)
	}
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < maxAttempts; i++ {
		if err := store.Verify(ctx, "v@acme.com", models.UserTypeVendor, wrong); !errors.Is(err, ErrCodeInvalid) {
			t.Fatalf("attempt %d: error = %v", i, err)
		}
	}
	if err := store.Verify(ctx, "v@acme.com", models.UserTypeVendor, wrong); !errors.Is(err, ErrTooManyTries) {
		t.Fatalf("final attempt error = %v, want ErrTooManyTries", err)
	}
	if err := store.Verify(ctx, "v@acme.com", models.UserTypeVendor, code); !errors.Is(err, ErrCodeInvalid) {
		t.Errorf("code should be gone after too many tries, got %v", err)
	}
}

func TestOTPExpiry(t *testing.T) {
	store := NewOTPStore(kv.NewMemoryStore(), time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	code, err := store.Issue(ctx, "v@acme.com", models.UserTypeVendor)
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	if err := store.Verify(ctx, "v@acme.com", models.UserTypeVendor, code); !errors.Is(err, ErrCodeInvalid) {
		t.Errorf("expired code error = %v, want ErrCodeInvalid", err)
	}
}
