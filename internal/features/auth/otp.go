package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/kv"

	"golang.org/x/crypto/bcrypt"
)

const maxAttempts = 5

var (
	ErrCodeInvalid  = errors.New("invalid or expired code")
	ErrTooManyTries = errors.New("too many attempts, request a new code")
)

type otpRecord struct {
	Hash      []byte    `json:"hash"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OTPStore keeps one pending code per (email, type). Only the bcrypt hash is stored.
type OTPStore struct {
	kv  kv.Store
	ttl time.Duration
	now func() time.Time
}

func NewOTPStore(store kv.Store, ttl time.Duration) *OTPStore {
	return &OTPStore{kv: store, ttl: ttl, now: time.Now}
}

func otpKey(email string, userType models.UserType) string {
	return fmt.Sprintf("otp:%s:%s", userType, email)
}

// Issue generates a fresh 6-digit code, replacing any pending one.
func (s *OTPStore) Issue(ctx context.Context, email string, userType models.UserType) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	rec := otpRecord{Hash: hash, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.save(ctx, email, userType, rec); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the code on success. Failed attempts are counted and the
// code is dropped after maxAttempts.
func (s *OTPStore) Verify(ctx context.Context, email string, userType models.UserType, code string) error {
	key := otpKey(email, userType)
	body, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return ErrCodeInvalid
	}
	if err != nil {
		return err
	}
	var rec otpRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return err
	}
	if !s.now().Before(rec.ExpiresAt) {
		_ = s.kv.Delete(ctx, key)
		return ErrCodeInvalid
	}

	if bcrypt.CompareHashAndPassword(rec.Hash, []byte(code)) == nil {
		return s.kv.Delete(ctx, key)
	}

	rec.Attempts++
	if rec.Attempts >= maxAttempts {
		_ = s.kv.Delete(ctx, key)
		return ErrTooManyTries
	}
	if err := s.save(ctx, email, userType, rec); err != nil {
		return err
	}
	return ErrCodeInvalid
}

func (s *OTPStore) save(ctx context.Context, email string, userType models.UserType, rec otpRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, otpKey(email, userType), body, rec.ExpiresAt.Sub(s.now()))
}
