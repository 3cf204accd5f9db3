// Package session carries the authenticated principal through request handling.
// A Session is created at OTP verification, persisted in a Store and referenced
// from the client only by its id inside a signed token.
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"supplier-portal/internal/common/models"
)

var (
	ErrNoSession     = errors.New("no session in context")
	ErrNotFound      = errors.New("session not found")
	ErrAccountDenied = errors.New("account is not linked to this session")
)

type Session struct {
	ID              string          `json:"id"`
	UserID          uint            `json:"user_id"`
	Email           string          `json:"email"`
	Name            string          `json:"name,omitempty"`
	Type            models.UserType `json:"type"`
	NetSuiteID      *int64          `json:"netsuite_id,omitempty"`
	AccountIDs      []int64         `json:"account_ids,omitempty"`
	ActiveAccountID int64           `json:"active_account_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s *Session) HasAccount(accountID int64) bool {
	return slices.Contains(s.AccountIDs, accountID)
}

// SwitchAccount changes the account a vendor or dealer is acting for.
func (s *Session) SwitchAccount(accountID int64) error {
	if !s.HasAccount(accountID) {
		return ErrAccountDenied
	}
	s.ActiveAccountID = accountID
	return nil
}

func (s *Session) Is(types ...models.UserType) bool {
	return slices.Contains(types, s.Type)
}

type ctxKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
