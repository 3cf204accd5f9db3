package account

import (
	"context"
	"errors"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/session"
)

var ErrForbidden = errors.New("forbidden")

type AccountService interface {
	ListAccounts(ctx context.Context, filter AccountFilter) ([]Account, int64, error)
	GetAccount(ctx context.Context, id int64, accountType models.AccountType) (*AccountDetail, error)
	MyAccounts(ctx context.Context) ([]Account, error)
	ListUsers(ctx context.Context, userType models.UserType) ([]User, error)
	SetUserActive(ctx context.Context, userID uint, active bool) error
}

type AccountServiceImpl struct {
	Accounts AccountRepository
	Users    UserRepository
}

func NewAccountService(accounts AccountRepository, users UserRepository) AccountService {
	return &AccountServiceImpl{Accounts: accounts, Users: users}
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context, filter AccountFilter) ([]Account, int64, error) {
	return s.Accounts.ListAccounts(ctx, filter)
}

// GetAccount returns the account with its profile and linked contacts. Vendors
// and dealers may only read accounts their session is linked to.
func (s *AccountServiceImpl) GetAccount(ctx context.Context, id int64, accountType models.AccountType) (*AccountDetail, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Type.Internal() && !sess.HasAccount(id) {
		return nil, ErrForbidden
	}

	a, err := s.Accounts.FindAccount(ctx, id, accountType)
	if err != nil {
		return nil, err
	}

	detail := &AccountDetail{Account: *a}
	profile, err := s.Accounts.FindProfile(ctx, id, accountType)
	switch {
	case err == nil:
		detail.Profile = profile
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	contacts, err := s.Accounts.ListContacts(ctx, id, accountType)
	if err != nil {
		return nil, err
	}
	detail.Contacts = contacts
	return detail, nil
}

func (s *AccountServiceImpl) MyAccounts(ctx context.Context) ([]Account, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.Accounts.ListAccountsForUser(ctx, sess.UserID)
}

func (s *AccountServiceImpl) ListUsers(ctx context.Context, userType models.UserType) ([]User, error) {
	return s.Users.List(ctx, userType)
}

func (s *AccountServiceImpl) SetUserActive(ctx context.Context, userID uint, active bool) error {
	return s.Users.SetActive(ctx, userID, active)
}
