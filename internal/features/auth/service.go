package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/config"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownUser = errors.New("no portal user for this email")
	ErrInactive    = errors.New("user is inactive")
	ErrNoAccounts  = errors.New("user is not linked to any active account")
	ErrBadType     = errors.New("invalid user type")
)

type TemplateSender interface {
	SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error
}

type LoginResult struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

type AuthService interface {
	RequestCode(ctx context.Context, email string, userType models.UserType) error
	Verify(ctx context.Context, email string, userType models.UserType, code string) (*LoginResult, error)
	SwitchAccount(ctx context.Context, accountID int64) (*session.Session, error)
	Logout(ctx context.Context) error
}

type AuthServiceImpl struct {
	Users          account.UserRepository
	Accounts       account.AccountRepository
	OTP            *OTPStore
	Sessions       session.Store
	Issuer         *session.TokenIssuer
	Email          TemplateSender
	Logger         *zap.Logger
	InternalDomain string
	SessionTTL     time.Duration
	Now            func() time.Time
}

func NewAuthService(
	cfg *config.Config,
	users account.UserRepository,
	accounts account.AccountRepository,
	otp *OTPStore,
	sessions session.Store,
	issuer *session.TokenIssuer,
	templates email_template.EmailTemplateService,
	logger *zap.Logger,
) AuthService {
	return &AuthServiceImpl{
		Users:          users,
		Accounts:       accounts,
		OTP:            otp,
		Sessions:       sessions,
		Issuer:         issuer,
		Email:          templates,
		Logger:         logger,
		InternalDomain: cfg.Auth.InternalEmailDomain,
		SessionTTL:     cfg.Auth.SessionTTL,
		Now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthServiceImpl) internal(email string) bool {
	return s.InternalDomain != "" && strings.HasSuffix(email, "@"+s.InternalDomain)
}

// findOrProvision returns the user for (email, type). Staff users on the
// internal domain are created on first login; vendor and dealer users only
// come from sync.
func (s *AuthServiceImpl) findOrProvision(ctx context.Context, email string, userType models.UserType) (*account.User, error) {
	user, err := s.Users.FindByEmail(ctx, email, userType)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return nil, err
	}
	if !userType.Internal() || !s.internal(email) {
		return nil, ErrUnknownUser
	}
	user = &account.User{Email: email, Type: userType, Name: strings.SplitN(email, "@", 2)[0], IsActive: true}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.Logger.Info("Provisioned internal user", zap.String("email", email), zap.String("type", string(userType)))
	return user, nil
}

func (s *AuthServiceImpl) RequestCode(ctx context.Context, email string, userType models.UserType) error {
	if !userType.Valid() {
		return ErrBadType
	}
	email = normalizeEmail(email)
	user, err := s.findOrProvision(ctx, email, userType)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return ErrInactive
	}

	code, err := s.OTP.Issue(ctx, email, userType)
	if err != nil {
		return err
	}
	minutes := strconv.Itoa(int(s.OTP.ttl / time.Minute))
	return s.Email.SendTemplate(ctx, []string{email}, email_template.TemplateOTPCode, map[string]string{
		"code":    code,
		"minutes": minutes,
	})
}

func (s *AuthServiceImpl) Verify(ctx context.Context, email string, userType models.UserType, code string) (*LoginResult, error) {
	if !userType.Valid() {
		return nil, ErrBadType
	}
	email = normalizeEmail(email)
	if err := s.OTP.Verify(ctx, email, userType, strings.TrimSpace(code)); err != nil {
		return nil, err
	}

	user, err := s.Users.FindByEmail(ctx, email, userType)
	if errors.Is(err, account.ErrNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactive
	}

	now := s.Now()
	sess := &session.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Type:       user.Type,
		NetSuiteID: user.NetSuiteID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.SessionTTL),
	}

	if !userType.Internal() {
		accounts, err := s.Accounts.ListAccountsForUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		want := models.AccountTypeVendor
		if userType == models.UserTypeDealer {
			want = models.AccountTypeDealer
		}
		for _, a := range accounts {
			if a.Type == want && a.IsActive {
				sess.AccountIDs = append(sess.AccountIDs, a.ID)
			}
		}
		if len(sess.AccountIDs) == 0 {
			return nil, ErrNoAccounts
		}
		if len(sess.AccountIDs) == 1 {
			sess.ActiveAccountID = sess.AccountIDs[0]
		}
	}

	if err := s.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	token, err := s.Issuer.Issue(sess)
	if err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	if err := s.Users.Update(ctx, user); err != nil {
		s.Logger.Warn("Failed to record login time", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return &LoginResult{Token: token, Session: sess}, nil
}

func (s *AuthServiceImpl) SwitchAccount(ctx context.Context, accountID int64) (*session.Session, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	updated := *sess
	if err := updated.SwitchAccount(accountID); err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}
	return s.Sessions.Delete(ctx, sess.ID)
}
