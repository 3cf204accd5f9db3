package account

import (
	"context"
	"errors"
	"strings"

	"supplier-portal/internal/common/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("not found")

type AccountRepository interface {
	FindAccount(ctx context.Context, id int64, accountType models.AccountType) (*Account, error)
	CreateAccount(ctx context.Context, a *Account) error
	UpdateAccount(ctx context.Context, a *Account) error
	ListAccounts(ctx context.Context, filter AccountFilter) ([]Account, int64, error)
	ListAccountsForUser(ctx context.Context, userID uint) ([]Account, error)

	FindProfile(ctx context.Context, id int64, accountType models.AccountType) (*AccountProfile, error)
	UpsertProfile(ctx context.Context, p *AccountProfile) error

	FindLink(ctx context.Context, id int64, accountType models.AccountType, userID uint) (*AccountUser, error)
	CreateLink(ctx context.Context, link *AccountUser) error
	ListContacts(ctx context.Context, id int64, accountType models.AccountType) ([]AccountContact, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string, userType models.UserType) (*User, error)
	FindByNetSuiteID(ctx context.Context, netsuiteID int64, userType models.UserType) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	SetActive(ctx context.Context, id uint, active bool) error
	List(ctx context.Context, userType models.UserType) ([]User, error)
}

type AccountRepositoryImpl struct {
	db *gorm.DB
}

// NewAccountRepository works on either the pool or an open transaction.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *AccountRepositoryImpl) FindAccount(ctx context.Context, id int64, accountType models.AccountType) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).Where("id = ? AND type = ?", id, accountType).First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AccountRepositoryImpl) CreateAccount(ctx context.Context, a *Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepositoryImpl) UpdateAccount(ctx context.Context, a *Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AccountRepositoryImpl) ListAccounts(ctx context.Context, filter AccountFilter) ([]Account, int64, error) {
	q := r.db.WithContext(ctx).Model(&Account{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var accounts []Account
	err := q.Order("name").Limit(limit).Offset(filter.Offset).Find(&accounts).Error
	return accounts, total, err
}

func (r *AccountRepositoryImpl) ListAccountsForUser(ctx context.Context, userID uint) ([]Account, error) {
	var accounts []Account
	err := r.db.WithContext(ctx).
		Joins("JOIN account_users au ON au.account_id = accounts.id AND au.account_type = accounts.type").
		Where("au.user_id = ? AND accounts.is_active = ?", userID, true).
		Order("au.is_primary DESC, accounts.name").
		Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepositoryImpl) FindProfile(ctx context.Context, id int64, accountType models.AccountType) (*AccountProfile, error) {
	var p AccountProfile
	err := r.db.WithContext(ctx).Where("account_id = ? AND account_type = ?", id, accountType).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *AccountRepositoryImpl) UpsertProfile(ctx context.Context, p *AccountProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "account_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"phone", "alt_email", "address", "website", "updated_at"}),
	}).Create(p).Error
}

func (r *AccountRepositoryImpl) FindLink(ctx context.Context, id int64, accountType models.AccountType, userID uint) (*AccountUser, error) {
	var link AccountUser
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND account_type = ? AND user_id = ?", id, accountType, userID).
		First(&link).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

func (r *AccountRepositoryImpl) CreateLink(ctx context.Context, link *AccountUser) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *AccountRepositoryImpl) ListContacts(ctx context.Context, id int64, accountType models.AccountType) ([]AccountContact, error) {
	var contacts []AccountContact
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, au.is_primary").
		Joins("JOIN account_users au ON au.user_id = users.id").
		Where("au.account_id = ? AND au.account_type = ?", id, accountType).
		Order("au.is_primary DESC, users.email").
		Scan(&contacts).Error
	return contacts, err
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string, userType models.UserType) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("email = ? AND type = ?", strings.ToLower(strings.TrimSpace(email)), userType).
		First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepositoryImpl) FindByNetSuiteID(ctx context.Context, netsuiteID int64, userType models.UserType) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("netsuite_id = ? AND type = ?", netsuiteID, userType).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepositoryImpl) Update(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepositoryImpl) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, userType models.UserType) ([]User, error) {
	q := r.db.WithContext(ctx).Order("email")
	if userType != "" {
		q = q.Where("type = ?", userType)
	}
	var users []User
	err := q.Find(&users).Error
	return users, err
}
