package sync

import (
	"context"
	"errors"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/item"
	"supplier-portal/internal/features/notification"
	"supplier-portal/internal/features/purchase_order"

	"gorm.io/gorm"
)

type AccountStore interface {
	FindAccount(ctx context.Context, id int64, accountType models.AccountType) (*account.Account, error)
	CreateAccount(ctx context.Context, a *account.Account) error
	UpdateAccount(ctx context.Context, a *account.Account) error
	UpsertProfile(ctx context.Context, p *account.AccountProfile) error
	FindLink(ctx context.Context, id int64, accountType models.AccountType, userID uint) (*account.AccountUser, error)
	CreateLink(ctx context.Context, link *account.AccountUser) error
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string, userType models.UserType) (*account.User, error)
	Create(ctx context.Context, u *account.User) error
	Update(ctx context.Context, u *account.User) error
}

type PurchaseOrderStore interface {
	FindByID(ctx context.Context, id int64) (*purchase_order.PurchaseOrder, error)
	Create(ctx context.Context, po *purchase_order.PurchaseOrder) error
	Update(ctx context.Context, po *purchase_order.PurchaseOrder) error
	ReplaceLines(ctx context.Context, poID int64, lines []purchase_order.LineItem) error
}

type ItemStore interface {
	FindByID(ctx context.Context, id int64) (*item.Item, error)
	Create(ctx context.Context, it *item.Item) error
	Update(ctx context.Context, it *item.Item) error
}

// Tx is one unit of work. Every store it hands out writes through the same
// transaction.
type Tx interface {
	Accounts() AccountStore
	Users() UserStore
	PurchaseOrders() PurchaseOrderStore
	Items() ItemStore
	Subscriptions() notification.SubscriptionStore
	Commit() error
	Rollback() error
}

type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}

type GormTxBeginner struct {
	DB *gorm.DB
}

func NewTxBeginner(db *gorm.DB) TxBeginner {
	return &GormTxBeginner{DB: db}
}

func (b *GormTxBeginner) Begin(ctx context.Context) (Tx, error) {
	tx := b.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormTx{tx: tx}, nil
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) Accounts() AccountStore { return account.NewAccountRepository(t.tx) }
func (t *gormTx) Users() UserStore       { return account.NewUserRepository(t.tx) }
func (t *gormTx) PurchaseOrders() PurchaseOrderStore {
	return purchase_order.NewPurchaseOrderRepository(t.tx)
}
func (t *gormTx) Items() ItemStore { return item.NewItemRepository(t.tx) }
func (t *gormTx) Subscriptions() notification.SubscriptionStore {
	return item.NewSubscriptionRepository(t.tx)
}
func (t *gormTx) Commit() error   { return t.tx.Commit().Error }
func (t *gormTx) Rollback() error { return t.tx.Rollback().Error }

// isNotFound matches the not-found sentinel of any of the stores above.
func isNotFound(err error) bool {
	return errors.Is(err, account.ErrNotFound) ||
		errors.Is(err, item.ErrNotFound) ||
		errors.Is(err, purchase_order.ErrNotFound)
}

var ErrLogNotFound = errors.New("sync log not found")

type SyncLogRepository interface {
	Create(ctx context.Context, log *SyncLog) error
	Update(ctx context.Context, log *SyncLog) error
	FindByID(ctx context.Context, id uint) (*SyncLog, error)
	List(ctx context.Context, filter LogFilter) ([]SyncLog, int64, error)
}

type SyncLogRepositoryImpl struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &SyncLogRepositoryImpl{db: db}
}

func (r *SyncLogRepositoryImpl) Create(ctx context.Context, log *SyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *SyncLogRepositoryImpl) Update(ctx context.Context, log *SyncLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

func (r *SyncLogRepositoryImpl) FindByID(ctx context.Context, id uint) (*SyncLog, error) {
	var log SyncLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

func (r *SyncLogRepositoryImpl) List(ctx context.Context, filter LogFilter) ([]SyncLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&SyncLog{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var logs []SyncLog
	err := q.Order("started_at DESC, id DESC").Limit(limit).Offset(filter.Offset).Find(&logs).Error
	return logs, total, err
}
