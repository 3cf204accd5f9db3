package item

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type ItemRepository interface {
	FindByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	List(ctx context.Context, filter ItemFilter) ([]Item, int64, error)
}

type SubscriptionRepository interface {
	ListActiveForItem(ctx context.Context, itemID int64) ([]Subscription, error)
	MarkNotified(ctx context.Context, id uint, at time.Time) error
	ListForUser(ctx context.Context, userID uint) ([]Subscription, error)
	FindByID(ctx context.Context, id uint) (*Subscription, error)
	Create(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id uint) error
}

type ItemRepositoryImpl struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &ItemRepositoryImpl{db: db}
}

func (r *ItemRepositoryImpl) FindByID(ctx context.Context, id int64) (*Item, error) {
	var it Item
	if err := r.db.WithContext(ctx).First(&it, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepositoryImpl) Create(ctx context.Context, it *Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *ItemRepositoryImpl) Update(ctx context.Context, it *Item) error {
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *ItemRepositoryImpl) List(ctx context.Context, filter ItemFilter) ([]Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&Item{}).Where("is_active = ?", true)
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(sku) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	if filter.InStock {
		q = q.Where("quantity_on_hand > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var items []Item
	err := q.Order("name").Limit(limit).Offset(filter.Offset).Find(&items).Error
	return items, total, err
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

// ListActiveForItem returns active subscriptions of active users, with the subscriber's email.
func (r *SubscriptionRepositoryImpl) ListActiveForItem(ctx context.Context, itemID int64) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.WithContext(ctx).
		Select("item_subscriptions.*, users.email AS subscriber_email").
		Joins("JOIN users ON users.id = item_subscriptions.user_id").
		Where("item_subscriptions.item_id = ? AND item_subscriptions.is_active = ? AND users.is_active = ?", itemID, true, true).
		Order("item_subscriptions.id").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) MarkNotified(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Subscription{}).Where("id = ?", id).Update("last_notified_at", at).Error
}

func (r *SubscriptionRepositoryImpl) ListForUser(ctx context.Context, userID uint) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) FindByID(ctx context.Context, id uint) (*Subscription, error) {
	var sub Subscription
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Subscription{}, id).Error
}
