package purchase_order

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("purchase order not found")

type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id int64) (*PurchaseOrder, error)
	GetWithLines(ctx context.Context, id int64) (*PurchaseOrder, error)
	Create(ctx context.Context, po *PurchaseOrder) error
	Update(ctx context.Context, po *PurchaseOrder) error
	ReplaceLines(ctx context.Context, poID int64, lines []LineItem) error
	List(ctx context.Context, filter Filter) ([]PurchaseOrder, int64, error)
}

type PurchaseOrderRepositoryImpl struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &PurchaseOrderRepositoryImpl{db: db}
}

func (r *PurchaseOrderRepositoryImpl) FindByID(ctx context.Context, id int64) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := r.db.WithContext(ctx).First(&po, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepositoryImpl) GetWithLines(ctx context.Context, id int64) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line") }).
		First(&po, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepositoryImpl) Create(ctx context.Context, po *PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(po).Error
}

func (r *PurchaseOrderRepositoryImpl) Update(ctx context.Context, po *PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(po).Error
}

// ReplaceLines deletes every line of the order and inserts the given set.
func (r *PurchaseOrderRepositoryImpl) ReplaceLines(ctx context.Context, poID int64, lines []LineItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("purchase_order_id = ?", poID).Delete(&LineItem{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].PurchaseOrderID = poID
	}
	return db.CreateInBatches(lines, 200).Error
}

func (r *PurchaseOrderRepositoryImpl) List(ctx context.Context, filter Filter) ([]PurchaseOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&PurchaseOrder{})
	if filter.VendorID != 0 {
		q = q.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.BuyerID != nil {
		q = q.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PendingOnly {
		q = q.Where("has_vendor_updates = ?", true)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(tran_id) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var orders []PurchaseOrder
	err := q.Order("tran_date DESC, id DESC").Limit(limit).Offset(filter.Offset).Find(&orders).Error
	return orders, total, err
}
