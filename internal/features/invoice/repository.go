package invoice

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("invoice not found")

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id uint) (*Invoice, error)
	FindByNumber(ctx context.Context, vendorID int64, number string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, filter Filter) ([]Invoice, int64, error)
}

type InvoiceRepositoryImpl struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &InvoiceRepositoryImpl{db: db}
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, inv *Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepositoryImpl) FindByID(ctx context.Context, id uint) (*Invoice, error) {
	var inv Invoice
	if err := r.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepositoryImpl) FindByNumber(ctx context.Context, vendorID int64, number string) (*Invoice, error) {
	var inv Invoice
	err := r.db.WithContext(ctx).Where("vendor_id = ? AND number = ?", vendorID, number).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepositoryImpl) Update(ctx context.Context, inv *Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *InvoiceRepositoryImpl) List(ctx context.Context, filter Filter) ([]Invoice, int64, error) {
	q := r.db.WithContext(ctx).Model(&Invoice{})
	if filter.VendorID != 0 {
		q = q.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.PurchaseOrderID != 0 {
		q = q.Where("purchase_order_id = ?", filter.PurchaseOrderID)
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
		limit = 100
	}
	var invoices []Invoice
	err := q.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&invoices).Error
	return invoices, total, err
}
