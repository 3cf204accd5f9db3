package email

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type EmailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

func (r *EmailRepository) Create(ctx context.Context, log *EmailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *EmailRepository) UpdateStatus(ctx context.Context, id uint, provider string, status EmailStatus, errorMsg string) error {
	updates := map[string]interface{}{
		"status":        status,
		"provider":      provider,
		"error_message": errorMsg,
	}
	if status == EmailSent {
		updates["sent_at"] = time.Now()
	}
	return r.db.WithContext(ctx).Model(&EmailLog{}).Where("id = ?", id).Updates(updates).Error
}
