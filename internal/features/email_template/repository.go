package email_template

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("template not found")

type EmailTemplateRepository interface {
	Create(ctx context.Context, t *EmailTemplate) error
	GetByID(ctx context.Context, id uint) (*EmailTemplate, error)
	GetByName(ctx context.Context, name string) (*EmailTemplate, error)
	List(ctx context.Context) ([]EmailTemplate, error)
	Update(ctx context.Context, t *EmailTemplate) error
	Delete(ctx context.Context, id uint) error
}

type EmailTemplateRepositoryImpl struct {
	db *gorm.DB
}

func NewEmailTemplateRepository(db *gorm.DB) EmailTemplateRepository {
	return &EmailTemplateRepositoryImpl{db: db}
}

func (r *EmailTemplateRepositoryImpl) Create(ctx context.Context, t *EmailTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *EmailTemplateRepositoryImpl) GetByID(ctx context.Context, id uint) (*EmailTemplate, error) {
	var t EmailTemplate
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *EmailTemplateRepositoryImpl) GetByName(ctx context.Context, name string) (*EmailTemplate, error) {
	var t EmailTemplate
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *EmailTemplateRepositoryImpl) List(ctx context.Context) ([]EmailTemplate, error) {
	var templates []EmailTemplate
	err := r.db.WithContext(ctx).Order("name").Find(&templates).Error
	return templates, err
}

func (r *EmailTemplateRepositoryImpl) Update(ctx context.Context, t *EmailTemplate) error {
	res := r.db.WithContext(ctx).Model(&EmailTemplate{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"name":        t.Name,
		"subject":     t.Subject,
		"body":        t.Body,
		"description": t.Description,
		"is_active":   t.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EmailTemplateRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&EmailTemplate{}, id).Error
}
