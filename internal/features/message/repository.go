package message

import (
	"context"
	"errors"
	"time"

	"supplier-portal/internal/common/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("conversation not found")

type MessageRepository interface {
	CreateConversation(ctx context.Context, conv *Conversation) error
	FindConversation(ctx context.Context, id uint) (*Conversation, error)
	ListConversations(ctx context.Context, filter ConversationFilter) ([]Conversation, error)
	// Claim sets the counterpart only if none is set and reports whether it did.
	Claim(ctx context.Context, id uint, userID uint) (bool, error)
	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID uint) ([]Message, error)
	MarkRead(ctx context.Context, conversationID uint, senderRoles []models.UserType) (int64, error)
}

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) CreateConversation(ctx context.Context, conv *Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *MessageRepositoryImpl) FindConversation(ctx context.Context, id uint) (*Conversation, error) {
	var conv Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *MessageRepositoryImpl) ListConversations(ctx context.Context, filter ConversationFilter) ([]Conversation, error) {
	q := r.db.WithContext(ctx).Model(&Conversation{})
	if filter.AccountID != 0 {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.Role != "" {
		q = q.Where("counterpart_role = ?", filter.Role)
	}
	if filter.UserID != 0 {
		q = q.Where("counterpart_user_id IS NULL OR counterpart_user_id = ?", filter.UserID)
	}
	var convs []Conversation
	err := q.Order("last_message_at DESC, id DESC").Find(&convs).Error
	return convs, err
}

func (r *MessageRepositoryImpl) Claim(ctx context.Context, id uint, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ? AND counterpart_user_id IS NULL", id).
		Update("counterpart_user_id", userID)
	return res.RowsAffected == 1, res.Error
}

// CreateMessage inserts the message and bumps the conversation's activity time.
func (r *MessageRepositoryImpl) CreateMessage(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&Conversation{}).Where("id = ?", msg.ConversationID).
			Update("last_message_at", time.Now()).Error
	})
}

func (r *MessageRepositoryImpl) ListMessages(ctx context.Context, conversationID uint) ([]Message, error) {
	var msgs []Message
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("id").Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepositoryImpl) MarkRead(ctx context.Context, conversationID uint, senderRoles []models.UserType) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_role IN ? AND is_read = ?", conversationID, senderRoles, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
