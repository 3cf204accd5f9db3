package message

import (
	"time"

	"supplier-portal/internal/common/models"
)

// Conversation ties a vendor account to one counterpart role. The first
// counterpart user to reply claims it; after that only they may answer.
type Conversation struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	AccountID         int64           `json:"account_id" gorm:"index;not null"`
	CounterpartRole   models.UserType `json:"counterpart_role" gorm:"size:16;index;not null"`
	CounterpartUserID *uint           `json:"counterpart_user_id,omitempty" gorm:"index"`
	Subject           string          `json:"subject" gorm:"size:255"`
	CreatedBy         uint            `json:"created_by"`
	LastMessageAt     *time.Time      `json:"last_message_at,omitempty" gorm:"index"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Message rows are never updated except for IsRead.
type Message struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	ConversationID uint            `json:"conversation_id" gorm:"index;not null"`
	SenderUserID   uint            `json:"sender_user_id"`
	SenderRole     models.UserType `json:"sender_role" gorm:"size:16"`
	Body           string          `json:"body" gorm:"type:text;not null"`
	IsRead         bool            `json:"is_read"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ConversationDetail struct {
	Conversation Conversation `json:"conversation"`
	Messages     []Message    `json:"messages"`
}

type StartRequest struct {
	Role    models.UserType `json:"role" validate:"required,oneof=accounting buyer"`
	Subject string          `json:"subject" validate:"required,max=255"`
	Body    string          `json:"body" validate:"required,max=10000"`
}

type SendRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

type ConversationFilter struct {
	AccountID int64
	Role      models.UserType
	// UserID limits to conversations claimed by this user or still unclaimed.
	UserID uint
}
