package email

import "time"

type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
}

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// EmailLog records each outbound message and which provider delivered it.
type EmailLog struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	To           string      `json:"to" gorm:"type:text"`
	Subject      string      `json:"subject" gorm:"size:512"`
	Provider     string      `json:"provider" gorm:"size:32"`
	Status       EmailStatus `json:"status" gorm:"size:16;index"`
	ErrorMessage string      `json:"error_message,omitempty" gorm:"type:text"`
	SentAt       *time.Time  `json:"sent_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
