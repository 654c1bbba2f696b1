package model

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single utterance inside a conversation. Rows are
// append-only: sender and content are never mutated after insert.
// ConversationID is nullable for legacy rows written before
// conversations existed.
type Message struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(64);not null;index:idx_user_conversation_ts" json:"user_id"`
	ConversationID *string   `gorm:"type:varchar(36);index:idx_user_conversation_ts" json:"conversation_id,omitempty"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	ContentHTML    string    `gorm:"-" json:"content_html,omitempty"`
	Sender         Sender    `gorm:"type:varchar(16);not null" json:"sender"`
	Timestamp      time.Time `gorm:"index:idx_user_conversation_ts" json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Message) TableName() string {
	return "chat_messages"
}
