package model

import "time"

// Conversation is a titled chat thread owned by a single user.
// LastMessageAt only moves forward: it is bumped when a message is
// appended and repaired by the reconcile pass, never set backwards.
type Conversation struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Title         string    `gorm:"type:varchar(255);not null;default:'New Chat'" json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}
