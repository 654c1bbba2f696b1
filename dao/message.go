package dao

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"barberbot/model"
	"barberbot/platform"
	"barberbot/realtime"
)

// MessageDAO handles message-related database operations.
type MessageDAO struct {
	db     *gorm.DB
	convos *ConversationDAO
	hub    *realtime.Hub
	logger *logrus.Logger
}

func NewMessageDAO(db *gorm.DB, convos *ConversationDAO, hub *realtime.Hub) *MessageDAO {
	return &MessageDAO{db: db, convos: convos, hub: hub, logger: platform.Logger}
}

// Save inserts a message and, when it belongs to a conversation,
// bumps that conversation's last_message_at. The two writes are not
// transactional: a saved message with a failed touch only leaves the
// conversation sorting slightly stale until the reconcile pass, so
// the touch failure is logged and swallowed rather than rolled back.
func (d *MessageDAO) Save(userID, content string, sender model.Sender, conversationID *string) (*model.Message, error) {
	msg := &model.Message{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		Content:        content,
		Sender:         sender,
		Timestamp:      time.Now(),
	}
	if err := d.db.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	d.notify(userID, realtime.ActionInsert)

	if conversationID != nil {
		if err := d.convos.TouchLastMessageAt(userID, *conversationID); err != nil {
			d.logger.Warnf("message %s saved but conversation %s touch failed: %s", msg.ID, *conversationID, err)
		}
	}
	return msg, nil
}

// ListForConversation returns the conversation's messages in display
// order, oldest first.
func (d *MessageDAO) ListForConversation(userID, conversationID string) ([]model.Message, error) {
	var messages []model.Message
	if err := d.db.Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversation messages: %w", err)
	}
	return messages, nil
}

// ListForUser returns every message owned by the user in timestamp
// order. Kept for legacy rows written before conversations existed.
func (d *MessageDAO) ListForUser(userID string) ([]model.Message, error) {
	var messages []model.Message
	if err := d.db.Where("user_id = ?", userID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// ClearForUser bulk-deletes all of the user's messages regardless of
// conversation.
func (d *MessageDAO) ClearForUser(userID string) error {
	if err := d.db.Where("user_id = ?", userID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	d.notify(userID, realtime.ActionDelete)
	return nil
}

// DeleteOne removes a single message after the ownership check.
func (d *MessageDAO) DeleteOne(userID, messageID string) error {
	res := d.db.Where("id = ? AND user_id = ?", messageID, userID).Delete(&model.Message{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	d.notify(userID, realtime.ActionDelete)
	return nil
}

func (d *MessageDAO) notify(userID string, action realtime.Action) {
	if d.hub != nil {
		d.hub.Notify(realtime.Event{Table: realtime.TableMessages, UserID: userID, Action: action})
	}
}
