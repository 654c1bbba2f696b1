package dao

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"barberbot/model"
	"barberbot/realtime"
)

// DefaultTitle is the title of every conversation before the first
// user message re-titles it.
const DefaultTitle = "New Chat"

// ConversationDAO handles conversation-related database operations.
// Successful writes are announced on the realtime hub.
type ConversationDAO struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewConversationDAO(db *gorm.DB, hub *realtime.Hub) *ConversationDAO {
	return &ConversationDAO{db: db, hub: hub}
}

// Create inserts a new conversation with all three timestamps set to
// now and returns the hydrated row.
func (d *ConversationDAO) Create(userID, title string) (*model.Conversation, error) {
	if title == "" {
		title = DefaultTitle
	}
	now := time.Now()
	convo := &model.Conversation{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         title,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}
	if err := d.db.Create(convo).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	d.notify(userID, realtime.ActionInsert)
	return convo, nil
}

// ListForUser returns the user's conversations, most recently active
// first. A user with no conversations gets an empty slice, not an
// error.
func (d *ConversationDAO) ListForUser(userID string) ([]model.Conversation, error) {
	var convos []model.Conversation
	if err := d.db.Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&convos).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convos, nil
}

// Get fetches one conversation, verifying ownership in the query.
func (d *ConversationDAO) Get(userID, id string) (*model.Conversation, error) {
	var convo model.Conversation
	err := d.db.Where("id = ? AND user_id = ?", id, userID).First(&convo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return &convo, nil
}

// UpdateTitle renames the conversation. Renaming to the current title
// is a no-op and still succeeds.
func (d *ConversationDAO) UpdateTitle(userID, id, title string) error {
	err := d.db.Model(&model.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("title", title).Error
	if err != nil {
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	d.notify(userID, realtime.ActionUpdate)
	return nil
}

// TouchLastMessageAt moves last_message_at and updated_at to now.
// Called once per successful message save.
func (d *ConversationDAO) TouchLastMessageAt(userID, id string) error {
	now := time.Now()
	err := d.db.Model(&model.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"last_message_at": now,
			"updated_at":      now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	d.notify(userID, realtime.ActionUpdate)
	return nil
}

// Delete removes the conversation and all of its messages. The two
// deletes run in one transaction so a half-deleted thread is never
// observable.
func (d *ConversationDAO) Delete(userID, id string) error {
	var affected int64
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ? AND user_id = ?", id, userID).
			Delete(&model.Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).
			Delete(&model.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	d.notify(userID, realtime.ActionDelete)
	if d.hub != nil {
		d.hub.Notify(realtime.Event{Table: realtime.TableMessages, UserID: userID, Action: realtime.ActionDelete})
	}
	return nil
}

// ReconcileLastMessageAt repairs conversations whose last_message_at
// fell behind their newest message, which can happen because the
// message insert and the touch are not transactional. Returns the
// number of repaired rows.
func (d *ConversationDAO) ReconcileLastMessageAt() (int64, error) {
	res := d.db.Exec(`
		UPDATE conversations SET last_message_at = (
			SELECT MAX(timestamp) FROM chat_messages
			WHERE chat_messages.conversation_id = conversations.id
		)
		WHERE EXISTS (
			SELECT 1 FROM chat_messages
			WHERE chat_messages.conversation_id = conversations.id
			AND chat_messages.timestamp > conversations.last_message_at
		)`)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reconcile last_message_at: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *ConversationDAO) notify(userID string, action realtime.Action) {
	if d.hub != nil {
		d.hub.Notify(realtime.Event{Table: realtime.TableConversations, UserID: userID, Action: action})
	}
}
