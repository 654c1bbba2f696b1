package realtime

import (
	"github.com/sirupsen/logrus"

	"barberbot/model"
)

// ConversationSource yields the full ordered conversation collection
// for one user. Satisfied by dao.ConversationDAO.
type ConversationSource interface {
	ListForUser(userID string) ([]model.Conversation, error)
}

// MessageSource yields the full ordered message collection for one
// user. Satisfied by dao.MessageDAO.
type MessageSource interface {
	ListForUser(userID string) ([]model.Message, error)
}

// Syncer turns hub events into refreshed collections. On any change
// it re-fetches the whole collection and hands it to the callback:
// no incremental patches, so the callback always sees a fully
// ordered, de-duplicated view and there is nothing to merge.
type Syncer struct {
	hub           *Hub
	conversations ConversationSource
	messages      MessageSource
	logger        *logrus.Logger
}

func NewSyncer(hub *Hub, conversations ConversationSource, messages MessageSource, logger *logrus.Logger) *Syncer {
	return &Syncer{
		hub:           hub,
		conversations: conversations,
		messages:      messages,
		logger:        logger,
	}
}

// SubscribeConversations invokes fn with the refreshed conversation
// list after every change to the user's conversations. The returned
// cancel stops delivery once the subscription channel drains.
func (s *Syncer) SubscribeConversations(userID string, fn func([]model.Conversation)) func() {
	events, cancel := s.hub.Subscribe(TableConversations, userID)
	go func() {
		for range events {
			list, err := s.conversations.ListForUser(userID)
			if err != nil {
				s.logger.Warnf("realtime: refetch conversations for %s failed: %s", userID, err)
				continue
			}
			fn(list)
		}
	}()
	return cancel
}

// SubscribeMessages is the message-side counterpart, scoped to all of
// the user's messages to match the store's per-user change filter.
func (s *Syncer) SubscribeMessages(userID string, fn func([]model.Message)) func() {
	events, cancel := s.hub.Subscribe(TableMessages, userID)
	go func() {
		for range events {
			list, err := s.messages.ListForUser(userID)
			if err != nil {
				s.logger.Warnf("realtime: refetch messages for %s failed: %s", userID, err)
				continue
			}
			fn(list)
		}
	}()
	return cancel
}
