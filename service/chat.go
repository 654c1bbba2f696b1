package service

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"

	"barberbot/dao"
	"barberbot/model"
	"barberbot/platform"
)

// WelcomeMessage seeds every brand-new conversation.
const WelcomeMessage = "Welcome to BarberBot! 👋 I'm here to help you with anything related to our barbershop. Just chat with me naturally and I'll do my best to assist you!"

const titleMaxRunes = 40

// ChatService orchestrates chat sessions: get-or-create of the active
// conversation, welcome-message seeding, title synthesis from the
// first user message, and the send flow against the bot webhook.
type ChatService struct {
	convos   *dao.ConversationDAO
	messages *dao.MessageDAO
	bot      *BotClient
	md       goldmark.Markdown
	logger   *logrus.Logger
}

func NewChatService(convos *dao.ConversationDAO, messages *dao.MessageDAO, bot *BotClient) *ChatService {
	return &ChatService{
		convos:   convos,
		messages: messages,
		bot:      bot,
		md:       goldmark.New(),
		logger:   platform.Logger,
	}
}

// GetOrCreateActiveConversation returns the most recently active
// conversation, creating a "New Chat" only when the user has none.
// It never creates a second conversation while one exists, even an
// empty one.
func (s *ChatService) GetOrCreateActiveConversation(userID string) (*model.Conversation, error) {
	convos, err := s.convos.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(convos) > 0 {
		return &convos[0], nil
	}
	return s.convos.Create(userID, dao.DefaultTitle)
}

// GetOrCreateWelcomeMessage seeds the fixed bot greeting when the
// conversation (or, for legacy callers, the user) has no messages
// yet, and returns the first message otherwise. It always yields a
// displayable message: when persistence fails it falls back to a
// synthetic in-memory message with id "1" that is never written to
// the store.
func (s *ChatService) GetOrCreateWelcomeMessage(userID string, conversationID *string) *model.Message {
	var existing []model.Message
	var err error
	if conversationID != nil {
		existing, err = s.messages.ListForConversation(userID, *conversationID)
	} else {
		existing, err = s.messages.ListForUser(userID)
	}
	if err != nil {
		s.logger.Warnf("welcome message lookup for user %s failed: %s", userID, err)
	}

	if err == nil && len(existing) == 0 {
		saved, saveErr := s.messages.Save(userID, WelcomeMessage, model.SenderBot, conversationID)
		if saveErr == nil {
			return saved
		}
		s.logger.Warnf("failed to persist welcome message for user %s: %s", userID, saveErr)
	}

	if len(existing) > 0 {
		return &existing[0]
	}
	return &model.Message{
		ID:             "1",
		UserID:         userID,
		ConversationID: conversationID,
		Content:        WelcomeMessage,
		Sender:         model.SenderBot,
		Timestamp:      time.Now(),
	}
}

// SendMessage runs the full send flow: persist the user message,
// re-title after the first one, ask the bot, persist its reply. The
// user save is awaited before the bot call so persisted order matches
// display order. Bot failures degrade to the fallback reply and the
// flow still resolves.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID, content string) (*model.Message, *model.Message, error) {
	userMsg, err := s.messages.Save(userID, content, model.SenderUser, &conversationID)
	if err != nil {
		return nil, nil, err
	}

	s.UpdateConversationTitleFromFirstMessage(userID, conversationID)

	reply := s.bot.Reply(ctx, content)
	botMsg, err := s.messages.Save(userID, reply, model.SenderBot, &conversationID)
	if err != nil {
		return userMsg, nil, err
	}
	s.RenderHTML(botMsg)
	return userMsg, botMsg, nil
}

// UpdateConversationTitleFromFirstMessage derives a title from the
// first user message and applies it. The rename fires only while the
// conversation holds exactly one user-authored message, so later
// sends can never re-title the thread.
func (s *ChatService) UpdateConversationTitleFromFirstMessage(userID, conversationID string) {
	messages, err := s.messages.ListForConversation(userID, conversationID)
	if err != nil {
		s.logger.Warnf("title generation lookup for conversation %s failed: %s", conversationID, err)
		return
	}

	var first *model.Message
	userCount := 0
	for i := range messages {
		if messages[i].Sender == model.SenderUser {
			userCount++
			if first == nil {
				first = &messages[i]
			}
		}
	}
	if userCount != 1 {
		return
	}

	title := TitleFromContent(first.Content)
	if title == dao.DefaultTitle {
		return
	}
	if err := s.convos.UpdateTitle(userID, conversationID, title); err != nil {
		s.logger.Warnf("failed to apply generated title to conversation %s: %s", conversationID, err)
	}
}

// TitleFromContent collapses whitespace and cuts the content at a
// word boundary within titleMaxRunes runes.
func TitleFromContent(content string) string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return dao.DefaultTitle
	}

	title := words[0]
	if len([]rune(title)) > titleMaxRunes {
		return string([]rune(title)[:titleMaxRunes]) + "..."
	}
	for _, w := range words[1:] {
		if len([]rune(title))+1+len([]rune(w)) > titleMaxRunes {
			return title + "..."
		}
		title += " " + w
	}
	return title
}

// RenderHTML fills ContentHTML for bot messages. Bot replies may
// carry markdown; user messages are left as plain text.
func (s *ChatService) RenderHTML(msg *model.Message) {
	if msg == nil || msg.Sender != model.SenderBot {
		return
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(msg.Content), &buf); err != nil {
		s.logger.Warnf("failed to render message %s: %s", msg.ID, err)
		return
	}
	msg.ContentHTML = buf.String()
}

// RenderHTMLAll renders every bot message in the slice in place.
func (s *ChatService) RenderHTMLAll(messages []model.Message) {
	for i := range messages {
		s.RenderHTML(&messages[i])
	}
}
