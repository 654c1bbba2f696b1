package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"barberbot/service"
)

// ChatController exposes the chat session flows: active-conversation
// bootstrap, welcome seeding and the send round-trip.
type ChatController struct {
	chat *service.ChatService
}

func NewChatController(chat *service.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// Active handles POST /chat/active. Calling it twice without an
// explicit "new chat" in between yields the same conversation.
func (ctrl *ChatController) Active(c *gin.Context) {
	convo, err := ctrl.chat.GetOrCreateActiveConversation(currentUserID(c))
	if err != nil {
		logger.Warnf("[%s] Failed to resolve active conversation: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve active conversation"})
		return
	}
	c.JSON(http.StatusOK, convo)
}

// Welcome handles POST /chat/welcome. It always answers 200 with a
// displayable message; persistence trouble degrades to the synthetic
// fallback instead of an error.
func (ctrl *ChatController) Welcome(c *gin.Context) {
	var input struct {
		ConversationID *string `json:"conversation_id"`
	}
	_ = c.ShouldBindJSON(&input)

	msg := ctrl.chat.GetOrCreateWelcomeMessage(currentUserID(c), input.ConversationID)
	ctrl.chat.RenderHTML(msg)
	c.JSON(http.StatusOK, msg)
}

// Send handles POST /chat/send: persists the user message, asks the
// bot, persists the reply and returns both.
func (ctrl *ChatController) Send(c *gin.Context) {
	var input struct {
		ConversationID string `json:"conversation_id" binding:"required"`
		Content        string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	userMsg, botMsg, err := ctrl.chat.SendMessage(c.Request.Context(), currentUserID(c), input.ConversationID, input.Content)
	if err != nil {
		logger.Warnf("[%s] Send flow failed: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_message": userMsg, "bot_message": botMsg})
}
