package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"barberbot/dao"
	"barberbot/service"
)

// MessageController handles the per-user message surface, including
// the legacy conversation-less listing.
type MessageController struct {
	messages *dao.MessageDAO
	chat     *service.ChatService
}

func NewMessageController(messages *dao.MessageDAO, chat *service.ChatService) *MessageController {
	return &MessageController{messages: messages, chat: chat}
}

// ListForUser handles GET /messages.
func (ctrl *MessageController) ListForUser(c *gin.Context) {
	messages, err := ctrl.messages.ListForUser(currentUserID(c))
	if err != nil {
		logger.Warnf("[%s] Failed to list messages: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}
	ctrl.chat.RenderHTMLAll(messages)
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Clear handles DELETE /messages, wiping the user's history.
func (ctrl *MessageController) Clear(c *gin.Context) {
	if err := ctrl.messages.ClearForUser(currentUserID(c)); err != nil {
		logger.Warnf("[%s] Failed to clear messages: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Messages cleared"})
}

// DeleteOne handles DELETE /messages/:id.
func (ctrl *MessageController) DeleteOne(c *gin.Context) {
	if err := ctrl.messages.DeleteOne(currentUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		logger.Warnf("[%s] Failed to delete message: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
