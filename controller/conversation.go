package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"barberbot/dao"
	"barberbot/service"
)

// ConversationController handles the conversation CRUD surface.
type ConversationController struct {
	convos   *dao.ConversationDAO
	messages *dao.MessageDAO
	chat     *service.ChatService
}

func NewConversationController(convos *dao.ConversationDAO, messages *dao.MessageDAO, chat *service.ChatService) *ConversationController {
	return &ConversationController{convos: convos, messages: messages, chat: chat}
}

// List handles GET /conversations, most recently active first.
func (ctrl *ConversationController) List(c *gin.Context) {
	convos, err := ctrl.convos.ListForUser(currentUserID(c))
	if err != nil {
		logger.Warnf("[%s] Failed to list conversations: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convos})
}

// Create handles POST /conversations (the explicit "new chat" action).
func (ctrl *ConversationController) Create(c *gin.Context) {
	var input struct {
		Title string `json:"title"`
	}
	// body is optional; an empty title falls back to the default
	_ = c.ShouldBindJSON(&input)

	convo, err := ctrl.convos.Create(currentUserID(c), input.Title)
	if err != nil {
		logger.Warnf("[%s] Failed to create conversation: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}
	c.JSON(http.StatusOK, convo)
}

// Get handles GET /conversations/:id.
func (ctrl *ConversationController) Get(c *gin.Context) {
	convo, err := ctrl.convos.Get(currentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		logger.Warnf("[%s] Failed to fetch conversation: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}
	c.JSON(http.StatusOK, convo)
}

// UpdateTitle handles PUT /conversations/:id/title.
func (ctrl *ConversationController) UpdateTitle(c *gin.Context) {
	var input struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := ctrl.convos.UpdateTitle(currentUserID(c), c.Param("id"), input.Title); err != nil {
		logger.Warnf("[%s] Failed to update conversation title: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update title"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Title updated"})
}

// Delete handles DELETE /conversations/:id; messages go with it.
func (ctrl *ConversationController) Delete(c *gin.Context) {
	if err := ctrl.convos.Delete(currentUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		logger.Warnf("[%s] Failed to delete conversation: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

// Messages handles GET /conversations/:id/messages in display order.
func (ctrl *ConversationController) Messages(c *gin.Context) {
	messages, err := ctrl.messages.ListForConversation(currentUserID(c), c.Param("id"))
	if err != nil {
		logger.Warnf("[%s] Failed to list conversation messages: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}
	ctrl.chat.RenderHTMLAll(messages)
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
