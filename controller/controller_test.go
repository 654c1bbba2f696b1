package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"barberbot/controller"
	"barberbot/dao"
	"barberbot/model"
	"barberbot/platform"
	"barberbot/realtime"
	"barberbot/service"
)

// stubAuth plays the role of the JWT middleware for handler tests.
func stubAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("UserId", userID)
		c.Set("UserName", "tester")
		c.Next()
	}
}

func newRouter(t *testing.T, botURL string) (*gin.Engine, *dao.ConversationDAO, *dao.MessageDAO) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	model.InstallDB(db)

	hub := realtime.NewHub()
	convos := dao.NewConversationDAO(db, hub)
	messages := dao.NewMessageDAO(db, convos, hub)
	chatSvc := service.NewChatService(convos, messages, service.NewBotClient(botURL))
	syncer := realtime.NewSyncer(hub, convos, messages, platform.Logger)

	convoCtrl := controller.NewConversationController(convos, messages, chatSvc)
	messageCtrl := controller.NewMessageController(messages, chatSvc)
	chatCtrl := controller.NewChatController(chatSvc)
	realtimeCtrl := controller.NewRealtimeController(syncer, convos, messages, chatSvc)

	r := gin.New()
	v1 := r.Group("/v1", stubAuth(1))
	{
		v1.GET("/conversations", convoCtrl.List)
		v1.POST("/conversations", convoCtrl.Create)
		v1.GET("/conversations/:id", convoCtrl.Get)
		v1.PUT("/conversations/:id/title", convoCtrl.UpdateTitle)
		v1.DELETE("/conversations/:id", convoCtrl.Delete)
		v1.GET("/conversations/:id/messages", convoCtrl.Messages)
		v1.POST("/chat/active", chatCtrl.Active)
		v1.POST("/chat/welcome", chatCtrl.Welcome)
		v1.POST("/chat/send", chatCtrl.Send)
		v1.GET("/messages", messageCtrl.ListForUser)
		v1.DELETE("/messages", messageCtrl.Clear)
		v1.DELETE("/messages/:id", messageCtrl.DeleteOne)
		v1.GET("/realtime", realtimeCtrl.Stream)
	}
	return r, convos, messages
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatActiveIsStableAcrossCalls(t *testing.T) {
	r, _, _ := newRouter(t, "")

	first := doJSON(t, r, http.MethodPost, "/v1/chat/active", nil)
	require.Equal(t, http.StatusOK, first.Code)

	var a model.Conversation
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.Equal(t, "New Chat", a.Title)

	second := doJSON(t, r, http.MethodPost, "/v1/chat/active", nil)
	require.Equal(t, http.StatusOK, second.Code)

	var b model.Conversation
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	require.Equal(t, a.ID, b.ID)
}

func TestSendFlowPersistsConversationHistory(t *testing.T) {
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"output": "See you at noon!"})
	}))
	defer bot.Close()
	r, convos, _ := newRouter(t, bot.URL)

	convo, err := convos.Create("1", "")
	require.NoError(t, err)

	resp := doJSON(t, r, http.MethodPost, "/v1/chat/send", map[string]string{
		"conversation_id": convo.ID,
		"content":         "Hi",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var sent struct {
		UserMessage model.Message `json:"user_message"`
		BotMessage  model.Message `json:"bot_message"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sent))
	require.Equal(t, "Hi", sent.UserMessage.Content)
	require.Equal(t, "See you at noon!", sent.BotMessage.Content)

	list := doJSON(t, r, http.MethodGet, "/v1/conversations/"+convo.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, list.Code)

	var body struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	require.Equal(t, "Hi", body.Messages[0].Content)
	require.Equal(t, "See you at noon!", body.Messages[1].Content)
}

func TestSendFlowSurvivesBotOutage(t *testing.T) {
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer bot.Close()
	r, convos, _ := newRouter(t, bot.URL)

	convo, err := convos.Create("1", "")
	require.NoError(t, err)

	resp := doJSON(t, r, http.MethodPost, "/v1/chat/send", map[string]string{
		"conversation_id": convo.ID,
		"content":         "Hi",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var sent struct {
		BotMessage model.Message `json:"bot_message"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sent))
	require.Equal(t, service.FallbackBotReply, sent.BotMessage.Content)
}

func TestWelcomeEndpointAlwaysAnswers(t *testing.T) {
	r, convos, _ := newRouter(t, "")

	convo, err := convos.Create("1", "")
	require.NoError(t, err)

	resp := doJSON(t, r, http.MethodPost, "/v1/chat/welcome", map[string]string{
		"conversation_id": convo.ID,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var msg model.Message
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &msg))
	require.Equal(t, service.WelcomeMessage, msg.Content)

	again := doJSON(t, r, http.MethodPost, "/v1/chat/welcome", map[string]string{
		"conversation_id": convo.ID,
	})
	require.Equal(t, http.StatusOK, again.Code)

	var repeat model.Message
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &repeat))
	require.Equal(t, msg.ID, repeat.ID)
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	r, convos, messages := newRouter(t, "")

	convo, err := convos.Create("1", "")
	require.NoError(t, err)
	_, err = messages.Save("1", "Hi", model.SenderUser, &convo.ID)
	require.NoError(t, err)

	resp := doJSON(t, r, http.MethodDelete, "/v1/conversations/"+convo.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	get := doJSON(t, r, http.MethodGet, "/v1/conversations/"+convo.ID, nil)
	require.Equal(t, http.StatusNotFound, get.Code)

	left, err := messages.ListForConversation("1", convo.ID)
	require.NoError(t, err)
	require.Empty(t, left)
}

func TestDeleteUnknownConversationIs404(t *testing.T) {
	r, _, _ := newRouter(t, "")

	resp := doJSON(t, r, http.MethodDelete, "/v1/conversations/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRenameConversation(t *testing.T) {
	r, convos, _ := newRouter(t, "")

	convo, err := convos.Create("1", "")
	require.NoError(t, err)

	resp := doJSON(t, r, http.MethodPut, "/v1/conversations/"+convo.ID+"/title", map[string]string{
		"title": "Beard trim",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	got, err := convos.Get("1", convo.ID)
	require.NoError(t, err)
	require.Equal(t, "Beard trim", got.Title)
}

func TestClearMessages(t *testing.T) {
	r, _, messages := newRouter(t, "")

	_, err := messages.Save("1", "legacy one", model.SenderUser, nil)
	require.NoError(t, err)
	_, err = messages.Save("1", "legacy two", model.SenderBot, nil)
	require.NoError(t, err)

	resp := doJSON(t, r, http.MethodDelete, "/v1/messages", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	list, err := messages.ListForUser("1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ACCESS_SECRET", "test-secret")

	auth := new(controller.AuthController)
	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		auth.TokenValid(c)
		if c.IsAborted() {
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
