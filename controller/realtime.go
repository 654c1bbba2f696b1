package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"barberbot/dao"
	"barberbot/model"
	"barberbot/realtime"
	"barberbot/service"
)

// RealtimeController serves the websocket change feed. Each client
// gets an initial snapshot and then a full refreshed collection after
// every change to its rows, mirroring the store's per-user filter.
type RealtimeController struct {
	syncer   *realtime.Syncer
	convos   *dao.ConversationDAO
	messages *dao.MessageDAO
	chat     *service.ChatService
	upgrader websocket.Upgrader
}

func NewRealtimeController(syncer *realtime.Syncer, convos *dao.ConversationDAO, messages *dao.MessageDAO, chat *service.ChatService) *RealtimeController {
	return &RealtimeController{
		syncer:   syncer,
		convos:   convos,
		messages: messages,
		chat:     chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Stream handles GET /realtime. The connection stays open until the
// client goes away; there is no server-side reconnection contract.
func (ctrl *RealtimeController) Stream(c *gin.Context) {
	userID := currentUserID(c)

	ws, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[%s] Websocket upgrade failed: %s", c.GetString("requestId"), err)
		return
	}

	conn := realtime.NewConn(userID, ws)
	conn.Start()

	pushConversations := func(list []model.Conversation) {
		payload, err := json.Marshal(frame{Type: "conversations", Data: list})
		if err != nil {
			return
		}
		_ = conn.Send(payload)
	}
	pushMessages := func(list []model.Message) {
		ctrl.chat.RenderHTMLAll(list)
		payload, err := json.Marshal(frame{Type: "messages", Data: list})
		if err != nil {
			return
		}
		_ = conn.Send(payload)
	}

	// snapshot before the first change event
	if list, err := ctrl.convos.ListForUser(userID); err == nil {
		pushConversations(list)
	}
	if list, err := ctrl.messages.ListForUser(userID); err == nil {
		pushMessages(list)
	}

	cancelConversations := ctrl.syncer.SubscribeConversations(userID, pushConversations)
	cancelMessages := ctrl.syncer.SubscribeMessages(userID, pushMessages)
	defer func() {
		cancelConversations()
		cancelMessages()
		conn.Close(websocket.CloseNormalClosure, "session ended")
	}()

	// inbound frames are ignored; the read loop only detects the
	// client going away
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
