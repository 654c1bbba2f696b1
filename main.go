package main

import (
	"fmt"
	"os"
	"time"

	"barberbot/controller"
	"barberbot/dao"
	"barberbot/model"
	"barberbot/platform"
	"barberbot/realtime"
	"barberbot/service"

	_uuid "github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CORSMiddleware ...
// CORS (Cross-Origin Resource Sharing)
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", os.Getenv("CORS_ORIGIN"))
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Origin, Authorization, Accept, Client-Security-Token, Accept-Encoding, x-access-token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
		} else {
			c.Next()
		}
	}
}

// RequestIDMiddleware ...
// Generate a unique ID and attach it to each request for future reference or use
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := _uuid.New()
		c.Writer.Header().Set("X-Request-Id", uuid.String())
		c.Set("requestId", uuid.String())
		c.Next()
	}
}

func LogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)

		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		userAgent := c.Request.UserAgent()
		requestId := c.GetString("requestId")

		logrus.Infof(
			" [%s] %d | %v | %s | %s | %s | %s ",
			requestId,
			status,
			latency,
			clientIP,
			method,
			path,
			userAgent,
		)
	}
}

var auth = new(controller.AuthController)

// TokenAuthMiddleware ...
// JWT Authentication middleware attached to each request that needs to be authenitcated to
// validate the access_token in the header
func TokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.TokenValid(c)
		c.Next()
	}
}

func main() {
	fmt.Println("Server started...")

	//Load the .env file
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("failed to load the env file")
	}

	platform.InitFile("./log", "gin")

	r := gin.Default()
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LogMiddleware())

	//init database
	platform.InitDB()
	model.InstallDB(platform.DB)

	// one hub shared by the repositories and the websocket feed
	hub := realtime.NewHub()

	convoDAO := dao.NewConversationDAO(platform.DB, hub)
	messageDAO := dao.NewMessageDAO(platform.DB, convoDAO, hub)
	userDAO := dao.NewUserDAO(platform.DB)

	botClient := service.NewBotClientFromEnv()
	chatService := service.NewChatService(convoDAO, messageDAO, botClient)
	userService := service.NewUserService(userDAO)
	digestService := service.NewDigestService(platform.DB)
	syncer := realtime.NewSyncer(hub, convoDAO, messageDAO, platform.Logger)

	userCtrl := controller.NewUserController(userService)
	convoCtrl := controller.NewConversationController(convoDAO, messageDAO, chatService)
	messageCtrl := controller.NewMessageController(messageDAO, chatService)
	chatCtrl := controller.NewChatController(chatService)
	realtimeCtrl := controller.NewRealtimeController(syncer, convoDAO, messageDAO, chatService)

	v1 := r.Group("/v1")
	{
		v1.POST("/user/register", userCtrl.Register)
		v1.POST("/user/login", userCtrl.Login)

		//Refresh the token
		v1.POST("/token/refresh", auth.Refresh)

		v1.GET("/conversations", TokenAuthMiddleware(), convoCtrl.List)
		v1.POST("/conversations", TokenAuthMiddleware(), convoCtrl.Create)
		v1.GET("/conversations/:id", TokenAuthMiddleware(), convoCtrl.Get)
		v1.PUT("/conversations/:id/title", TokenAuthMiddleware(), convoCtrl.UpdateTitle)
		v1.DELETE("/conversations/:id", TokenAuthMiddleware(), convoCtrl.Delete)
		v1.GET("/conversations/:id/messages", TokenAuthMiddleware(), convoCtrl.Messages)

		v1.POST("/chat/active", TokenAuthMiddleware(), chatCtrl.Active)
		v1.POST("/chat/welcome", TokenAuthMiddleware(), chatCtrl.Welcome)
		v1.POST("/chat/send", TokenAuthMiddleware(), chatCtrl.Send)

		v1.GET("/messages", TokenAuthMiddleware(), messageCtrl.ListForUser)
		v1.DELETE("/messages", TokenAuthMiddleware(), messageCtrl.Clear)
		v1.DELETE("/messages/:id", TokenAuthMiddleware(), messageCtrl.DeleteOne)

		v1.GET("/realtime", TokenAuthMiddleware(), realtimeCtrl.Stream)
	}

	c := cron.New()
	c.AddFunc("0 * * * *", func() {
		repaired, err := convoDAO.ReconcileLastMessageAt()
		if err != nil {
			platform.Logger.Warnf("[%s] reconcile pass failed: %s", "scheduled task", err)
			return
		}
		if repaired > 0 {
			platform.Logger.Infof("[%s] reconcile pass repaired %d conversations", "scheduled task", repaired)
		}
	})
	c.AddFunc("0 7 * * *", func() {
		if err := digestService.SendDailyDigest(); err != nil {
			platform.Logger.Warnf("[%s] daily digest failed: %s", "scheduled task", err)
		}
	})
	c.Start()

	port := os.Getenv("PORT")
	r.Run(":" + port)
}
