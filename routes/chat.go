package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"azhome-server/middleware"
	"azhome-server/services"
	ws "azhome-server/websocket"
)

type sendMessageRequest struct {
	RecipientID uint   `json:"recipientId" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

// RegisterChatRoutes adds messaging endpoints and the WebSocket upgrade
func RegisterChatRoutes(r *gin.RouterGroup, chat *services.ChatService, hub *ws.Hub) {
	group := r.Group("/chat")

	// WebSocket clients pass the token as a query parameter
	group.GET("/ws", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
		userID := c.GetUint("user_id")
		ws.ServeWebSocket(hub, c.Writer, c.Request, userID)
	})

	authed := group.Group("")
	authed.Use(middleware.AuthMiddleware())

	authed.POST("/messages", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Recipient and content are required"})
			return
		}

		message, err := chat.Send(&user, req.RecipientID, req.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, message)
	})

	authed.GET("/conversations", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		conversations, err := chat.ListConversations(&user)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, conversations)
	})

	authed.GET("/conversations/:userId", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		otherID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
			return
		}

		messages, err := chat.Conversation(&user, uint(otherID))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, messages)
	})

	authed.PATCH("/conversations/:userId/read", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		otherID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
			return
		}

		if err := chat.MarkRead(&user, uint(otherID)); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Messages marked as read")
	})
}
