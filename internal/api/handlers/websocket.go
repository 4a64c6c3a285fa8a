package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"poker_web/internal/models"
	"poker_web/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 前端與後端分開部署
	},
}

// WebSocketHandler 處理 WebSocket 連接
type WebSocketHandler struct {
	wsManager   *service.WebSocketManager
	userService *service.UserService
	router      *EventRouter
}

func NewWebSocketHandler(services *service.Services) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   services.WebSocket,
		userService: services.User,
		router:      NewEventRouter(services.WebSocket, services),
	}
}

// HandleWebSocket 升級連線、解析身分，之後在目前的 goroutine 處理該連線的所有請求
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	session, user, err := h.userService.Connect(service.ConnectRequest{
		SessionToken: c.Query("token"),
		UserToken:    c.Query("user"),
		Name:         c.Query("name"),
	})
	if err != nil {
		slog.Info("connection rejected", "remote", c.ClientIP(), "error", err)
		rejectConnection(conn, err)
		return
	}

	token, err := h.userService.IssueToken(session)
	if err != nil {
		slog.Error("issue session token", "session_id", session.ID, "error", err)
		rejectConnection(conn, err)
		return
	}

	client := h.wsManager.Register(conn, session)
	ctx := SessionContext{ConnID: client.ID, Session: session}
	slog.Info("client connected", "client_id", client.ID, "session_id", session.ID, "user_id", user.ID)

	sessionDTO := session.DTO()
	sessionDTO.Token = token
	h.wsManager.Emit(client.ID, "session", sessionDTO)
	h.wsManager.Emit(client.ID, "user", user.DTO())

	h.wsManager.Serve(client, func(_ *service.Client, frame service.Frame) {
		h.router.Dispatch(ctx, frame)
	})

	h.router.Disconnect(ctx)
	slog.Info("client disconnected", "client_id", client.ID, "session_id", session.ID)
}

// rejectConnection 身分無法解析時以 policy violation 關閉，其他錯誤視為伺服器錯誤
func rejectConnection(conn *websocket.Conn, err error) {
	code, reason := websocket.CloseInternalServerErr, "internal error"
	if service.IsIdentityError(err) {
		code, reason = websocket.ClosePolicyViolation, models.CodeOf(err)
	}
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}
