package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"poker_web/internal/models"
	"poker_web/internal/service"
)

// RoomHandler 提供分享連結使用的房間查詢
type RoomHandler struct {
	roomService *service.RoomService
	wsManager   *service.WebSocketManager
}

func NewRoomHandler(services *service.Services) *RoomHandler {
	return &RoomHandler{
		roomService: services.Room,
		wsManager:   services.WebSocket,
	}
}

// RoomInfo 是 REST 查詢的回應
type RoomInfo struct {
	models.RoomDTO
	Members []models.UserDTO `json:"members"`
	Online  int              `json:"online"`
}

// GetRoom 處理獲取房間訊息的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": models.CodeOf(err)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, RoomInfo{
		RoomDTO: room.DTO(),
		Members: redacted(h.roomService.Members(room.ID)),
		Online:  h.wsManager.GetRoomClients(room.ID),
	})
}
