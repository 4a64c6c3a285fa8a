package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poker_web/internal/middleware"
	"poker_web/internal/models"
	"poker_web/internal/service"
)

// AuthHandler 讓持有 session token 的客戶端在連線前查詢自己的身分
type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// MeResponse 是 /api/me 的回應
type MeResponse struct {
	User    models.UserDTO    `json:"user"`
	Session models.SessionDTO `json:"session"`
}

// Me 回傳 token 對應的使用者 (含 email) 與 session 狀態
func (h *AuthHandler) Me(c *gin.Context) {
	session, err := h.userService.GetSession(c.GetString(middleware.ContextSessionID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": models.CodeOf(err)})
		return
	}

	user, err := h.userService.GetUser(session.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": models.CodeOf(err)})
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: user.DTO(), Session: session.DTO()})
}
