package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poker_web/internal/api/handlers"
	"poker_web/internal/middleware"
	"poker_web/internal/service"
	"poker_web/internal/utils"
)

// Version 於建置時以 -ldflags "-X poker_web/internal/api.Version=..." 設定
var Version = "dev"

func SetupRoutes(r *gin.Engine, services *service.Services, tokens *utils.TokenIssuer) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	roomHandler := handlers.NewRoomHandler(services)
	wsHandler := handlers.NewWebSocketHandler(services)

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "poker_web",
			"version": Version,
		})
	})

	// WebSocket 連接點，身分由 query 參數帶入
	r.GET("/ws", wsHandler.HandleWebSocket)

	// API 路由群組
	api := r.Group("/api")
	{
		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"rooms":  services.Room.Count(),
			})
		})

		api.GET("/rooms/:id", roomHandler.GetRoom)
	}

	// 需要 session token 的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(tokens))
	{
		authorized.GET("/me", authHandler.Me)
	}
}
