package service

import (
	"poker_web/internal/repository"
	"poker_web/internal/utils"
)

type Services struct {
	User      *UserService
	Room      *RoomService
	Round     *RoundService
	Message   *MessageService
	WebSocket *WebSocketManager
}

func NewServices(repos *repository.Repositories, tokens *utils.TokenIssuer, wsOpts WebSocketOptions) *Services {
	return &Services{
		User:      NewUserService(repos.User, tokens),
		Room:      NewRoomService(repos),
		Round:     NewRoundService(repos),
		Message:   NewMessageService(repos),
		WebSocket: NewWebSocketManager(wsOpts),
	}
}
