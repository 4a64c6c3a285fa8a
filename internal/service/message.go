package service

import (
	"strings"

	"poker_web/internal/models"
	"poker_web/internal/repository"
)

type MessageService struct {
	repos *repository.Repositories
}

func NewMessageService(repos *repository.Repositories) *MessageService {
	return &MessageService{repos: repos}
}

func (s *MessageService) Post(roomID, userID, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, models.ErrEmptyMessage
	}
	if _, ok := s.repos.Room.FindByID(roomID); !ok {
		return models.Message{}, models.ErrRoomNotFound
	}

	message := models.NewMessage(userID, content)
	s.repos.Message.Append(roomID, message)
	return message, nil
}

func (s *MessageService) History(roomID string) []models.Message {
	return s.repos.Message.FindByRoomID(roomID)
}
