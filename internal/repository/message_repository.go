package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

type MessageRepository interface {
	Append(roomID string, message models.Message)
	FindByRoomID(roomID string) []models.Message
}

type messageRepository struct {
	table *storage.Table[string, []models.Message]
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		table: storage.NewTable[string, []models.Message](),
	}
}

func (r *messageRepository) Append(roomID string, message models.Message) {
	r.table.Update(func(logs map[string][]models.Message) {
		logs[roomID] = append(logs[roomID], message)
	})
}

// FindByRoomID 依寫入順序回傳
func (r *messageRepository) FindByRoomID(roomID string) []models.Message {
	logs, _ := r.table.Get(roomID)
	return append([]models.Message(nil), logs...)
}
