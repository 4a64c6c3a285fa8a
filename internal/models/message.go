package models

import "time"

// Message 是房間內的一則聊天訊息，只會追加
type Message struct {
	Content string
	From    string
	Date    time.Time
}

type MessageDTO struct {
	Content string `json:"content"`
	From    string `json:"from"`
	Date    string `json:"date"`
}

func NewMessage(userID, content string) Message {
	return Message{
		Content: content,
		From:    userID,
		Date:    time.Now().UTC(),
	}
}

func (m Message) DTO() MessageDTO {
	return MessageDTO{
		Content: m.Content,
		From:    m.From,
		Date:    m.Date.Format(time.RFC3339),
	}
}

func MessageDTOs(messages []Message) []MessageDTO {
	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, m.DTO())
	}
	return dtos
}
