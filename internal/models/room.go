package models

import (
	"fmt"
	"strings"
)

// Room 表示一個估算房間，建立後只有成員會變動
type Room struct {
	ID   string
	Name string
	Mode Mode
}

// Mode 決定房間的投票玩法
type Mode string

const (
	ModeEffort Mode = "effort"
	ModeRetro  Mode = "retro"
)

// ParseMode 不分大小寫
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEffort:
		return ModeEffort, nil
	case ModeRetro:
		return ModeRetro, nil
	default:
		return "", fmt.Errorf("%w: unknown variant %q", ErrInvalidMode, s)
	}
}

type RoomDTO struct {
	RoomID string `json:"roomID"`
	Name   string `json:"name"`
	Mode   Mode   `json:"mode"`
}

func NewRoom(name string, mode Mode) Room {
	return Room{
		ID:   NewID(),
		Name: name,
		Mode: mode,
	}
}

func (r Room) DTO() RoomDTO {
	return RoomDTO{
		RoomID: r.ID,
		Name:   r.Name,
		Mode:   r.Mode,
	}
}
