package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// User 表示一個持久的使用者身分，跨連線存在
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}

// UserDTO 是傳給客戶端的使用者資料
type UserDTO struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func NewUser(name string) User {
	return User{
		ID:   NewID(),
		Name: name,
	}
}

func (u User) DTO() UserDTO {
	return UserDTO{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}

// Redacted 回傳不含聯絡資訊的版本，用於房間廣播
func (u User) Redacted() UserDTO {
	dto := u.DTO()
	dto.Email = ""
	return dto
}

// AvatarToken 由 email 計算頭像雜湊，空 email 則無頭像
func AvatarToken(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Session 是一條連線的身分代號，指向一個 User
type Session struct {
	ID        string
	UserID    string
	Connected bool
}

type SessionDTO struct {
	SessionID string `json:"sessionID"`
	UserID    string `json:"userID"`
	Connected bool   `json:"connected"`
	Token     string `json:"token,omitempty"`
}

func NewSession(userID string) Session {
	return Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Connected: true,
	}
}

func (s Session) DTO() SessionDTO {
	return SessionDTO{
		SessionID: s.ID,
		UserID:    s.UserID,
		Connected: s.Connected,
	}
}
