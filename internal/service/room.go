package service

import (
	"log/slog"
	"strings"

	"poker_web/internal/models"
	"poker_web/internal/repository"
)

// RoomSnapshot 是加入房間時給客戶端的完整狀態
type RoomSnapshot struct {
	Room     models.Room
	Members  []models.User
	Current  *models.CurrentRound
	Rounds   []models.Round
	Votes    []models.Vote
	Messages []models.Message
}

type RoomService struct {
	repos *repository.Repositories
}

func NewRoomService(repos *repository.Repositories) *RoomService {
	return &RoomService{repos: repos}
}

func (s *RoomService) CreateRoom(name, mode string) (models.Room, error) {
	parsed, err := models.ParseMode(mode)
	if err != nil {
		return models.Room{}, err
	}

	room := models.NewRoom(strings.TrimSpace(name), parsed)
	s.repos.Room.Create(room)
	slog.Info("room created", "room_id", room.ID, "mode", room.Mode)

	return room, nil
}

func (s *RoomService) GetRoom(roomID string) (models.Room, error) {
	room, ok := s.repos.Room.FindByID(roomID)
	if !ok {
		return models.Room{}, models.ErrRoomNotFound
	}
	return room, nil
}

// Join 將使用者加入成員集合並回傳房間快照
func (s *RoomService) Join(roomID, userID string) (RoomSnapshot, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return RoomSnapshot{}, err
	}

	memberIDs, err := s.repos.Room.AddMember(roomID, userID)
	if err != nil {
		return RoomSnapshot{}, err
	}

	state := s.repos.Snapshot(roomID)
	return RoomSnapshot{
		Room:     room,
		Members:  s.repos.User.FindByIDs(memberIDs),
		Current:  state.Current,
		Rounds:   state.Archived,
		Votes:    state.Votes,
		Messages: s.repos.Message.FindByRoomID(roomID),
	}, nil
}

// Members 回傳房間成員的使用者資料
func (s *RoomService) Members(roomID string) []models.User {
	return s.repos.User.FindByIDs(s.repos.Room.Members(roomID))
}

// Count 房間總數，用於健康檢查
func (s *RoomService) Count() int {
	return s.repos.Room.Count()
}
