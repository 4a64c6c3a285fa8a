package service

import (
	"log/slog"

	"poker_web/internal/models"
	"poker_web/internal/repository"
)

// RoundService 管理回合狀態機：
// 無回合 -> 進行中 (未翻開) -> 已翻開 -> 下一回合進行中 ...
type RoundService struct {
	repos *repository.Repositories
}

func NewRoundService(repos *repository.Repositories) *RoundService {
	return &RoundService{repos: repos}
}

// StartRound 上一回合必須已翻開
func (s *RoundService) StartRound(roomID string, opts models.RoundOptions) (repository.RoundTransition, error) {
	if err := s.ensureRoom(roomID); err != nil {
		return repository.RoundTransition{}, err
	}

	transition, err := s.repos.StartRound(roomID, opts)
	if err != nil {
		return repository.RoundTransition{}, err
	}

	slog.Info("round started", "room_id", roomID, "round", transition.Current.Name, "archived", len(transition.Archived))
	return transition, nil
}

// CastVote 解析分數後覆寫使用者的票，回傳該票與整個投票板
func (s *RoundService) CastVote(roomID, userID, score string) (models.Vote, []models.Vote, error) {
	parsed, err := models.ParseScore(score)
	if err != nil {
		return models.Vote{}, nil, err
	}
	if err := s.ensureRoom(roomID); err != nil {
		return models.Vote{}, nil, err
	}

	vote := models.Vote{UserID: userID, Score: parsed}
	board := s.repos.Vote.Upsert(roomID, vote)

	return vote, board, nil
}

// EndVote 所有成員投票後翻開目前回合
func (s *RoundService) EndVote(roomID string) (models.CurrentRound, error) {
	if err := s.ensureRoom(roomID); err != nil {
		return models.CurrentRound{}, err
	}

	current, err := s.repos.EndVote(roomID)
	if err != nil {
		return models.CurrentRound{}, err
	}

	slog.Info("round revealed", "room_id", roomID, "round", current.Name)
	return current, nil
}

func (s *RoundService) Votes(roomID string) []models.Vote {
	return s.repos.Vote.List(roomID)
}

func (s *RoundService) ensureRoom(roomID string) error {
	if _, ok := s.repos.Room.FindByID(roomID); !ok {
		return models.ErrRoomNotFound
	}
	return nil
}
