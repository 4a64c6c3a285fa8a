package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

// RoundRepository 只提供讀取；狀態轉換由 Repositories.StartRound / EndVote 負責
type RoundRepository interface {
	Current(roomID string) (models.CurrentRound, bool)
	Archived(roomID string) []models.Round
}

type ledger struct {
	archived map[string][]models.Round
	current  map[string]models.CurrentRound
}

type roundRepository struct {
	table *storage.Guarded[ledger]
}

func newRoundRepository() *roundRepository {
	return &roundRepository{
		table: storage.NewGuarded(ledger{
			archived: make(map[string][]models.Round),
			current:  make(map[string]models.CurrentRound),
		}),
	}
}

func (r *roundRepository) Current(roomID string) (models.CurrentRound, bool) {
	var (
		current models.CurrentRound
		ok      bool
	)
	r.table.Read(func(l *ledger) {
		current, ok = l.current[roomID]
	})
	return current, ok
}

func (r *roundRepository) Archived(roomID string) []models.Round {
	var rounds []models.Round
	r.table.Read(func(l *ledger) {
		rounds = append([]models.Round(nil), l.archived[roomID]...)
	})
	return rounds
}
