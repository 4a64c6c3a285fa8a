package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

// VoteRepository 是每個房間、每位使用者最多一張票的投票板，不做任何驗證
type VoteRepository interface {
	List(roomID string) []models.Vote
	// Upsert 後寫入者勝出
	Upsert(roomID string, vote models.Vote) []models.Vote
	// Drain 取出並清空房間的票
	Drain(roomID string) []models.Vote
}

type voteRepository struct {
	table *storage.Table[string, map[string]models.Vote]
}

func newVoteRepository() *voteRepository {
	return &voteRepository{
		table: storage.NewTable[string, map[string]models.Vote](),
	}
}

func (r *voteRepository) List(roomID string) []models.Vote {
	var votes []models.Vote
	r.table.View(func(board map[string]map[string]models.Vote) {
		votes = votesOf(board[roomID])
	})
	return votes
}

// Upsert 回傳寫入後整個房間的票，與寫入在同一把鎖內取得
func (r *voteRepository) Upsert(roomID string, vote models.Vote) []models.Vote {
	var votes []models.Vote
	r.table.Update(func(board map[string]map[string]models.Vote) {
		roomVotes, ok := board[roomID]
		if !ok {
			roomVotes = make(map[string]models.Vote)
			board[roomID] = roomVotes
		}
		roomVotes[vote.UserID] = vote
		votes = votesOf(roomVotes)
	})
	return votes
}

func (r *voteRepository) Drain(roomID string) []models.Vote {
	var votes []models.Vote
	r.table.Update(func(board map[string]map[string]models.Vote) {
		votes = votesOf(board[roomID])
		delete(board, roomID)
	})
	return votes
}

func votesOf(roomVotes map[string]models.Vote) []models.Vote {
	votes := make([]models.Vote, 0, len(roomVotes))
	for _, v := range roomVotes {
		votes = append(votes, v)
	}
	return votes
}
