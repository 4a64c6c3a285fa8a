package repository

import "poker_web/internal/models"

// Repositories 擁有所有記憶體資料表。每張表各有一把鎖；
// 需要跨表原子性的操作 (開新回合、揭曉) 由這裡協調，
// 鎖的順序固定為 回合 -> 投票 -> 房間。
type Repositories struct {
	User    UserRepository
	Room    RoomRepository
	Round   RoundRepository
	Vote    VoteRepository
	Message MessageRepository

	rooms  *roomRepository
	rounds *roundRepository
	votes  *voteRepository
}

func NewRepositories() *Repositories {
	rooms := newRoomRepository()
	rounds := newRoundRepository()
	votes := newVoteRepository()

	return &Repositories{
		User:    newUserRepository(),
		Room:    rooms,
		Round:   rounds,
		Vote:    votes,
		Message: newMessageRepository(),
		rooms:   rooms,
		rounds:  rounds,
		votes:   votes,
	}
}

// RoundTransition 是開新回合後的結果
type RoundTransition struct {
	Current  models.CurrentRound
	Archived []models.Round
}

// StartRound 在同時持有回合與投票兩把寫鎖時完成：
// 封存上一回合 (若有) 與其票、安裝新回合、清空投票板。
func (r *Repositories) StartRound(roomID string, opts models.RoundOptions) (RoundTransition, error) {
	var (
		transition RoundTransition
		err        error
	)

	r.rounds.table.Write(func(l *ledger) {
		prev, hasPrev := l.current[roomID]
		if hasPrev && !prev.Flipped {
			err = models.ErrRoundNotDone
			return
		}

		// 持有回合寫鎖時清空投票板
		collected := r.votes.Drain(roomID)

		archived := l.archived[roomID]
		if hasPrev {
			archived = append(archived, models.Round{
				Name:    prev.Name,
				Votes:   collected,
				Options: prev.Options,
			})
			l.archived[roomID] = archived
		}

		current := models.NewCurrentRound(len(archived)+1, opts)
		l.current[roomID] = current

		transition = RoundTransition{
			Current:  current,
			Archived: append([]models.Round(nil), archived...),
		}
	})

	return transition, err
}

// EndVote 檢查所有成員都已投票後將目前回合翻開
func (r *Repositories) EndVote(roomID string) (models.CurrentRound, error) {
	var (
		current models.CurrentRound
		err     error
	)

	r.rounds.table.Write(func(l *ledger) {
		round, ok := l.current[roomID]
		if !ok {
			err = models.ErrNoCurrentRound
			return
		}

		var votes map[string]models.Vote
		r.votes.table.View(func(board map[string]map[string]models.Vote) {
			votes = board[roomID]
			if len(votes) == 0 {
				err = models.ErrNoVotes
				return
			}
			for _, member := range r.rooms.Members(roomID) {
				if _, voted := votes[member]; !voted {
					err = models.ErrIncompleteVotes
					return
				}
			}
		})
		if err != nil {
			return
		}

		round.Flipped = true
		l.current[roomID] = round
		current = round
	})

	return current, err
}

// RoundState 是某房間回合相關資料的一致快照
type RoundState struct {
	Current  *models.CurrentRound
	Archived []models.Round
	Votes    []models.Vote
}

// Snapshot 同時持有回合與投票的讀鎖，避免新回合名稱配上舊的票
func (r *Repositories) Snapshot(roomID string) RoundState {
	var state RoundState

	r.rounds.table.Read(func(l *ledger) {
		if current, ok := l.current[roomID]; ok {
			state.Current = &current
		}
		state.Archived = append([]models.Round(nil), l.archived[roomID]...)
		r.votes.table.View(func(board map[string]map[string]models.Vote) {
			state.Votes = votesOf(board[roomID])
		})
	})

	return state
}
