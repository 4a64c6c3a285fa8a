package models

import "strconv"

// 預設的候選分數，與前端的牌組一致
var DefaultCandidates = []string{"coffee", "unknown", "infinite", "1", "2", "4", "8", "16"}

const DefaultRoundType = "pick one"

// RoundOptions 描述一個回合接受什麼樣的票
type RoundOptions struct {
	Candidates []string `json:"candidates"`
	MaxVotes   int      `json:"maxVotes"`
	Anonymous  bool     `json:"anonymous"`
	Type       string   `json:"type"`
}

// WithDefaults 補上未指定的欄位
func (o RoundOptions) WithDefaults() RoundOptions {
	if len(o.Candidates) == 0 {
		o.Candidates = append([]string(nil), DefaultCandidates...)
	}
	if o.MaxVotes <= 0 {
		o.MaxVotes = 1
	}
	if o.Type == "" {
		o.Type = DefaultRoundType
	}
	return o
}

// CurrentRound 是房間中唯一可變的進行中回合
type CurrentRound struct {
	Name    string
	Flipped bool
	Options RoundOptions
}

type CurrentRoundDTO struct {
	Name    string       `json:"name"`
	Flipped bool         `json:"flipped"`
	Options RoundOptions `json:"options"`
}

func NewCurrentRound(number int, opts RoundOptions) CurrentRound {
	return CurrentRound{
		Name:    RoundName(number),
		Options: opts.WithDefaults(),
	}
}

// RoundName 回合從 1 開始編號
func RoundName(number int) string {
	return "Round #" + strconv.Itoa(number)
}

func (r CurrentRound) DTO() CurrentRoundDTO {
	return CurrentRoundDTO{
		Name:    r.Name,
		Flipped: r.Flipped,
		Options: r.Options,
	}
}

// Round 是已封存的回合與當時收集到的票
type Round struct {
	Name    string
	Votes   []Vote
	Options RoundOptions
}

type RoundDTO struct {
	Name    string       `json:"name"`
	Votes   []VoteDTO    `json:"votes"`
	Options RoundOptions `json:"options"`
}

// DTO 匿名回合不揭露投票者
func (r Round) DTO() RoundDTO {
	votes := VoteDTOs(r.Votes)
	if r.Options.Anonymous {
		for i := range votes {
			votes[i].UserID = ""
		}
	}
	return RoundDTO{
		Name:    r.Name,
		Votes:   votes,
		Options: r.Options,
	}
}

func RoundDTOs(rounds []Round) []RoundDTO {
	dtos := make([]RoundDTO, 0, len(rounds))
	for _, r := range rounds {
		dtos = append(dtos, r.DTO())
	}
	return dtos
}
