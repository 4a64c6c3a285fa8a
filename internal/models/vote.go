package models

import "sort"

// Vote 是某位使用者在目前回合的一張票
type Vote struct {
	UserID string
	Score  Score
}

type VoteDTO struct {
	UserID string `json:"userID"`
	Score  string `json:"score"`
}

func (v Vote) DTO() VoteDTO {
	return VoteDTO{
		UserID: v.UserID,
		Score:  v.Score.String(),
	}
}

// VoteDTOs 依 userID 排序，讓輸出穩定
func VoteDTOs(votes []Vote) []VoteDTO {
	dtos := make([]VoteDTO, 0, len(votes))
	for _, v := range votes {
		dtos = append(dtos, v.DTO())
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].UserID < dtos[j].UserID })
	return dtos
}
