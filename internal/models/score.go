package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScoreKind 列舉所有合法的分數種類
type ScoreKind int

const (
	ScoreNumber ScoreKind = iota
	ScoreInfinite
	ScoreCoffee
	ScoreUnknown
	ScoreStartIdea
	ScoreStopIdea
	ScoreContinueIdea
)

// Score 是一張票的內容。Number 只在 ScoreNumber 時有效，
// Text 只在三種 idea 時有效。
type Score struct {
	Kind   ScoreKind
	Number uint8
	Text   string
}

// scoreSyntax 描述非數字分數的文字寫法；新增種類只需要在 grammar 加一行
type scoreSyntax struct {
	kind  ScoreKind
	token string
	idea  bool // "<token>: <text>"
}

const ideaSeparator = ": "

var grammar = []scoreSyntax{
	{kind: ScoreInfinite, token: "infinite"},
	{kind: ScoreCoffee, token: "coffee"},
	{kind: ScoreUnknown, token: "unknown"},
	{kind: ScoreStartIdea, token: "start", idea: true},
	{kind: ScoreStopIdea, token: "stop", idea: true},
	{kind: ScoreContinueIdea, token: "continue", idea: true},
}

func NumberScore(n uint8) Score {
	return Score{Kind: ScoreNumber, Number: n}
}

// ParseScore 依 grammar 解析分數字串
func ParseScore(s string) (Score, error) {
	// 數字可帶一個前導 "+"
	if n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 8); err == nil {
		return NumberScore(uint8(n)), nil
	}

	head, text, hasText := strings.Cut(s, ideaSeparator)
	for _, syntax := range grammar {
		switch {
		case !syntax.idea && s == syntax.token:
			return Score{Kind: syntax.kind}, nil
		case syntax.idea && hasText && head == syntax.token:
			return Score{Kind: syntax.kind, Text: text}, nil
		}
	}

	return Score{}, fmt.Errorf("%w: unknown variant %q", ErrInvalidScore, s)
}

func (s Score) String() string {
	if s.Kind == ScoreNumber {
		return strconv.Itoa(int(s.Number))
	}
	for _, syntax := range grammar {
		if syntax.kind != s.Kind {
			continue
		}
		if syntax.idea {
			return syntax.token + ideaSeparator + s.Text
		}
		return syntax.token
	}
	return "unknown"
}

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Score) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseScore(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
