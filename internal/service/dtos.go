package service

import q "github.com/godilite/support-recommender/internal/questionnaire"

type Prompt struct {
	Node     string   `json:"node"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

type Recommendation struct {
	Rank        int    `json:"rank"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Score       int    `json:"score"`
}

// SessionView is what a shell renders after every action: the current prompt
// while active, the ranked results once finished.
type SessionView struct {
	ID              string           `json:"id"`
	Finished        bool             `json:"finished"`
	Prompt          *Prompt          `json:"prompt,omitempty"`
	Trail           []q.Answer       `json:"trail"`
	RawScores       []q.ScoreEntry   `json:"raw_scores"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	ResourceURL     string           `json:"resource_url,omitempty"`
}

type ServiceInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type QuestionInfo struct {
	Node     string   `json:"node"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

type Catalog struct {
	Services    []ServiceInfo  `json:"services"`
	Questions   []QuestionInfo `json:"questions"`
	ResourceURL string         `json:"resource_url"`
}

type ServiceTally struct {
	Service      string  `json:"service"`
	Recommended  int64   `json:"recommended"`
	RankedFirst  int64   `json:"ranked_first"`
	AverageScore float64 `json:"average_score"`
}

type Tally struct {
	Sessions int64          `json:"sessions"`
	Services []ServiceTally `json:"services"`
}
