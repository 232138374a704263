package models

import "time"

// OutcomeRow is one ranked recommendation of a finished session.
type OutcomeRow struct {
	SessionID string
	Rank      int
	Service   string
	Score     int
	CreatedAt time.Time
}

type ServiceTallyRow struct {
	Service      string
	Recommended  int64
	RankedFirst  int64
	AverageScore float64
}

type TallyResult struct {
	Sessions int64
	Services []ServiceTallyRow
}
