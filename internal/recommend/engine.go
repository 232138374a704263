// Package recommend turns a possibly sparse score table into exactly three
// ranked support services.
package recommend

import (
	"sort"

	q "github.com/godilite/support-recommender/internal/questionnaire"
)

// TopN is the number of services every finalized session recommends.
const TopN = 3

// Ranked is one recommended service with its final score.
type Ranked struct {
	Rank    int       `json:"rank"`
	Service q.Service `json:"service"`
	Score   int       `json:"score"`
}

// Finalize ranks the top three services for a finished questionnaire.
// The input table is never modified. Finalize cannot fail.
func Finalize(scores q.ScoreTable, trail q.AnswerTrail) []Ranked {
	counts := Adjust(scores, trail)

	entries := counts.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	n := min(TopN, len(entries))
	out := make([]Ranked, n)
	for i := 0; i < n; i++ {
		out[i] = Ranked{Rank: i + 1, Service: entries[i].Service, Score: entries[i].Score}
	}
	return out
}

// Adjust returns a copy of scores with the answer-aware nudges, backfill and
// universal padding applied, before ranking.
func Adjust(scores q.ScoreTable, trail q.AnswerTrail) q.ScoreTable {
	counts := scores.Clone()

	// These repeat increments already applied by the graph for the same answers; both count.
	if trail.Is(q.Q0, q.Yes) {
		counts.Add(q.NoteTaking, 1)
	}
	if trail.Is(q.Q1, q.ChoiceLearningSkills) {
		counts.Add(q.LearningSkillsWorkshops, 1)
		counts.Add(q.LearningSupportDropIn, 1)
	}
	if trail.Is(q.Q1, q.ChoiceAcademic) {
		switch {
		case trail.Is(q.Q1Pref, q.ChoiceOneOnOne):
			counts.Add(q.PeerTutoring, 1)
		case trail.Is(q.Q1Pref, q.ChoiceGroup):
			counts.Add(q.PASS, 1)
		}
	}

	if counts.Len() < TopN {
		for _, s := range PathPriority(trail) {
			if !counts.Has(s) {
				counts.Add(s, 1)
			}
			if counts.Len() >= TopN {
				break
			}
		}
	}

	for _, s := range universal {
		if counts.Len() >= TopN {
			break
		}
		counts.Add(s, 1)
	}

	return counts
}
