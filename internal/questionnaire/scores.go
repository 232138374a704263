package questionnaire

import (
	"encoding/json"
	"fmt"
)

// ScoreEntry is one row of a ScoreTable.
type ScoreEntry struct {
	Service Service `json:"service"`
	Score   int     `json:"score"`
}

// ScoreTable accumulates per-service scores and remembers the order in which
// services first received points. The zero value is an empty table.
type ScoreTable struct {
	order  []Service
	values map[Service]int
}

// NewScoreTable returns an empty table.
func NewScoreTable() ScoreTable {
	return ScoreTable{}
}

// Add increments s by points. Non-positive increments are ignored so scores never decrease.
func (t *ScoreTable) Add(s Service, points int) {
	if points <= 0 {
		return
	}
	if t.values == nil {
		t.values = make(map[Service]int)
	}
	if _, ok := t.values[s]; !ok {
		t.order = append(t.order, s)
	}
	t.values[s] += points
}

// Apply adds every delta in order.
func (t *ScoreTable) Apply(deltas []ScoreDelta) {
	for _, d := range deltas {
		t.Add(d.Service, d.Points)
	}
}

// Get returns the score of s, 0 when absent.
func (t ScoreTable) Get(s Service) int {
	return t.values[s]
}

// Has reports whether s has a nonzero entry.
func (t ScoreTable) Has(s Service) bool {
	_, ok := t.values[s]
	return ok
}

// Len is the number of distinct services with a nonzero entry.
func (t ScoreTable) Len() int {
	return len(t.order)
}

// Entries returns the table in first-insertion order.
func (t ScoreTable) Entries() []ScoreEntry {
	out := make([]ScoreEntry, len(t.order))
	for i, s := range t.order {
		out[i] = ScoreEntry{Service: s, Score: t.values[s]}
	}
	return out
}

// Clone returns an independent copy.
func (t ScoreTable) Clone() ScoreTable {
	var c ScoreTable
	for _, s := range t.order {
		c.Add(s, t.values[s])
	}
	return c
}

// Equal reports whether both tables hold the same entries in the same order.
func (t ScoreTable) Equal(o ScoreTable) bool {
	if len(t.order) != len(o.order) {
		return false
	}
	for i, s := range t.order {
		if o.order[i] != s || o.values[s] != t.values[s] {
			return false
		}
	}
	return true
}

func (t ScoreTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}

func (t *ScoreTable) UnmarshalJSON(data []byte) error {
	var entries []ScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*t = ScoreTable{}
	for _, e := range entries {
		if !e.Service.Valid() {
			return fmt.Errorf("score table: unknown service %q", e.Service)
		}
		if e.Score <= 0 {
			return fmt.Errorf("score table: non-positive score %d for %q", e.Score, e.Service)
		}
		if t.Has(e.Service) {
			return fmt.Errorf("score table: duplicate service %q", e.Service)
		}
		t.Add(e.Service, e.Score)
	}
	return nil
}
