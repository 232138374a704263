// Package session holds the state of one questionnaire run. A State is owned by
// exactly one caller; it holds no external resources and is not safe for
// concurrent use.
package session

import (
	"errors"
	"fmt"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/recommend"
)

var (
	// ErrFinished is returned when answering after the questionnaire ended.
	ErrFinished = fmt.Errorf("%w: questionnaire already finished", q.ErrInvalidTransition)
	// ErrNodeMismatch is returned when the answer targets a node other than the current one.
	ErrNodeMismatch = fmt.Errorf("%w: node is not the current question", q.ErrInvalidTransition)
)

// State is the mutable state of one questionnaire session.
type State struct {
	Current q.NodeID      `json:"current"`
	Trail   q.AnswerTrail `json:"trail"`
	Scores  q.ScoreTable  `json:"scores"`
}

// New returns a state positioned at the first question.
func New() State {
	return State{Current: q.Start}
}

// Finished reports whether the questionnaire reached its terminal node.
func (s State) Finished() bool {
	return s.Current == q.Terminal
}

// Answer applies the choice for node. On error the state is left unchanged.
func (s *State) Answer(node q.NodeID, choice string) error {
	if s.Finished() {
		return ErrFinished
	}
	if node != s.Current {
		return fmt.Errorf("%w: got %s, current is %s", ErrNodeMismatch, node, s.Current)
	}

	out, err := q.Transition(node, choice)
	if err != nil {
		return err
	}
	if err := s.Trail.Record(node, choice); err != nil {
		return fmt.Errorf("%w: %v", q.ErrInvalidTransition, err)
	}
	s.Scores.Apply(out.Deltas)
	s.Current = out.Next
	return nil
}

// Restart discards all answers and scores.
func (s *State) Restart() {
	*s = New()
}

// Prompt returns the current question, or false once finished.
func (s State) Prompt() (q.Node, bool) {
	if s.Finished() {
		return q.Node{}, false
	}
	return q.Lookup(s.Current)
}

// Results returns the ranked recommendations once finished.
func (s State) Results() ([]recommend.Ranked, bool) {
	if !s.Finished() {
		return nil, false
	}
	return recommend.Finalize(s.Scores, s.Trail), true
}

// Clone returns a copy that shares nothing with s.
func (s State) Clone() State {
	return State{Current: s.Current, Trail: s.Trail.Clone(), Scores: s.Scores.Clone()}
}

// Equal reports whether two states are identical.
func (s State) Equal(o State) bool {
	return s.Current == o.Current && s.Trail.Equal(o.Trail) && s.Scores.Equal(o.Scores)
}

// Validate checks a state restored from storage.
func (s State) Validate() error {
	if s.Current != q.Terminal && !s.Current.Valid() {
		return fmt.Errorf("unknown current node %q", s.Current)
	}
	replay := New()
	for _, a := range s.Trail.Answers() {
		if err := replay.Answer(a.Node, a.Choice); err != nil {
			return fmt.Errorf("trail does not replay: %w", err)
		}
	}
	if !replay.Equal(s) {
		return errors.New("trail does not match current node and scores")
	}
	return nil
}
