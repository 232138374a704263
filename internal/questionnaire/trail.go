package questionnaire

import (
	"encoding/json"
	"fmt"
)

// Answer is one recorded step of an AnswerTrail.
type Answer struct {
	Node   NodeID `json:"node"`
	Choice string `json:"choice"`
}

// AnswerTrail records the chosen label per visited node in answer order.
// The zero value is an empty trail.
type AnswerTrail struct {
	answers []Answer
}

// Record appends the answer for node. A node can be recorded only once.
func (t *AnswerTrail) Record(node NodeID, choice string) error {
	if _, ok := t.Get(node); ok {
		return fmt.Errorf("node %s already answered", node)
	}
	t.answers = append(t.answers, Answer{Node: node, Choice: choice})
	return nil
}

// Get returns the choice recorded for node.
func (t AnswerTrail) Get(node NodeID) (string, bool) {
	for _, a := range t.answers {
		if a.Node == node {
			return a.Choice, true
		}
	}
	return "", false
}

// Is reports whether node was answered with choice.
func (t AnswerTrail) Is(node NodeID, choice string) bool {
	got, ok := t.Get(node)
	return ok && got == choice
}

func (t AnswerTrail) Len() int {
	return len(t.answers)
}

// Answers returns the trail in answer order.
func (t AnswerTrail) Answers() []Answer {
	out := make([]Answer, len(t.answers))
	copy(out, t.answers)
	return out
}

// Clone returns an independent copy.
func (t AnswerTrail) Clone() AnswerTrail {
	return AnswerTrail{answers: t.Answers()}
}

// Equal reports whether both trails hold the same answers in the same order.
func (t AnswerTrail) Equal(o AnswerTrail) bool {
	if len(t.answers) != len(o.answers) {
		return false
	}
	for i := range t.answers {
		if t.answers[i] != o.answers[i] {
			return false
		}
	}
	return true
}

func (t AnswerTrail) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Answers())
}

func (t *AnswerTrail) UnmarshalJSON(data []byte) error {
	var answers []Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return err
	}
	*t = AnswerTrail{}
	for _, a := range answers {
		if err := t.Record(a.Node, a.Choice); err != nil {
			return fmt.Errorf("answer trail: %w", err)
		}
	}
	return nil
}
