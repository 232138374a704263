package questionnaire

import (
	"errors"
	"fmt"
)

// NodeID identifies a question in the fixed graph.
type NodeID string

const (
	Q0        NodeID = "Q0"
	Q1        NodeID = "Q1"
	Q1Pref    NodeID = "Q1_pref"
	Q2A       NodeID = "Q2A"
	Q3A       NodeID = "Q3A"
	Q3AFollow NodeID = "Q3A_follow"
	Q4A       NodeID = "Q4A"
	Q2B       NodeID = "Q2B"
	Q3B       NodeID = "Q3B"
	Q3BFollow NodeID = "Q3B_follow"
	Q3        NodeID = "Q3"

	// Terminal ends the questionnaire. It is never a valid transition source.
	Terminal NodeID = "TERMINAL"
)

// Start is the first question of every session.
const Start = Q0

// Choice labels referenced outside the graph table.
const (
	Yes = "Yes"
	No  = "No"

	ChoiceAcademic       = "Academic/content-specific help"
	ChoiceLearningSkills = "Learning skills / study strategies"

	ChoiceOneOnOne = "One-on-one"
	ChoiceGroup    = "Group"

	ChoiceScheduled = "Scheduled one-on-one"
	ChoiceDropIn    = "Drop-in"

	ChoiceTimeManagement = "Time management, stress, memory, or presentations"
	ChoiceGeneral        = "General strategies or digital learning tips"
)

// ErrInvalidTransition is returned for an unknown node or an undeclared choice.
var ErrInvalidTransition = errors.New("invalid transition")

// ScoreDelta is an additive score increment applied on a transition.
type ScoreDelta struct {
	Service Service
	Points  int
}

// Choice is one declared answer of a node together with its transition.
type Choice struct {
	Label  string
	Deltas []ScoreDelta
	Next   NodeID
}

// Node is a single question step.
type Node struct {
	ID      NodeID
	Prompt  string
	Choices []Choice
}

// Labels returns the ordered choice labels of the node.
func (n Node) Labels() []string {
	out := make([]string, len(n.Choices))
	for i, c := range n.Choices {
		out[i] = c.Label
	}
	return out
}

func (n Node) choice(label string) (Choice, bool) {
	for _, c := range n.Choices {
		if c.Label == label {
			return c, true
		}
	}
	return Choice{}, false
}

// Outcome is the result of a transition.
type Outcome struct {
	Deltas []ScoreDelta
	Next   NodeID
}

// Terminal reports whether the transition ended the questionnaire.
func (o Outcome) Terminal() bool {
	return o.Next == Terminal
}

func delta(s Service, points int) ScoreDelta {
	return ScoreDelta{Service: s, Points: points}
}

// Weights: eligibility and direct subject matches score +2/+3, soft preferences +1.
var nodes = []Node{
	{
		ID:     Q0,
		Prompt: "Do you have an ALS-approved accommodation for note-taking?",
		Choices: []Choice{
			{Label: Yes, Deltas: []ScoreDelta{delta(NoteTaking, 2)}, Next: Q1},
			{Label: No, Next: Q1},
		},
	},
	{
		ID:     Q1,
		Prompt: "What type of support do you need?",
		Choices: []Choice{
			{Label: ChoiceAcademic, Next: Q1Pref},
			{Label: ChoiceLearningSkills, Deltas: []ScoreDelta{delta(LearningSkillsWorkshops, 1), delta(LearningSupportDropIn, 1)}, Next: Q3},
		},
	},
	{
		ID:     Q1Pref,
		Prompt: "When receiving academic help, do you prefer one-on-one or group sessions?",
		Choices: []Choice{
			{Label: ChoiceOneOnOne, Deltas: []ScoreDelta{delta(PeerTutoring, 1)}, Next: Q2A},
			{Label: ChoiceGroup, Deltas: []ScoreDelta{delta(PASS, 1)}, Next: Q2B},
		},
	},
	{
		ID:     Q2A,
		Prompt: "Do you struggle with specific subjects like Math, Science, or Writing?",
		Choices: []Choice{
			{Label: Yes, Deltas: []ScoreDelta{delta(PeerTutoring, 2), delta(MathWritingCentre, 2)}, Next: Q3A},
			{Label: No, Next: Q4A},
		},
	},
	{
		ID:     Q3A,
		Prompt: "Would you prefer scheduled one-on-one sessions or drop-in advice?",
		Choices: []Choice{
			{Label: ChoiceScheduled, Next: Q3AFollow},
			{Label: ChoiceDropIn, Deltas: []ScoreDelta{delta(LearningSupportDropIn, 2)}, Next: Q4A},
		},
	},
	{
		ID:     Q3AFollow,
		Prompt: "Do you need specialized STEM support beyond what Math/Writing tutors can provide?",
		Choices: []Choice{
			{Label: Yes, Deltas: []ScoreDelta{delta(STEMSpecialist, 2)}, Next: Q4A},
			{Label: No, Next: Q4A},
		},
	},
	{
		ID:     Q4A,
		Prompt: "Would you also like support for study skills (time mgmt, memory, presentations, test prep)?",
		Choices: []Choice{
			{Label: Yes, Next: Q3},
			{Label: No, Next: Terminal},
		},
	},
	{
		ID:     Q2B,
		Prompt: "Would you like structured, peer-led study sessions for your course (PASS)?",
		Choices: []Choice{
			{Label: Yes, Deltas: []ScoreDelta{delta(PASS, 3)}, Next: Q3BFollow},
			{Label: No, Next: Q3B},
		},
	},
	{
		ID:     Q3B,
		Prompt: "Would you like help with group projects, communication, or presentations?",
		Choices: []Choice{
			{Label: Yes, Deltas: []ScoreDelta{delta(LearningSkillsWorkshops, 2)}, Next: Terminal},
			{Label: No, Deltas: []ScoreDelta{delta(PeerTutoring, 2)}, Next: Terminal},
		},
	},
	{
		ID:     Q3BFollow,
		Prompt: "Would you also like skills support for presentations, test prep, or time management?",
		Choices: []Choice{
			{Label: Yes, Deltas: []ScoreDelta{delta(LearningSkillsWorkshops, 1)}, Next: Terminal},
			{Label: No, Next: Terminal},
		},
	},
	{
		ID:     Q3,
		Prompt: "Which skills do you want to improve?",
		Choices: []Choice{
			{Label: ChoiceTimeManagement, Deltas: []ScoreDelta{delta(LearningSkillsWorkshops, 3)}, Next: Terminal},
			{Label: ChoiceGeneral, Deltas: []ScoreDelta{delta(LearningSupportDropIn, 3)}, Next: Terminal},
		},
	},
}

var index = func() map[NodeID]int {
	m := make(map[NodeID]int, len(nodes))
	for i, n := range nodes {
		m[n.ID] = i
	}
	return m
}()

// Nodes returns the static question catalog in definition order.
func Nodes() []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

// Lookup returns the node with the given id.
func Lookup(id NodeID) (Node, bool) {
	i, ok := index[id]
	if !ok {
		return Node{}, false
	}
	return nodes[i], true
}

// Valid reports whether id names a question node. Terminal is not a question.
func (id NodeID) Valid() bool {
	_, ok := index[id]
	return ok
}

func (id NodeID) String() string {
	return string(id)
}

// Transition resolves the chosen answer at node id into its score deltas and next node.
func Transition(id NodeID, choice string) (Outcome, error) {
	n, ok := Lookup(id)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: unknown node %q", ErrInvalidTransition, id)
	}
	c, ok := n.choice(choice)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: node %s has no choice %q", ErrInvalidTransition, id, choice)
	}
	deltas := make([]ScoreDelta, len(c.Deltas))
	copy(deltas, c.Deltas)
	return Outcome{Deltas: deltas, Next: c.Next}, nil
}

// Validate checks that every target exists, every node is reachable from Start,
// every delta is positive and names a catalog service, and no path revisits a node.
func Validate() error {
	for _, n := range nodes {
		if len(n.Choices) == 0 {
			return fmt.Errorf("node %s declares no choices", n.ID)
		}
		seen := make(map[string]bool, len(n.Choices))
		for _, c := range n.Choices {
			if seen[c.Label] {
				return fmt.Errorf("node %s declares choice %q twice", n.ID, c.Label)
			}
			seen[c.Label] = true
			if c.Next != Terminal && !c.Next.Valid() {
				return fmt.Errorf("node %s choice %q targets unknown node %q", n.ID, c.Label, c.Next)
			}
			for _, d := range c.Deltas {
				if !d.Service.Valid() {
					return fmt.Errorf("node %s choice %q scores unknown service %q", n.ID, c.Label, d.Service)
				}
				if d.Points <= 0 {
					return fmt.Errorf("node %s choice %q has non-positive delta %d", n.ID, c.Label, d.Points)
				}
			}
		}
	}

	reached := make(map[NodeID]bool, len(nodes))
	var walk func(id NodeID, onPath map[NodeID]bool) error
	walk = func(id NodeID, onPath map[NodeID]bool) error {
		if id == Terminal {
			return nil
		}
		if onPath[id] {
			return fmt.Errorf("cycle through node %s", id)
		}
		reached[id] = true
		onPath[id] = true
		defer delete(onPath, id)

		n, _ := Lookup(id)
		for _, c := range n.Choices {
			if err := walk(c.Next, onPath); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(Start, make(map[NodeID]bool)); err != nil {
		return err
	}
	for _, n := range nodes {
		if !reached[n.ID] {
			return fmt.Errorf("node %s is unreachable from %s", n.ID, Start)
		}
	}
	return nil
}
