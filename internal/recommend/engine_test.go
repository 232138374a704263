package recommend

import (
	"testing"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	node   q.NodeID
	choice string
}

// play drives the graph through steps and returns the accrued table and trail.
func play(t testing.TB, steps ...step) (q.ScoreTable, q.AnswerTrail) {
	t.Helper()

	var scores q.ScoreTable
	var trail q.AnswerTrail
	current := q.Start
	for _, s := range steps {
		require.Equal(t, current, s.node, "answer out of order")
		out, err := q.Transition(s.node, s.choice)
		require.NoError(t, err)
		require.NoError(t, trail.Record(s.node, s.choice))
		scores.Apply(out.Deltas)
		current = out.Next
	}
	return scores, trail
}

func services(ranked []Ranked) []q.Service {
	out := make([]q.Service, len(ranked))
	for i, r := range ranked {
		out[i] = r.Service
	}
	return out
}

func TestFinalize_Scenarios(t *testing.T) {
	t.Run("academic one-on-one with STEM escalation", func(t *testing.T) {
		scores, trail := play(t,
			step{q.Q0, q.Yes},
			step{q.Q1, q.ChoiceAcademic},
			step{q.Q1Pref, q.ChoiceOneOnOne},
			step{q.Q2A, q.Yes},
			step{q.Q3A, q.ChoiceScheduled},
			step{q.Q3AFollow, q.Yes},
			step{q.Q4A, q.No},
		)

		assert.Equal(t, []q.ScoreEntry{
			{Service: q.NoteTaking, Score: 2},
			{Service: q.PeerTutoring, Score: 3},
			{Service: q.MathWritingCentre, Score: 2},
			{Service: q.STEMSpecialist, Score: 2},
		}, scores.Entries())

		got := Finalize(scores, trail)
		assert.Equal(t, []Ranked{
			{Rank: 1, Service: q.PeerTutoring, Score: 4},
			{Rank: 2, Service: q.NoteTaking, Score: 3},
			{Rank: 3, Service: q.MathWritingCentre, Score: 2},
		}, got)
	})

	t.Run("skills path backfills peer tutoring", func(t *testing.T) {
		scores, trail := play(t,
			step{q.Q0, q.No},
			step{q.Q1, q.ChoiceLearningSkills},
			step{q.Q3, q.ChoiceTimeManagement},
		)

		got := Finalize(scores, trail)
		assert.Equal(t, []Ranked{
			{Rank: 1, Service: q.LearningSkillsWorkshops, Score: 5},
			{Rank: 2, Service: q.LearningSupportDropIn, Score: 2},
			{Rank: 3, Service: q.PeerTutoring, Score: 1},
		}, got)
	})

	t.Run("academic group without PASS backfills workshops", func(t *testing.T) {
		scores, trail := play(t,
			step{q.Q0, q.No},
			step{q.Q1, q.ChoiceAcademic},
			step{q.Q1Pref, q.ChoiceGroup},
			step{q.Q2B, q.No},
			step{q.Q3B, q.No},
		)

		got := Finalize(scores, trail)
		assert.Equal(t, []Ranked{
			{Rank: 1, Service: q.PASS, Score: 2},
			{Rank: 2, Service: q.PeerTutoring, Score: 2},
			{Rank: 3, Service: q.LearningSkillsWorkshops, Score: 1},
		}, got)
	})

	t.Run("empty trail pads from universal order", func(t *testing.T) {
		got := Finalize(q.ScoreTable{}, q.AnswerTrail{})
		assert.Equal(t, []Ranked{
			{Rank: 1, Service: q.PeerTutoring, Score: 1},
			{Rank: 2, Service: q.LearningSkillsWorkshops, Score: 1},
			{Rank: 3, Service: q.LearningSupportDropIn, Score: 1},
		}, got)
	})

	t.Run("accommodation only leads with note taking", func(t *testing.T) {
		var trail q.AnswerTrail
		require.NoError(t, trail.Record(q.Q0, q.Yes))

		got := Finalize(q.ScoreTable{}, trail)
		assert.Equal(t, []q.Service{q.NoteTaking, q.PeerTutoring, q.LearningSkillsWorkshops}, services(got))
		for _, r := range got {
			assert.Equal(t, 1, r.Score)
		}
	})

	t.Run("universal padding increments existing entries", func(t *testing.T) {
		var scores q.ScoreTable
		scores.Add(q.PeerTutoring, 5)

		got := Finalize(scores, q.AnswerTrail{})
		assert.Equal(t, []Ranked{
			{Rank: 1, Service: q.PeerTutoring, Score: 6},
			{Rank: 2, Service: q.LearningSkillsWorkshops, Score: 1},
			{Rank: 3, Service: q.LearningSupportDropIn, Score: 1},
		}, got)
	})
}

func TestFinalize_DoesNotMutateInput(t *testing.T) {
	scores, trail := play(t,
		step{q.Q0, q.Yes},
		step{q.Q1, q.ChoiceLearningSkills},
		step{q.Q3, q.ChoiceGeneral},
	)
	before := scores.Clone()

	_ = Finalize(scores, trail)

	assert.True(t, before.Equal(scores))
}

func TestFinalize_TiesKeepInsertionOrder(t *testing.T) {
	var scores q.ScoreTable
	scores.Add(q.STEMSpecialist, 2)
	scores.Add(q.PASS, 2)
	scores.Add(q.NoteTaking, 2)
	scores.Add(q.PeerTutoring, 2)

	got := Finalize(scores, q.AnswerTrail{})
	assert.Equal(t, []q.Service{q.STEMSpecialist, q.PASS, q.NoteTaking}, services(got))
}

// walk enumerates every complete path through the graph.
func walk(t *testing.T, id q.NodeID, prefix []step, visit func([]step)) {
	if id == q.Terminal {
		visit(prefix)
		return
	}
	n, ok := q.Lookup(id)
	require.True(t, ok)
	for _, label := range n.Labels() {
		out, err := q.Transition(id, label)
		require.NoError(t, err)
		next := append(append([]step(nil), prefix...), step{id, label})
		walk(t, out.Next, next, visit)
	}
}

func TestFinalize_AllTerminalStates(t *testing.T) {
	paths := 0
	walk(t, q.Start, nil, func(steps []step) {
		paths++
		scores, trail := play(t, steps...)

		first := Finalize(scores, trail)
		require.Len(t, first, TopN)

		seen := make(map[q.Service]bool)
		for i, r := range first {
			assert.Equal(t, i+1, r.Rank)
			assert.GreaterOrEqual(t, r.Score, 1)
			assert.True(t, r.Service.Valid())
			assert.False(t, seen[r.Service], "duplicate %s", r.Service)
			seen[r.Service] = true
			if i > 0 {
				assert.LessOrEqual(t, r.Score, first[i-1].Score)
			}
		}

		replayScores, replayTrail := play(t, steps...)
		assert.Equal(t, first, Finalize(replayScores, replayTrail))
	})
	assert.Equal(t, 36, paths)
}

func TestAdjust_NeverDecreases(t *testing.T) {
	walk(t, q.Start, nil, func(steps []step) {
		scores, trail := play(t, steps...)
		adjusted := Adjust(scores, trail)
		for _, e := range scores.Entries() {
			assert.GreaterOrEqual(t, adjusted.Get(e.Service), e.Score)
		}
	})
}

func TestPathPriority(t *testing.T) {
	cases := []struct {
		name  string
		steps []step
		want  []q.Service
	}{
		{
			name: "no answers",
			want: []q.Service{},
		},
		{
			name:  "accommodation before Q1",
			steps: []step{{q.Q0, q.Yes}},
			want:  []q.Service{q.NoteTaking},
		},
		{
			name:  "skills path",
			steps: []step{{q.Q0, q.No}, {q.Q1, q.ChoiceLearningSkills}},
			want:  []q.Service{q.LearningSkillsWorkshops, q.LearningSupportDropIn, q.PeerTutoring, q.PASS, q.MathWritingCentre, q.STEMSpecialist},
		},
		{
			name:  "academic one-on-one with accommodation",
			steps: []step{{q.Q0, q.Yes}, {q.Q1, q.ChoiceAcademic}, {q.Q1Pref, q.ChoiceOneOnOne}},
			want:  []q.Service{q.NoteTaking, q.PeerTutoring, q.MathWritingCentre, q.LearningSupportDropIn, q.LearningSkillsWorkshops, q.PASS, q.STEMSpecialist},
		},
		{
			name:  "academic before preference uses group order",
			steps: []step{{q.Q0, q.No}, {q.Q1, q.ChoiceAcademic}},
			want:  []q.Service{q.PASS, q.PeerTutoring, q.LearningSkillsWorkshops, q.LearningSupportDropIn, q.MathWritingCentre, q.STEMSpecialist},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, trail := play(t, tc.steps...)
			assert.Equal(t, tc.want, PathPriority(trail))
		})
	}
}

func TestUniversalPriority_IsCopy(t *testing.T) {
	u := UniversalPriority()
	u[0] = q.NoteTaking
	assert.Equal(t, q.PeerTutoring, UniversalPriority()[0])
}
