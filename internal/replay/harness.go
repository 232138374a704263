package replay

import (
	"fmt"
	"strings"

	"github.com/godilite/support-recommender/internal/recommend"
	"github.com/godilite/support-recommender/internal/session"
	"go.uber.org/zap"
)

// Result is the outcome of replaying one scenario.
type Result struct {
	Name            string
	Recommendations []recommend.Ranked
	Err             error
	Mismatch        string
}

// Passed reports whether the scenario finished and matched its expectation.
func (r Result) Passed() bool {
	return r.Err == nil && r.Mismatch == ""
}

// Summary is the aggregate of a replay run.
type Summary struct {
	Results []Result
	Passed  int
	Failed  int
}

// OK reports whether every scenario passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Run replays every scenario through a fresh session.
func Run(f *Fixture, logger *zap.Logger) Summary {
	if logger == nil {
		logger = zap.NewNop()
	}

	var sum Summary
	for _, sc := range f.Scenarios {
		res := replay(sc)
		if res.Passed() {
			sum.Passed++
			logger.Info("scenario passed",
				zap.String("scenario", sc.Name),
				zap.Any("recommendations", res.Recommendations))
		} else {
			sum.Failed++
			logger.Warn("scenario failed",
				zap.String("scenario", sc.Name),
				zap.String("mismatch", res.Mismatch),
				zap.Error(res.Err))
		}
		sum.Results = append(sum.Results, res)
	}
	return sum
}

func replay(sc Scenario) Result {
	res := Result{Name: sc.Name}

	st := session.New()
	for i, step := range sc.Answers {
		if err := st.Answer(step.Node, step.Choice); err != nil {
			res.Err = fmt.Errorf("answer %d (%s): %w", i+1, step.Node, err)
			return res
		}
	}

	ranked, ok := st.Results()
	if !ok {
		res.Err = fmt.Errorf("questionnaire not finished, stopped at %s", st.Current)
		return res
	}
	res.Recommendations = ranked

	if sc.Expect == nil {
		return res
	}
	got := make([]string, len(ranked))
	for i, r := range ranked {
		got[i] = r.Service.String()
	}
	if strings.Join(got, "|") != strings.Join(sc.Expect, "|") {
		res.Mismatch = fmt.Sprintf("got [%s], want [%s]", strings.Join(got, ", "), strings.Join(sc.Expect, ", "))
	}
	return res
}
