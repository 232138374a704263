package recommend

import q "github.com/godilite/support-recommender/internal/questionnaire"

var (
	academicOneOnOne = []q.Service{
		q.PeerTutoring, q.MathWritingCentre, q.LearningSupportDropIn,
		q.LearningSkillsWorkshops, q.PASS, q.STEMSpecialist,
	}
	academicGroup = []q.Service{
		q.PASS, q.PeerTutoring, q.LearningSkillsWorkshops,
		q.LearningSupportDropIn, q.MathWritingCentre, q.STEMSpecialist,
	}
	skillsPath = []q.Service{
		q.LearningSkillsWorkshops, q.LearningSupportDropIn, q.PeerTutoring,
		q.PASS, q.MathWritingCentre, q.STEMSpecialist,
	}
	universal = []q.Service{
		q.PeerTutoring, q.LearningSkillsWorkshops, q.LearningSupportDropIn,
		q.MathWritingCentre, q.PASS, q.STEMSpecialist, q.NoteTaking,
	}
)

// PathPriority returns the backfill order implied by the answers so far.
// Note Taking leads when the student has an ALS accommodation. The path list
// follows Q1; a trail that never reached Q1 has no path list, which leaves
// padding to UniversalPriority.
func PathPriority(trail q.AnswerTrail) []q.Service {
	var prio []q.Service
	if trail.Is(q.Q0, q.Yes) {
		prio = append(prio, q.NoteTaking)
	}

	q1, answered := trail.Get(q.Q1)
	switch {
	case !answered:
	case q1 == q.ChoiceAcademic && trail.Is(q.Q1Pref, q.ChoiceOneOnOne):
		prio = append(prio, academicOneOnOne...)
	case q1 == q.ChoiceAcademic:
		prio = append(prio, academicGroup...)
	default:
		prio = append(prio, skillsPath...)
	}

	return dedupe(prio)
}

// UniversalPriority is the answer-independent padding order.
func UniversalPriority() []q.Service {
	out := make([]q.Service, len(universal))
	copy(out, universal)
	return out
}

func dedupe(in []q.Service) []q.Service {
	seen := make(map[q.Service]bool, len(in))
	out := make([]q.Service, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
