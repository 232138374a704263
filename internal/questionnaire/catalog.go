package questionnaire

// Service is one of the fixed support offerings that can be recommended.
type Service string

const (
	NoteTaking              Service = "Note Taking Services"
	LearningSkillsWorkshops Service = "Learning Skills Workshops"
	LearningSupportDropIn   Service = "Learning Support Drop-In"
	PeerTutoring            Service = "Peer Tutoring"
	MathWritingCentre       Service = "Math & Writing Centre"
	PASS                    Service = "PASS"
	STEMSpecialist          Service = "STEM Specialist"
)

// ResourceURL is shown once alongside every set of results.
const ResourceURL = "https://humber.ca/learningresources/"

var services = []Service{
	NoteTaking,
	LearningSkillsWorkshops,
	LearningSupportDropIn,
	PeerTutoring,
	MathWritingCentre,
	PASS,
	STEMSpecialist,
}

var descriptions = map[Service]string{
	NoteTaking:              "Note creation for ALS-registered students via PALS (by referral).",
	LearningSkillsWorkshops: "Workshops on time mgmt, test prep, memory, presentations, group work, APA, integrity, etc.",
	LearningSupportDropIn:   "One-on-one drop-in for non-course-specific skills: focus, strategies, digital learning tips.",
	PeerTutoring:            "1:1 (or small group) course-specific support; in-person or virtual via Upswing.",
	MathWritingCentre:       "Specialized tutors for math, writing, ESL, physics, stats, calculus; North & Lakeshore.",
	PASS:                    "Peer Assisted Study Sessions—structured, weekly, peer-led review for tough courses.",
	STEMSpecialist:          "Advanced STEM help when needs exceed general tutoring support (last-resort escalation).",
}

// Services returns the static catalog in display order.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// Valid reports whether s belongs to the catalog.
func (s Service) Valid() bool {
	_, ok := descriptions[s]
	return ok
}

// Description returns the human-readable blurb for s, or "" for unknown services.
func (s Service) Description() string {
	return descriptions[s]
}

func (s Service) String() string {
	return string(s)
}
