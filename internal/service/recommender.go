package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/recommend"
	"github.com/godilite/support-recommender/internal/repository/models"
	"github.com/godilite/support-recommender/internal/session"
	"github.com/godilite/support-recommender/internal/sessionstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	storeTimeout = 1 * time.Second
	dbTimeout    = 1 * time.Second
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoOutcomes      = errors.New("no outcomes found")
	ErrStorageFailure  = errors.New("storage failure")
)

// RecommenderService runs questionnaire sessions on behalf of a shell.
type RecommenderService struct {
	store    SessionStore
	outcomes OutcomeRepository
	logger   *zap.Logger
	newID    func() string
	now      func() time.Time
}

// NewRecommenderService creates a new RecommenderService instance.
func NewRecommenderService(store SessionStore, outcomes OutcomeRepository, logger *zap.Logger) *RecommenderService {
	if store == nil {
		panic("store must not be nil")
	}
	if outcomes == nil {
		panic("outcomes must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &RecommenderService{
		store:    store,
		outcomes: outcomes,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Start opens a new session positioned at the first question.
func (s *RecommenderService) Start(ctx context.Context) (SessionView, error) {
	id := s.newID()
	st := session.New()

	if err := s.save(ctx, id, st); err != nil {
		return SessionView{}, err
	}

	s.logger.Info("session started", zap.String("session_id", id))
	return buildView(id, st), nil
}

// Get returns the current view of a session without changing it.
func (s *RecommenderService) Get(ctx context.Context, id string) (SessionView, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return buildView(id, st), nil
}

// Answer applies one answer. An invalid transition leaves the stored session untouched.
func (s *RecommenderService) Answer(ctx context.Context, id string, node q.NodeID, choice string) (SessionView, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return SessionView{}, err
	}

	if err := st.Answer(node, choice); err != nil {
		s.logger.Warn("answer rejected",
			zap.String("session_id", id),
			zap.String("node", string(node)),
			zap.String("choice", choice),
			zap.Error(err))
		return SessionView{}, err
	}

	if err := s.save(ctx, id, st); err != nil {
		return SessionView{}, err
	}

	view := buildView(id, st)
	if st.Finished() {
		s.logger.Info("session finished",
			zap.String("session_id", id),
			zap.Int("answers", st.Trail.Len()),
			zap.Any("recommendations", view.Recommendations))
		s.recordOutcome(ctx, id, view.Recommendations)
	}
	return view, nil
}

// Restart discards the session's answers and scores, keeping its id.
func (s *RecommenderService) Restart(ctx context.Context, id string) (SessionView, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return SessionView{}, err
	}

	st.Restart()
	if err := s.save(ctx, id, st); err != nil {
		return SessionView{}, err
	}

	s.logger.Info("session restarted", zap.String("session_id", id))
	return buildView(id, st), nil
}

// Discard ends a session and forgets it. Discarding an unknown id is not an error.
func (s *RecommenderService) Discard(ctx context.Context, id string) error {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.Delete(storeCtx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("session discarded", zap.String("session_id", id))
	return nil
}

// Catalog exports the static services and questions.
func (s *RecommenderService) Catalog() Catalog {
	all := q.Services()
	services := make([]ServiceInfo, len(all))
	for i, svc := range all {
		services[i] = ServiceInfo{Name: svc.String(), Description: svc.Description()}
	}

	nodes := q.Nodes()
	questions := make([]QuestionInfo, len(nodes))
	for i, n := range nodes {
		questions[i] = QuestionInfo{Node: n.ID.String(), Question: n.Prompt, Choices: n.Labels()}
	}

	return Catalog{Services: services, Questions: questions, ResourceURL: q.ResourceURL}
}

// RecommendationTally reports how often each service was recommended by
// sessions finished in [start, end].
func (s *RecommenderService) RecommendationTally(ctx context.Context, start, end time.Time) (Tally, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	result, err := s.outcomes.GetServiceTally(dbCtx, start, end)
	if err != nil {
		return Tally{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if result.Sessions == 0 {
		return Tally{}, ErrNoOutcomes
	}

	tally := Tally{Sessions: result.Sessions, Services: make([]ServiceTally, len(result.Services))}
	for i, row := range result.Services {
		tally.Services[i] = ServiceTally{
			Service:      row.Service,
			Recommended:  row.Recommended,
			RankedFirst:  row.RankedFirst,
			AverageScore: row.AverageScore,
		}
	}

	s.logger.Info("fetched recommendation tally",
		zap.Int64("sessions", tally.Sessions),
		zap.Time("start", start),
		zap.Time("end", end))

	return tally, nil
}

func (s *RecommenderService) load(ctx context.Context, id string) (session.State, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	st, err := s.store.Load(storeCtx, id)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return session.State{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return session.State{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return st, nil
}

func (s *RecommenderService) save(ctx context.Context, id string, st session.State) error {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.Save(storeCtx, id, st); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

// recordOutcome appends to the outcome log. Failures are logged only: the
// student already has their results.
func (s *RecommenderService) recordOutcome(ctx context.Context, id string, recs []Recommendation) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	at := s.now()
	rows := make([]models.OutcomeRow, len(recs))
	for i, r := range recs {
		rows[i] = models.OutcomeRow{
			SessionID: id,
			Rank:      r.Rank,
			Service:   r.Service,
			Score:     r.Score,
			CreatedAt: at,
		}
	}

	if err := s.outcomes.RecordOutcome(dbCtx, rows); err != nil {
		s.logger.Error("failed to record outcome", zap.String("session_id", id), zap.Error(err))
	}
}

func buildView(id string, st session.State) SessionView {
	view := SessionView{
		ID:        id,
		Finished:  st.Finished(),
		Trail:     st.Trail.Answers(),
		RawScores: st.Scores.Entries(),
	}

	if n, ok := st.Prompt(); ok {
		view.Prompt = &Prompt{Node: n.ID.String(), Question: n.Prompt, Choices: n.Labels()}
	}

	if ranked, ok := st.Results(); ok {
		view.Recommendations = toRecommendations(ranked)
		view.ResourceURL = q.ResourceURL
	}

	return view
}

func toRecommendations(ranked []recommend.Ranked) []Recommendation {
	out := make([]Recommendation, len(ranked))
	for i, r := range ranked {
		out[i] = Recommendation{
			Rank:        r.Rank,
			Service:     r.Service.String(),
			Description: r.Service.Description(),
			Score:       r.Score,
		}
	}
	return out
}
