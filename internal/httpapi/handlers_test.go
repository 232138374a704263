package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/repository/models"
	"github.com/godilite/support-recommender/internal/service"
	"github.com/godilite/support-recommender/internal/service/mocks"
	"github.com/godilite/support-recommender/internal/session"
	"github.com/godilite/support-recommender/internal/sessionstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T, store service.SessionStore, repo service.OutcomeRepository) *httptest.Server {
	t.Helper()
	if store == nil {
		store = sessionstore.NewMemory(0)
	}
	if repo == nil {
		repo = &mocks.MockOutcomeRepository{}
	}
	logger := zaptest.NewLogger(t)
	svc := service.NewRecommenderService(store, repo, zap.NewNop())
	srv := httptest.NewServer(NewRouter(NewHandlers(svc, logger), logger))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSessionLifecycle(t *testing.T) {
	var recorded []models.OutcomeRow
	repo := &mocks.MockOutcomeRepository{
		RecordOutcomeFunc: func(ctx context.Context, rows []models.OutcomeRow) error {
			recorded = append(recorded, rows...)
			return nil
		},
	}
	srv := newTestServer(t, nil, repo)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decode[service.SessionView](t, body)
	require.NotEmpty(t, view.ID)
	assert.Equal(t, "Q0", view.Prompt.Node)

	sessionURL := srv.URL + "/v1/sessions/" + view.ID

	steps := []answerRequest{
		{Node: "Q0", Choice: q.Yes},
		{Node: "Q1", Choice: q.ChoiceAcademic},
		{Node: "Q1_pref", Choice: q.ChoiceOneOnOne},
		{Node: "Q2A", Choice: q.Yes},
		{Node: "Q3A", Choice: q.ChoiceScheduled},
		{Node: "Q3A_follow", Choice: q.Yes},
		{Node: "Q4A", Choice: q.No},
	}
	for _, st := range steps {
		resp, body = do(t, http.MethodPost, sessionURL+"/answers", st)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}

	view = decode[service.SessionView](t, body)
	assert.True(t, view.Finished)
	assert.Equal(t, q.ResourceURL, view.ResourceURL)
	require.Len(t, view.Recommendations, 3)
	assert.Equal(t, "Peer Tutoring", view.Recommendations[0].Service)
	assert.Equal(t, 4, view.Recommendations[0].Score)
	assert.Equal(t, "Note Taking Services", view.Recommendations[1].Service)
	assert.Equal(t, 3, view.Recommendations[1].Score)
	assert.Equal(t, "Math & Writing Centre", view.Recommendations[2].Service)
	assert.Equal(t, 2, view.Recommendations[2].Score)
	assert.Len(t, recorded, 3)

	resp, body = do(t, http.MethodGet, sessionURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, view, decode[service.SessionView](t, body))

	resp, body = do(t, http.MethodPost, sessionURL+"/answers", answerRequest{Node: "Q4A", Choice: q.Yes})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "already finished")

	resp, body = do(t, http.MethodPost, sessionURL+"/restart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restarted := decode[service.SessionView](t, body)
	assert.False(t, restarted.Finished)
	assert.Equal(t, "Q0", restarted.Prompt.Node)
	assert.Empty(t, restarted.Trail)

	resp, _ = do(t, http.MethodDelete, sessionURL, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodGet, sessionURL, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"session not found"}`, string(body))
}

func TestAnswerValidation(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	_, body := do(t, http.MethodPost, srv.URL+"/v1/sessions", nil)
	id := decode[service.SessionView](t, body).ID
	answersURL := srv.URL + "/v1/sessions/" + id + "/answers"

	t.Run("malformed body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, answersURL, strings.NewReader("{not json"))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing choice", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, answersURL, map[string]string{"node": "Q0"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "node and choice are required")
	})

	t.Run("undeclared choice leaves session unchanged", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, answersURL, answerRequest{Node: "Q0", Choice: "Sometimes"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		resp, body := do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		view := decode[service.SessionView](t, body)
		assert.Equal(t, "Q0", view.Prompt.Node)
		assert.Empty(t, view.Trail)
	})

	t.Run("out of order node", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, answersURL, answerRequest{Node: "Q3", Choice: q.ChoiceGeneral})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unknown session", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/v1/sessions/nope/answers", answerRequest{Node: "Q0", Choice: q.Yes})

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestStorageFailure(t *testing.T) {
	store := &mocks.MockSessionStore{
		SaveFunc: func(ctx context.Context, id string, st session.State) error {
			return errors.New("redis: connection pool exhausted")
		},
	}
	srv := newTestServer(t, store, nil)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/sessions", nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"storage error"}`, string(body))
}

func TestCatalog(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/catalog", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cat := decode[service.Catalog](t, body)
	assert.Len(t, cat.Services, 7)
	assert.Len(t, cat.Questions, 11)
	assert.Equal(t, "Q0", cat.Questions[0].Node)
}

func TestRecommendationTally(t *testing.T) {
	var gotStart, gotEnd time.Time
	repo := &mocks.MockOutcomeRepository{
		GetServiceTallyFunc: func(ctx context.Context, start, end time.Time) (models.TallyResult, error) {
			gotStart, gotEnd = start, end
			return models.TallyResult{
				Sessions: 3,
				Services: []models.ServiceTallyRow{{Service: "PASS", Recommended: 3, RankedFirst: 2, AverageScore: 2}},
			}, nil
		},
	}
	srv := newTestServer(t, nil, repo)

	t.Run("date bounds", func(t *testing.T) {
		resp, body := do(t, http.MethodGet, srv.URL+"/v1/stats/recommendations?start=2025-01-01&end=2025-01-31", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		tally := decode[service.Tally](t, body)
		assert.Equal(t, int64(3), tally.Sessions)
		assert.Equal(t, "PASS", tally.Services[0].Service)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), gotStart)
		assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC), gotEnd)
	})

	t.Run("RFC 3339 bounds", func(t *testing.T) {
		resp, _ := do(t, http.MethodGet, srv.URL+"/v1/stats/recommendations?start=2025-01-01T08:00:00Z&end=2025-01-01T17:00:00Z", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, time.Date(2025, 1, 1, 17, 0, 0, 0, time.UTC), gotEnd.UTC())
	})

	t.Run("bad requests", func(t *testing.T) {
		tests := []struct {
			name  string
			query string
			want  string
		}{
			{"missing start", "?end=2025-01-31", "start: is required"},
			{"bad end", "?start=2025-01-01&end=soon", "end: must be RFC 3339 or YYYY-MM-DD"},
			{"reversed", "?start=2025-02-01&end=2025-01-01", "end date must be after start date"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, body := do(t, http.MethodGet, srv.URL+"/v1/stats/recommendations"+tt.query, nil)

				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Contains(t, string(body), tt.want)
			})
		}
	})
}

func TestRecommendationTally_NoOutcomes(t *testing.T) {
	repo := &mocks.MockOutcomeRepository{
		GetServiceTallyFunc: func(ctx context.Context, start, end time.Time) (models.TallyResult, error) {
			return models.TallyResult{}, nil
		},
	}
	srv := newTestServer(t, nil, repo)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/stats/recommendations?start=2025-01-01&end=2025-01-31", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "no outcomes found")
}

func TestNewHandlersPanicsOnNilService(t *testing.T) {
	assert.Panics(t, func() {
		NewHandlers(nil, zap.NewNop())
	})
}

func TestServerStartAndShutdown(t *testing.T) {
	svc := service.NewRecommenderService(sessionstore.NewMemory(0), &mocks.MockOutcomeRepository{}, zap.NewNop())
	srv, err := NewServer(NewRouter(NewHandlers(svc, nil), nil), WithPort(0), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	srv.Start()

	port := srv.Addr().(*net.TCPAddr).Port
	resp, body := do(t, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d/health", port), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
