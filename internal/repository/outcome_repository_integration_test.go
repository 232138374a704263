package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/godilite/support-recommender/internal/repository"
	"github.com/godilite/support-recommender/internal/repository/models"
	dbbuilder "github.com/godilite/support-recommender/pkg/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
		dbbuilder.WithMigrations(repository.Migrations()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func outcome(session string, at time.Time, services ...string) []models.OutcomeRow {
	rows := make([]models.OutcomeRow, len(services))
	for i, s := range services {
		rows[i] = models.OutcomeRow{
			SessionID: session,
			Rank:      i + 1,
			Service:   s,
			Score:     len(services) - i,
			CreatedAt: at,
		}
	}
	return rows
}

func TestOutcomeRepository_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewOutcomeRepository(db)

	base := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordOutcome(ctx, outcome("s1", base, "Peer Tutoring", "PASS", "Learning Skills Workshops")))
	require.NoError(t, repo.RecordOutcome(ctx, outcome("s2", base.Add(time.Hour), "PASS", "Peer Tutoring", "STEM Specialist")))
	require.NoError(t, repo.RecordOutcome(ctx, outcome("s3", base.Add(72*time.Hour), "Note Taking Services", "Peer Tutoring", "PASS")))

	t.Run("GetServiceTally within window", func(t *testing.T) {
		result, err := repo.GetServiceTally(ctx, base.Add(-time.Minute), base.Add(2*time.Hour))
		require.NoError(t, err)
		require.Equal(t, int64(2), result.Sessions)
		require.Len(t, result.Services, 4)

		byName := make(map[string]models.ServiceTallyRow)
		for _, row := range result.Services {
			byName[row.Service] = row
		}
		require.Equal(t, int64(2), byName["Peer Tutoring"].Recommended)
		require.Equal(t, int64(1), byName["Peer Tutoring"].RankedFirst)
		require.Equal(t, int64(2), byName["PASS"].Recommended)
		require.Equal(t, int64(1), byName["PASS"].RankedFirst)
		require.InDelta(t, 2.5, byName["PASS"].AverageScore, 1e-9)
		require.Equal(t, int64(0), byName["STEM Specialist"].RankedFirst)
	})

	t.Run("GetServiceTally ordering", func(t *testing.T) {
		result, err := repo.GetServiceTally(ctx, base.Add(-time.Minute), base.Add(96*time.Hour))
		require.NoError(t, err)
		require.Equal(t, int64(3), result.Sessions)
		require.Equal(t, "PASS", result.Services[0].Service)
		require.Equal(t, "Peer Tutoring", result.Services[1].Service)
	})

	t.Run("GetServiceTally empty window", func(t *testing.T) {
		result, err := repo.GetServiceTally(ctx, base.Add(-48*time.Hour), base.Add(-24*time.Hour))
		require.NoError(t, err)
		require.Zero(t, result.Sessions)
		require.Empty(t, result.Services)
	})

	t.Run("RecordOutcome rejects empty rows", func(t *testing.T) {
		require.Error(t, repo.RecordOutcome(ctx, nil))
	})
}

func TestOutcomeRepository_RollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewOutcomeRepository(db)

	_, err := db.Exec(`CREATE TRIGGER reject_stem BEFORE INSERT ON recommendation_outcomes
		WHEN NEW.service = 'STEM Specialist'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	at := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	err = repo.RecordOutcome(ctx, outcome("s1", at, "PASS", "Peer Tutoring", "STEM Specialist"))
	require.Error(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM recommendation_outcomes`).Scan(&n))
	require.Zero(t, n)
}

func TestOutcomeRepository_RepeatedFinishIsLoggedOnce(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewOutcomeRepository(db)

	at := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	rows := outcome("s1", at, "PASS", "Peer Tutoring", "Learning Skills Workshops")

	require.NoError(t, repo.RecordOutcome(ctx, rows))
	require.NoError(t, repo.RecordOutcome(ctx, rows))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM recommendation_outcomes`).Scan(&n))
	require.Equal(t, 3, n)

	result, err := repo.GetServiceTally(ctx, at.Add(-time.Minute), at.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Sessions)
	for _, row := range result.Services {
		require.Equal(t, int64(1), row.Recommended, row.Service)
	}
}

func TestMigrations_Rerun(t *testing.T) {
	db := setupTestDB(t)

	for _, stmt := range repository.Migrations() {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}
