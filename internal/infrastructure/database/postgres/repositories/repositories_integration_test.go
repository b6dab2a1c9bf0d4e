//go:build integration

package repositories_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/tendergate/tendergate/internal/config"
	"github.com/tendergate/tendergate/internal/domain/accumulation"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres/repositories"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

func setupTestDB(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		tcpostgres.WithDatabase("tendergate_test"),
		tcpostgres.WithUsername("tendergate"),
		tcpostgres.WithPassword("tendergate"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "tendergate",
		Password:        "tendergate",
		Name:            "tendergate_test",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}

	conn, err := postgres.NewConnection(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, thisFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "..", "..", "migrations")
	require.NoError(t, conn.RunMigrations(migrationsDir))

	return conn
}

func insertTender(t *testing.T, conn *postgres.Connection) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := conn.DB().Exec(
		`INSERT INTO tenders (id, title, category, issuing_body) VALUES ($1, 'מכרז בדיקה', 'infrastructure', 'נתיבי ישראל')`,
		id)
	require.NoError(t, err)
	return id
}

func TestConditionRepoRoundTrip(t *testing.T) {
	conn := setupTestDB(t)
	repo := repositories.NewConditionRepo(conn, logging.NewNopLogger())
	ctx := context.Background()

	tenderID := insertTender(t, conn)
	years := 5.0
	cond := &condition.GateCondition{
		TenderID:      tenderID,
		Ordinal:       1,
		Text:          "ניסיון של 5 שנים לפחות",
		Category:      condition.CategoryExperience,
		Mandatory:     true,
		RequiredYears: &years,
	}
	require.NoError(t, repo.Save(ctx, cond))

	loaded, err := repo.FindByID(ctx, cond.ID)
	require.NoError(t, err)
	assert.Equal(t, cond.Text, loaded.Text)
	assert.Equal(t, condition.StatusUnknown, loaded.Status)
	require.NotNil(t, loaded.RequiredYears)
	assert.Equal(t, 5.0, *loaded.RequiredYears)

	require.NoError(t, repo.UpdateStatus(ctx, cond.ID, condition.StatusMeets))
	loaded, err = repo.FindByID(ctx, cond.ID)
	require.NoError(t, err)
	assert.Equal(t, condition.StatusMeets, loaded.Status)

	list, err := repo.FindByTender(ctx, tenderID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeleteByTender(ctx, tenderID))
	_, err = repo.FindByID(ctx, cond.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestConditionRepoNotFound(t *testing.T) {
	conn := setupTestDB(t)
	repo := repositories.NewConditionRepo(conn, logging.NewNopLogger())

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, errors.IsNotFound(err))

	err = repo.UpdateStatus(context.Background(), uuid.New(), condition.StatusMeets)
	assert.True(t, errors.IsNotFound(err))
}

func TestItemRepoDedupConstraint(t *testing.T) {
	conn := setupTestDB(t)
	repo := repositories.NewItemRepo(conn, logging.NewNopLogger())
	ctx := context.Background()

	companyID := uuid.New()
	item := &accumulation.Item{
		CompanyID:    companyID,
		ItemType:     "revenue_year",
		Payload:      map[string]interface{}{"year": 2025, "amount": 1000000},
		DedupHash:    "h1",
		RelevantDate: time.Now().AddDate(0, -2, 0),
	}
	require.NoError(t, repo.Save(ctx, item))

	// Same (company, type, hash): silently ignored.
	dup := &accumulation.Item{
		CompanyID: companyID,
		ItemType:  "revenue_year",
		Payload:   map[string]interface{}{"year": 2025, "amount": 1000000},
		DedupHash: "h1",
	}
	require.NoError(t, repo.Save(ctx, dup))

	items, err := repo.FindByCompany(ctx, companyID, "revenue_year")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRuleRepoRoundTrip(t *testing.T) {
	conn := setupTestDB(t)
	repo := repositories.NewRuleRepo(conn, logging.NewNopLogger())
	ctx := context.Background()

	rule := &accumulation.Rule{
		Name:             "annual-revenue",
		EntityType:       "revenue_year",
		Method:           accumulation.MethodSum,
		ValueField:       "amount",
		DedupFields:      []string{"year"},
		TimeWindowMonths: 36,
	}
	require.NoError(t, repo.Save(ctx, rule))

	loaded, err := repo.FindByName(ctx, "annual-revenue")
	require.NoError(t, err)
	assert.Equal(t, rule.DedupFields, loaded.DedupFields)
	assert.Equal(t, 36, loaded.TimeWindowMonths)

	_, err = repo.FindByName(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))

	rules, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}
