package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&RunRecord{}))

	return db
}

func TestGormTimingRepository_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTimingRepository(db)
	ctx := context.Background()

	rec := &RunRecord{
		RunUUID:    "run-1",
		Processes:  4,
		Elements:   1024,
		BatchSize:  64,
		Seed:       42,
		SeedMs:     1.5,
		ExchangeMs: 2.5,
		ElbowMs:    0.5,
		TotalMs:    4.5,
		Valid:      true,
	}

	require.NoError(t, repo.SaveRun(ctx, rec))

	got, err := repo.GetRunByUUID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Processes, got.Processes)
	assert.Equal(t, rec.Elements, got.Elements)
	assert.True(t, got.Valid)
}

func TestGormTimingRepository_GetRunByUUID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTimingRepository(db)
	ctx := context.Background()

	_, err := repo.GetRunByUUID(ctx, "missing")
	assert.Error(t, err)
}

func TestGormTimingRepository_ListRunsByTopology(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTimingRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := &RunRecord{
			RunUUID:   fmt.Sprintf("run-%d", i),
			Processes: 4,
			Elements:  1024,
		}
		require.NoError(t, repo.SaveRun(ctx, rec))
	}
	other := &RunRecord{RunUUID: "run-other", Processes: 8, Elements: 2048}
	require.NoError(t, repo.SaveRun(ctx, other))

	recs, err := repo.ListRunsByTopology(ctx, 4, 1024, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}
