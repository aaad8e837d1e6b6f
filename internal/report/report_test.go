package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georrous6/bitonic-sort-mpi/internal/engine"
	"github.com/georrous6/bitonic-sort-mpi/internal/storage"
	"github.com/georrous6/bitonic-sort-mpi/internal/validate"
)

func TestStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewLocalStorage(filepath.Join(dir, "reports"))
	require.NoError(t, err)

	store := NewStore(backend)
	ctx := context.Background()

	rep := &Report{
		RunUUID:   "run-abc",
		Processes: 4,
		Elements:  256,
		BatchSize: 16,
		Seed:      7,
		Ledgers: []RankLedger{
			{Rank: 0, Ledger: engine.Ledger{Total: 10}},
			{Rank: 1, Ledger: engine.Ledger{Total: 12}},
		},
		Validation: validate.Result{OK: true},
	}

	require.NoError(t, store.Save(ctx, rep))

	got, err := store.Load(ctx, "run-abc")
	require.NoError(t, err)

	assert.Equal(t, rep.RunUUID, got.RunUUID)
	assert.Equal(t, rep.Processes, got.Processes)
	assert.Len(t, got.Ledgers, 2)
	assert.True(t, got.Validation.OK)
}

func TestStore_Load_MissingRun(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	store := NewStore(backend)
	_, err = store.Load(context.Background(), "missing")
	assert.Error(t, err)
}
