// Package report archives the outcome of one distributed sort run as a
// single compressed JSON artifact in the run-report object store.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/georrous6/bitonic-sort-mpi/internal/engine"
	"github.com/georrous6/bitonic-sort-mpi/internal/storage"
	"github.com/georrous6/bitonic-sort-mpi/internal/validate"
	"github.com/georrous6/bitonic-sort-mpi/pkg/compression"
)

// RankLedger pairs a rank's ID with the phase timings it accumulated.
type RankLedger struct {
	Rank   int           `json:"rank"`
	Ledger engine.Ledger `json:"ledger"`
}

// Report is the archived summary of one run: its topology, every rank's
// timing ledger, and the outcome of the advisory post-sort validation.
type Report struct {
	RunUUID    string          `json:"run_uuid"`
	Processes  int             `json:"processes"`
	Elements   int             `json:"elements"`
	BatchSize  int             `json:"batch_size"`
	Seed       uint64          `json:"seed"`
	Ledgers    []RankLedger    `json:"ledgers"`
	Validation validate.Result `json:"validation"`
}

// Store archives Reports as compressed JSON (compression.Default: zstd,
// gzip only if zstd cannot be initialised) under one key prefix of a
// storage.Storage backend.
type Store struct {
	backend    storage.Storage
	compressor compression.Compressor
}

// NewStore creates a Store writing through the given storage backend,
// compressing every report with the default compressor.
func NewStore(backend storage.Storage) *Store {
	return &Store{backend: backend, compressor: compression.Default()}
}

// Save marshals rep to JSON, compresses it, and uploads it under a key
// derived from the run UUID.
func (s *Store) Save(ctx context.Context, rep *Report) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	compressed, err := s.compressor.Compress(raw)
	if err != nil {
		return fmt.Errorf("failed to compress report: %w", err)
	}

	key := s.key(rep.RunUUID)
	if err := s.backend.Upload(ctx, key, bytes.NewReader(compressed)); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	return nil
}

// Load retrieves and decompresses the report archived under runUUID.
func (s *Store) Load(ctx context.Context, runUUID string) (*Report, error) {
	rc, err := s.backend.Download(ctx, s.key(runUUID))
	if err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	defer rc.Close()

	compressed, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	raw, err := s.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress report: %w", err)
	}

	var rep Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &rep, nil
}

func (s *Store) key(runUUID string) string {
	return fmt.Sprintf("runs/%s.json.gz", runUUID)
}
