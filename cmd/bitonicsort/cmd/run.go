package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/georrous6/bitonic-sort-mpi/internal/engine"
	"github.com/georrous6/bitonic-sort-mpi/internal/repository"
	"github.com/georrous6/bitonic-sort-mpi/internal/report"
	"github.com/georrous6/bitonic-sort-mpi/internal/run"
	"github.com/georrous6/bitonic-sort-mpi/internal/storage"
	apperr "github.com/georrous6/bitonic-sort-mpi/pkg/errors"
)

var (
	noValidation   bool
	timingFile     string
	timingBackend  string
	reportStorage  string
	depthHint      int
)

// runCmd is the driver: positional `p q s` with
// P=2^p, N=2^q, B=2^s.
var runCmd = &cobra.Command{
	Use:   "run <p> <q> <s>",
	Short: "Run a distributed bitonic sort over 2^p ranks of 2^q elements",
	Args:  cobra.ExactArgs(3),
	RunE:  runSort,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&noValidation, "no-validation", false, "Skip the post-sort validation pass")
	runCmd.Flags().StringVar(&timingFile, "timing-file", "", "Append this run's timing line to a plain-text file")
	runCmd.Flags().StringVar(&timingBackend, "timing-backend", "file", "Timing persistence backend: file, sqlite, postgres, mysql")
	runCmd.Flags().StringVar(&reportStorage, "report-storage", "", "Archive a run report via this storage backend: local, cos (empty disables)")
	runCmd.Flags().IntVar(&depthHint, "depth", 0, "Recursion-depth hint for the seed sort's chunking heuristic")
}

func runSort(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	p, q, s, err := parseExponents(args)
	if err != nil {
		return apperr.Wrap(apperr.CodeConfigError, "invalid positional arguments", err)
	}

	params := engine.Params{P: 1 << p, N: 1 << q, B: 1 << s}
	if err := params.Validate(); err != nil {
		return err
	}

	runUUID := uuid.NewString()
	log.Info("=== Distributed Bitonic Sort ===")
	log.Info("Run UUID:   %s", runUUID)
	log.Info("Processes:  %d (p=%d)", params.P, p)
	log.Info("Elements:   %d (q=%d)", params.N, q)
	log.Info("Batch size: %d (s=%d)", params.B, s)

	cfg := GetConfig()
	opts := run.Options{
		Params:    params,
		Seed:      seedFromUUID(runUUID),
		Bound:     cfg.Run.Bound,
		Validate:  !noValidation,
		DepthHint: depthHint,
	}

	log.Info("Starting sort...")
	outcome, err := run.Run(cmd.Context(), opts)
	if err != nil && !apperr.IsInvariantError(err) {
		log.Error("Sort failed: %v", err)
		return err
	}
	if err != nil {
		log.Error("Validation failed: %v", err)
	} else {
		log.Info("Sort completed successfully.")
	}

	if err := persistTiming(cmd.Context(), runUUID, p, q, s, outcome); err != nil {
		log.Warn("Failed to persist timing: %v", err)
	}

	if reportStorage != "" {
		if err := persistReport(cmd.Context(), runUUID, opts, outcome); err != nil {
			log.Warn("Failed to persist run report: %v", err)
		}
	}

	if err != nil {
		os.Exit(1)
	}
	return nil
}

// seedFromUUID derives a 64-bit run seed from the run's UUID so that the
// seed is reproducible from the UUID alone without pulling in a second
// source of randomness.
func seedFromUUID(runUUID string) uint64 {
	id, err := uuid.Parse(runUUID)
	if err != nil {
		return 0
	}
	return binary.BigEndian.Uint64(id[:8])
}

func parseExponents(args []string) (p, q, s int, err error) {
	vals := make([]int, 3)
	for i, a := range args {
		v, convErr := strconv.Atoi(a)
		if convErr != nil || v < 0 {
			return 0, 0, 0, fmt.Errorf("argument %q must be a non-negative integer exponent", a)
		}
		vals[i] = v
	}
	if vals[2] > vals[1] {
		return 0, 0, 0, fmt.Errorf("s (%d) must not exceed q (%d)", vals[2], vals[1])
	}
	return vals[0], vals[1], vals[2], nil
}

// persistTiming writes this run's timing line via the selected backend.
// The four timer values recorded are the slowest rank's per-phase
// durations, since every rank's wall-clock contributes to the run's
// observed latency.
func persistTiming(ctx context.Context, runUUID string, p, q, s int, outcome run.Outcome) error {
	agg := aggregateLedger(outcome.Ledgers)

	if timingBackend == "file" {
		if timingFile == "" {
			return nil
		}
		f, err := os.OpenFile(timingFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()

		line := fmt.Sprintf("%d %d %d %f %f %f %f\n",
			p, q, s,
			agg.Seed.Seconds(), agg.Exchange.Seconds(), agg.Elbow.Seconds(), agg.Total.Seconds())
		_, err = f.WriteString(line)
		return err
	}

	cfg := GetConfig()
	dbCfg := &repository.DBConfig{
		Type:     timingBackend,
		Host:     cfg.Timing.Host,
		Port:     cfg.Timing.Port,
		Database: cfg.Timing.Database,
		User:     cfg.Timing.User,
		Password: cfg.Timing.Password,
		MaxConns: cfg.Timing.MaxConns,
	}

	db, err := repository.NewGormDB(dbCfg)
	if err != nil {
		return err
	}
	repos := repository.NewRepositories(db)
	defer repos.Close()

	rec := &repository.RunRecord{
		RunUUID:    runUUID,
		Processes:  1 << p,
		Elements:   1 << q,
		BatchSize:  1 << s,
		SeedMs:     float64(agg.Seed.Milliseconds()),
		ExchangeMs: float64(agg.Exchange.Milliseconds()),
		ElbowMs:    float64(agg.Elbow.Milliseconds()),
		TotalMs:    float64(agg.Total.Milliseconds()),
		Valid:      outcome.Validation.OK,
		Offense:    outcome.Validation.Offense,
	}
	return repos.Timing.SaveRun(ctx, rec)
}

func aggregateLedger(ledgers []engine.Ledger) engine.Ledger {
	var agg engine.Ledger
	for _, l := range ledgers {
		if l.Seed > agg.Seed {
			agg.Seed = l.Seed
		}
		if l.Exchange > agg.Exchange {
			agg.Exchange = l.Exchange
		}
		if l.Elbow > agg.Elbow {
			agg.Elbow = l.Elbow
		}
		if l.Total > agg.Total {
			agg.Total = l.Total
		}
	}
	return agg
}

func persistReport(ctx context.Context, runUUID string, opts run.Options, outcome run.Outcome) error {
	cfg := GetConfig()
	reportCfg := cfg.Report
	reportCfg.Type = reportStorage

	backend, err := storage.NewStorage(&reportCfg)
	if err != nil {
		return err
	}

	rep := &report.Report{
		RunUUID:    runUUID,
		Processes:  opts.Params.P,
		Elements:   opts.Params.N,
		BatchSize:  opts.Params.B,
		Seed:       opts.Seed,
		Validation: outcome.Validation,
	}
	for r, ledger := range outcome.Ledgers {
		rep.Ledgers = append(rep.Ledgers, report.RankLedger{Rank: r, Ledger: ledger})
	}

	store := report.NewStore(backend)
	return store.Save(ctx, rep)
}
