package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/georrous6/bitonic-sort-mpi/pkg/utils"
)

// Ledger holds the four phase timers for one rank's sort call. Unlike a
// hidden module-level global, a Ledger is an explicit value snapshotted
// from a phaseTimer once DistributedBitonicSort returns: nothing about
// timing lives outside the call that produced it.
type Ledger struct {
	Seed     time.Duration
	Exchange time.Duration
	Elbow    time.Duration
	Total    time.Duration
}

const (
	phaseSeed         = "seed"
	phaseExchangeStem = "exchange/"
	phaseElbowStem    = "elbow/"
)

// newPhaseTimer creates the utils.Timer one DistributedBitonicSort call
// accumulates its phase durations into. clk lets tests substitute a
// utils.MockClock for deterministic durations; production callers pass nil
// to get utils.NewRealClock.
func newPhaseTimer(clk utils.Clock) *utils.Timer {
	opts := []utils.TimerOption{utils.WithEnabled(true)}
	if clk != nil {
		opts = append(opts, utils.WithClock(clk))
	}
	return utils.NewTimer("distributed-bitonic-sort", opts...)
}

// exchangePhase and elbowPhase name one stage/step's slice of a repeating
// phase so utils.Timer's per-name Start/Stop bookkeeping doesn't collide
// across the stage loop; snapshotLedger sums every slice back together.
func exchangePhase(stage, step int) string {
	return phaseExchangeStem + strconv.Itoa(stage) + "/" + strconv.Itoa(step)
}

func elbowPhase(stage int) string {
	return phaseElbowStem + strconv.Itoa(stage)
}

// snapshotLedger reads the accumulated seed/exchange/elbow/total durations
// off timer into a Ledger value.
func snapshotLedger(timer *utils.Timer) Ledger {
	var ledger Ledger
	for _, p := range timer.GetPhases() {
		switch {
		case p.Name == phaseSeed:
			ledger.Seed += p.Duration
		case strings.HasPrefix(p.Name, phaseExchangeStem):
			ledger.Exchange += p.Duration
		case strings.HasPrefix(p.Name, phaseElbowStem):
			ledger.Elbow += p.Duration
		}
	}
	ledger.Total = timer.TotalDuration()
	return ledger
}
