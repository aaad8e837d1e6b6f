package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georrous6/bitonic-sort-mpi/pkg/utils"
)

func TestSnapshotLedger_AccumulatesRepeatedPhaseNames(t *testing.T) {
	clk := utils.NewMockClock(time.Unix(0, 0))
	timer := newPhaseTimer(clk)

	advanceAndStop := func(pt *utils.PhaseTimer, d time.Duration) {
		clk.Advance(d)
		pt.Stop()
	}

	seedTiming := timer.Start(phaseSeed)
	advanceAndStop(seedTiming, 10*time.Millisecond)

	for stage := 1; stage <= 2; stage++ {
		for step := stage - 1; step >= 0; step-- {
			exchangeTiming := timer.Start(exchangePhase(stage, step))
			advanceAndStop(exchangeTiming, 5*time.Millisecond)
		}
		elbowTiming := timer.Start(elbowPhase(stage))
		advanceAndStop(elbowTiming, 2*time.Millisecond)
	}

	ledger := snapshotLedger(timer)

	assert.Equal(t, 10*time.Millisecond, ledger.Seed)
	// stage 1 has 1 step, stage 2 has 2 steps: 3 exchanges * 5ms.
	assert.Equal(t, 15*time.Millisecond, ledger.Exchange)
	// 2 stages * 2ms.
	assert.Equal(t, 4*time.Millisecond, ledger.Elbow)
	assert.Equal(t, ledger.Seed+ledger.Exchange+ledger.Elbow, ledger.Total)
}

func TestSnapshotLedger_EmptyTimerYieldsZeroLedger(t *testing.T) {
	timer := newPhaseTimer(nil)
	ledger := snapshotLedger(timer)

	assert.Zero(t, ledger.Seed)
	assert.Zero(t, ledger.Exchange)
	assert.Zero(t, ledger.Elbow)
}

func TestNewPhaseTimer_DefaultsToRealClockWhenNil(t *testing.T) {
	timer := newPhaseTimer(nil)
	require.NotNil(t, timer)

	pt := timer.Start(phaseSeed)
	pt.Stop()

	ledger := snapshotLedger(timer)
	assert.GreaterOrEqual(t, ledger.Seed, time.Duration(0))
}
