package game

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(static map[string]string) (*State, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewState(1800*time.Second, static, clock), clock
}

func TestRemainingStartsTheClock(t *testing.T) {
	s, clock := newTestState(nil)

	assert.Equal(t, 1800, s.Remaining())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 1790, s.Remaining())
}

func TestRemainingIsMonotonic(t *testing.T) {
	s, clock := newTestState(nil)

	prev := s.Remaining()
	for i := 0; i < 5; i++ {
		clock.Advance(700 * time.Millisecond)
		cur := s.Remaining()
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}

	// a full second always costs at least one reported second
	clock.Advance(time.Second)
	assert.LessOrEqual(t, s.Remaining(), prev-1)
}

func TestRemainingFloorsAtZero(t *testing.T) {
	s, clock := newTestState(nil)

	s.EnsureStarted()
	clock.Advance(3 * time.Hour)
	assert.Equal(t, 0, s.Remaining())
}

func TestPenaltiesAccumulate(t *testing.T) {
	s, _ := newTestState(nil)

	s.EnsureStarted()
	rem, applied := s.ApplyPenalty(300 * time.Second)
	require.True(t, applied)
	assert.Equal(t, 1500, rem)

	rem, applied = s.ApplyPenalty(300 * time.Second)
	require.True(t, applied)
	assert.Equal(t, 900, rem)
}

func TestPenaltyBeforeStartStartsPenalized(t *testing.T) {
	s, _ := newTestState(nil)

	rem, applied := s.ApplyPenalty(300 * time.Second)
	require.True(t, applied)
	assert.Equal(t, 1500, rem)
}

func TestPenaltyLargerThanTotalFloorsAtZero(t *testing.T) {
	s, _ := newTestState(nil)

	rem, applied := s.ApplyPenalty(2 * time.Hour)
	require.True(t, applied)
	assert.Equal(t, 0, rem)
}

func TestCompletePinsRemainingAtZero(t *testing.T) {
	s, clock := newTestState(nil)

	s.EnsureStarted()
	s.Complete(OutcomeWon)

	assert.Equal(t, 0, s.Remaining())

	rem, applied := s.ApplyPenalty(300 * time.Second)
	assert.False(t, applied)
	assert.Equal(t, 0, rem)

	clock.Advance(time.Minute)
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Remaining)
	assert.True(t, snap.Completed)
	assert.Equal(t, OutcomeWon, snap.Outcome)
}

func TestFirstOutcomeWins(t *testing.T) {
	s, _ := newTestState(nil)

	s.Complete(OutcomeLost)
	s.Complete(OutcomeWon)
	assert.Equal(t, OutcomeLost, s.Snapshot().Outcome)
}

func TestResetRestoresInitialState(t *testing.T) {
	s, clock := newTestState(map[string]string{"RU-0001": "5309"})

	s.EnsureStarted()
	clock.Advance(time.Minute)
	s.ApplyPenalty(300 * time.Second)
	s.BindSecret("RU-0002")
	s.Complete(OutcomeLost)

	s.Reset()

	snap := s.Peek()
	assert.Equal(t, 1800, snap.Remaining)
	assert.False(t, snap.Completed)
	assert.Equal(t, OutcomeNone, snap.Outcome)

	// round secrets are gone, the static mapping survives
	_, ok := s.ExpectedSecret("RU-0002")
	assert.False(t, ok)
	secret, ok := s.ExpectedSecret("RU-0001")
	require.True(t, ok)
	assert.Equal(t, "5309", secret)
}

func TestPeekDoesNotStartTheClock(t *testing.T) {
	s, clock := newTestState(nil)

	assert.Equal(t, 1800, s.Peek().Remaining)
	clock.Advance(time.Minute)
	assert.Equal(t, 1800, s.Peek().Remaining)

	// a real observation starts it
	assert.Equal(t, 1800, s.Remaining())
	clock.Advance(time.Second)
	assert.Equal(t, 1799, s.Peek().Remaining)
}

func TestEnsureStartedConvergesUnderRace(t *testing.T) {
	s, _ := newTestState(nil)

	var wg sync.WaitGroup
	anchors := make([]time.Time, 32)
	for i := range anchors {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			anchors[i] = s.EnsureStarted()
		}(i)
	}
	wg.Wait()

	for _, a := range anchors[1:] {
		assert.Equal(t, anchors[0], a)
	}
	assert.Equal(t, 1800, s.Remaining())
}

func TestConcurrentPenaltiesBothApply(t *testing.T) {
	s, _ := newTestState(nil)
	s.EnsureStarted()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ApplyPenalty(300 * time.Second)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1200, s.Remaining())
}

func TestBindSecretIsIdempotent(t *testing.T) {
	s, _ := newTestState(map[string]string{"RU-0001": "5309"})

	assert.Equal(t, "5309", s.BindSecret("RU-0001"))
	assert.Equal(t, "5309", s.BindSecret(" RU-0001 "))

	// unmapped sites get one random code for the whole round
	first := s.BindSecret("RU-0042")
	assert.Len(t, first, secretLength)
	assert.Equal(t, first, s.BindSecret("RU-0042"))
}
