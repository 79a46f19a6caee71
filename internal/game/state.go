package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

const secretLength = 6

const secretCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// State is the single shared game record: the countdown anchor, the
// completion flag and the secret codes bound during the round. There is
// exactly one State per process and every handler mutates it through the
// methods below, all guarded by one mutex.
type State struct {
	mu sync.Mutex

	clock clockwork.Clock
	total time.Duration

	anchor    time.Time // zero value means the countdown has not started
	completed bool
	outcome   Outcome

	secrets map[string]string // bound by score validation this round
	static  map[string]string // loaded once at startup, read-only
}

// Snapshot is a consistent read of the timer.
type Snapshot struct {
	Remaining int
	Elapsed   int
	Completed bool
	Outcome   Outcome
}

func NewState(total time.Duration, static map[string]string, clock clockwork.Clock) *State {
	if static == nil {
		static = map[string]string{}
	}
	return &State{
		clock:   clock,
		total:   total,
		secrets: make(map[string]string),
		static:  static,
	}
}

// EnsureStarted starts the countdown if it is not running yet and returns
// the anchor. Idempotent: concurrent first calls all observe one anchor.
func (s *State) EnsureStarted() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureStartedLocked()
	return s.anchor
}

func (s *State) ensureStartedLocked() {
	if s.anchor.IsZero() {
		s.anchor = s.clock.Now()
	}
}

// remainingLocked truncates to whole seconds so repeated reads never tick
// back up between state changes.
func (s *State) remainingLocked() int {
	if s.completed {
		return 0
	}
	elapsed := int(s.clock.Since(s.anchor) / time.Second)
	remaining := int(s.total/time.Second) - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot reports the current timer values, starting the countdown on
// first observation.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureStartedLocked()
	return s.snapshotLocked()
}

// Peek is Snapshot without the start side effect; before the first start it
// reports the full duration.
func (s *State) Peek() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anchor.IsZero() && !s.completed {
		return Snapshot{Remaining: int(s.total / time.Second)}
	}
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	remaining := s.remainingLocked()
	return Snapshot{
		Remaining: remaining,
		Elapsed:   int(s.total/time.Second) - remaining,
		Completed: s.completed,
		Outcome:   s.outcome,
	}
}

// Remaining returns the seconds left, starting the countdown if needed.
func (s *State) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureStartedLocked()
	return s.remainingLocked()
}

// ApplyPenalty shifts the anchor backward by amount so every observer loses
// the same time at once. If the countdown has not started it starts
// already penalized. Returns the new remaining seconds; applied is false
// once the round has completed, in which case nothing changes.
func (s *State) ApplyPenalty(amount time.Duration) (remaining int, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return 0, false
	}
	if s.anchor.IsZero() {
		s.anchor = s.clock.Now().Add(-amount)
	} else {
		s.anchor = s.anchor.Add(-amount)
	}
	return s.remainingLocked(), true
}

// Complete pins the round in its terminal state and reports whether this
// call ended it. Idempotent; the first outcome wins.
func (s *State) Complete(outcome Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return false
	}
	s.completed = true
	s.outcome = outcome
	return true
}

// Reset returns the state to its initial lifecycle condition: timer not
// started, no outcome, no bound secrets.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = time.Time{}
	s.completed = false
	s.outcome = OutcomeNone
	s.secrets = make(map[string]string)
}

// BindSecret returns the secret for a site, binding one if the site has
// none yet: the static mapping wins, otherwise a random code is generated.
// Rebinding is a no-op so a code already shown to a player stays valid.
func (s *State) BindSecret(site string) string {
	site = strings.TrimSpace(site)
	s.mu.Lock()
	defer s.mu.Unlock()
	if secret, ok := s.secrets[site]; ok {
		return secret
	}
	secret, ok := s.static[site]
	if !ok {
		secret = randomSecret()
	}
	s.secrets[site] = secret
	return secret
}

// ExpectedSecret resolves the code a site must be disarmed with: secrets
// bound this round first, then the static mapping.
func (s *State) ExpectedSecret(site string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if secret, ok := s.secrets[site]; ok {
		return secret, true
	}
	secret, ok := s.static[site]
	return secret, ok
}

func randomSecret() string {
	b := make([]byte, secretLength)
	for i := range b {
		b[i] = secretCharset[rand.Intn(len(secretCharset))]
	}
	return string(b)
}
