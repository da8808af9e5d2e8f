// internal/app/response_simulator.go
package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"eduquery/internal/domain/query"
	"eduquery/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

const (
	DefaultSimulatedDelay       = 5 * time.Second
	DefaultSimulatedProbability = 0.5
	SimulatedAcknowledgment     = "Received. I will review this shortly."
)

// Scheduler runs fn once after d. Implementations need not support cancellation.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// SimulatorConfig tunes the simulated faculty acknowledgment.
type SimulatorConfig struct {
	Delay time.Duration
	// Probability of the responded branch; nil selects DefaultSimulatedProbability.
	Probability *float64
	// Rand is the random source; nil seeds one from the clock.
	Rand *rand.Rand
	// Chance overrides Probability/Rand entirely. Tests use it to force a branch.
	Chance func() bool
	// OnResponded is called after the responded branch updated the store.
	OnResponded func(ctx context.Context, q query.Query)
}

// ResponseSimulator emulates a faculty member picking up a fresh query after a delay.
type ResponseSimulator struct {
	store       query.Store
	scheduler   Scheduler
	delay       time.Duration
	chance      func() bool
	onResponded func(ctx context.Context, q query.Query)
	logger      *logrus.Entry
}

func NewResponseSimulator(store query.Store, scheduler Scheduler, cfg SimulatorConfig, logger *logrus.Entry) *ResponseSimulator {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultSimulatedDelay
	}
	chance := cfg.Chance
	if chance == nil {
		p := DefaultSimulatedProbability
		if cfg.Probability != nil {
			p = *cfg.Probability
		}
		chance = newChance(p, cfg.Rand)
	}
	return &ResponseSimulator{
		store:       store,
		scheduler:   scheduler,
		delay:       cfg.Delay,
		chance:      chance,
		onResponded: cfg.OnResponded,
		logger:      logger,
	}
}

// newChance returns a goroutine-safe coin with the given success probability.
func newChance(p float64, r *rand.Rand) func() bool {
	if r == nil {
		seed := uint64(time.Now().UnixNano())
		r = rand.New(rand.NewPCG(seed, seed>>1))
	}
	var mu sync.Mutex
	return func() bool {
		mu.Lock()
		defer mu.Unlock()
		return r.Float64() < p
	}
}

// Schedule registers exactly one deferred Fire for the query. It is not cancellable.
func (s *ResponseSimulator) Schedule(id string) {
	s.logger.WithFields(logrus.Fields{"query_id": id, "delay": s.delay}).Debug("Simulated response scheduled")
	s.scheduler.After(s.delay, func() {
		if _, err := s.Fire(context.Background(), id); err != nil {
			s.logger.WithError(err).WithField("query_id", id).Warn("Simulated response could not be applied")
		}
	})
}

// Fire is the deferred action. It draws the chance; on success it marks the query
// In Progress with the canned acknowledgment. It reports whether a mutation happened.
//
// Fire carries no duplicate guard: firing twice re-applies the same status and
// response and refreshes LastUpdated again.
func (s *ResponseSimulator) Fire(ctx context.Context, id string) (bool, error) {
	if !s.chance() {
		metrics.SimulatedResponses.WithLabelValues("silent").Inc()
		s.logger.WithField("query_id", id).Debug("Simulated response stayed silent")
		return false, nil
	}

	status := query.StatusInProgress
	response := SimulatedAcknowledgment
	updated, err := s.store.Update(ctx, id, query.Patch{Status: &status, TeacherResponse: &response})
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			metrics.SimulatedResponses.WithLabelValues("missing").Inc()
		}
		return false, err
	}

	metrics.SimulatedResponses.WithLabelValues("responded").Inc()
	s.logger.WithField("query_id", id).Info("Simulated faculty response applied")
	if s.onResponded != nil {
		s.onResponded(ctx, updated)
	}
	return true, nil
}
