package app

import (
	"context"
	"strconv"
	"sync"
	"time"

	"eduquery/internal/domain/analysis"
	"eduquery/internal/domain/query"
)

// fakeAnalyzer returns a fixed result and counts calls. When gate is set,
// Analyze blocks until it is closed.
type fakeAnalyzer struct {
	mu     sync.Mutex
	result *analysis.Result
	calls  int
	gate   chan struct{}
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, title, description string) *analysis.Result {
	a.mu.Lock()
	a.calls++
	gate := a.gate
	a.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if a.result == nil {
		return nil
	}
	cp := *a.result
	return &cp
}

func (a *fakeAnalyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type scheduledCall struct {
	delay time.Duration
	fn    func()
}

// fakeScheduler records deferred functions instead of running them.
type fakeScheduler struct {
	mu    sync.Mutex
	calls []scheduledCall
}

func (s *fakeScheduler) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduledCall{delay: d, fn: fn})
}

func (s *fakeScheduler) Calls() []scheduledCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scheduledCall, len(s.calls))
	copy(out, s.calls)
	return out
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) NotifyFaculty(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// recordingScheduler captures ids handed to Schedule.
type recordingScheduler struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingScheduler) Schedule(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequentialIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + strconv.Itoa(n), nil
	}
}

var facilitiesAnalysis = analysis.Result{
	SuggestedSubject:   "Facilities",
	ClarityScore:       8,
	RefinedDescription: "The WiFi network in Block B has been non-functional since yesterday evening.",
	UrgencyAssessment:  query.UrgencyLow,
}
