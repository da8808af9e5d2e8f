package scheduler

import (
	"context"
	"fmt"
	"time"

	"eduquery/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StatsSource is the part of app.QueryService the digest job reads.
type StatsSource interface {
	Stats(ctx context.Context) (app.Stats, error)
}

// StatsFunc adapts a function to StatsSource.
type StatsFunc func(ctx context.Context) (app.Stats, error)

func (f StatsFunc) Stats(ctx context.Context) (app.Stats, error) { return f(ctx) }

// CronScheduler runs the simulator's one-shot timers and the daily digest on a single cron engine.
type CronScheduler struct {
	cronEngine     *cron.Cron
	stats          StatsSource
	notifier       app.FacultyNotifier
	logger         *logrus.Entry
	cronSpecDigest string
	now            func() time.Time
}

func NewCronScheduler(
	stats StatsSource,
	notifier app.FacultyNotifier, // nil disables the digest
	logger *logrus.Entry,
	cronSpecDigest string, // e.g. "0 18 * * *" (6 PM daily)
) *CronScheduler {
	return &CronScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithLogger(cron.PrintfLogger(logger)),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		stats:          stats,
		notifier:       notifier,
		logger:         logger,
		cronSpecDigest: cronSpecDigest,
		now:            time.Now,
	}
}

// oneShot fires once at `at`, or as soon as cron first looks at it when `at` has already passed.
// Once handed out, a passed fire time yields the zero time so cron never schedules it again.
// Next is only called from the cron run goroutine.
type oneShot struct {
	at    time.Time
	spent bool
}

func (o *oneShot) Next(t time.Time) time.Time {
	if o.at.After(t) {
		o.spent = true
		return o.at
	}
	if o.spent {
		return time.Time{}
	}
	o.spent = true
	return t
}

// After runs fn once, d from now, and drops the entry afterwards. A non-positive d, or
// a fire time that passed before Start, runs fn on the next scheduler tick.
func (s *CronScheduler) After(d time.Duration, fn func()) {
	ids := make(chan cron.EntryID, 1)
	id := s.cronEngine.Schedule(&oneShot{at: s.now().Add(d)}, cron.FuncJob(func() {
		defer s.cronEngine.Remove(<-ids)
		fn()
	}))
	ids <- id
	s.logger.WithFields(logrus.Fields{"entry_id": id, "delay": d}).Debug("One-shot job scheduled")
}

func (s *CronScheduler) Start() error {
	s.logger.Info("Starting scheduler...")

	if s.notifier != nil && s.cronSpecDigest != "" {
		_, err := s.cronEngine.AddFunc(s.cronSpecDigest, func() {
			s.logger.Info("Cron job triggered for daily digest.")
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			if err := s.RunDigest(ctx); err != nil {
				s.logger.WithError(err).Error("Daily digest failed")
			}
		})
		if err != nil {
			return fmt.Errorf("could not add digest cron job %q: %w", s.cronSpecDigest, err)
		}
	} else {
		s.logger.Info("Faculty chat not configured, daily digest disabled.")
	}

	s.cronEngine.Start()
	s.logger.Info("Scheduler started.")
	return nil
}

// RunDigest sends the current dashboard counters to the faculty chat.
func (s *CronScheduler) RunDigest(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	st, err := s.stats.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	if err := s.notifier.NotifyFaculty(ctx, FormatDigest(st, s.now())); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	s.logger.WithField("total", st.Total).Info("Daily digest sent")
	return nil
}

func FormatDigest(st app.Stats, day time.Time) string {
	return fmt.Sprintf("Query digest for %s: %d total, %d pending, %d in progress, %d resolved, %d rejected.",
		day.Format("2006-01-02"), st.Total, st.Pending, st.InProgress, st.Resolved, st.Rejected)
}

func (s *CronScheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	ctx := s.cronEngine.Stop() // Stops new runs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Scheduler gracefully stopped.")
}
