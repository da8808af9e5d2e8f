// internal/app/query_service.go
package app

import (
	"context"
	"fmt"

	"eduquery/internal/domain/query"
	"eduquery/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// FacultyNotifier announces lifecycle events to faculty. Optional.
type FacultyNotifier interface {
	NotifyFaculty(ctx context.Context, text string) error
}

// ResponseScheduler is the part of ResponseSimulator QueryService needs.
type ResponseScheduler interface {
	Schedule(id string)
}

// QueryService is the entry point for writing to and reading from the query store.
type QueryService struct {
	store     query.Store
	directory *DirectoryService
	responses ResponseScheduler
	notifier  FacultyNotifier
	logger    *logrus.Entry
}

func NewQueryService(store query.Store, directory *DirectoryService, responses ResponseScheduler, notifier FacultyNotifier, logger *logrus.Entry) *QueryService {
	return &QueryService{
		store:     store,
		directory: directory,
		responses: responses,
		notifier:  notifier,
		logger:    logger,
	}
}

// Submit appends a finalized query and kicks off the simulated faculty response.
func (s *QueryService) Submit(ctx context.Context, q query.Query) error {
	if err := s.store.Append(ctx, q); err != nil {
		s.logger.WithError(err).WithField("query_id", q.ID).Error("Failed to append query")
		return fmt.Errorf("failed to append query %s: %w", q.ID, err)
	}

	label := "fallback"
	if q.AIAnalysis.Valid {
		label = "used"
	}
	metrics.QueriesCreated.WithLabelValues(label).Inc()
	s.logger.WithFields(logrus.Fields{"query_id": q.ID, "teacher_id": q.TeacherID}).Info("Query submitted")

	if s.responses != nil {
		s.responses.Schedule(q.ID)
	}

	if s.notifier != nil {
		text := fmt.Sprintf("New query for %s [%s, %s urgency]: %s",
			s.directory.TeacherName(ctx, q.TeacherID), q.Subject, q.Urgency, q.Title)
		if err := s.notifier.NotifyFaculty(ctx, text); err != nil {
			s.logger.WithError(err).WithField("query_id", q.ID).Warn("Failed to notify faculty about new query")
		}
	}
	return nil
}

// List returns the queries matching the filter, most recent first.
func (s *QueryService) List(ctx context.Context, f Filter) ([]query.Query, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	return FilterQueries(all, f), nil
}

func (s *QueryService) Get(ctx context.Context, id string) (query.Query, error) {
	return s.store.Get(ctx, id)
}

// Stats summarizes the whole collection for the dashboard.
func (s *QueryService) Stats(ctx context.Context) (Stats, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list queries: %w", err)
	}
	return ComputeStats(all), nil
}

// NotifyResponded tells faculty that a query got a response. Wired as the simulator's OnResponded hook.
func (s *QueryService) NotifyResponded(ctx context.Context, q query.Query) {
	if s.notifier == nil {
		return
	}
	text := fmt.Sprintf("%s responded to %q: %s", s.directory.TeacherName(ctx, q.TeacherID), q.Title, q.TeacherResponse.String)
	if err := s.notifier.NotifyFaculty(ctx, text); err != nil {
		s.logger.WithError(err).WithField("query_id", q.ID).Warn("Failed to notify faculty about response")
	}
}
