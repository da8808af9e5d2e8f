package telegram

import (
	"errors"
	"strings"

	"eduquery/internal/domain/query"
	"eduquery/internal/domain/teacher"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// onQueries lists queries, optionally narrowed by status and search term.
func (h *Handlers) onQueries(c telebot.Context) error {
	filter := parseQueriesArgs(c.Args())
	logCtx := h.handlerLogger(c, "/queries").WithFields(logrus.Fields{
		"status": filter.Status,
		"search": filter.Search,
	})

	qs, err := h.queries.List(h.ctx, filter)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list queries")
		return c.Send("Could not load your queries. Please try again later.")
	}
	logCtx.WithField("queries_count", len(qs)).Info("Queries listed")
	return c.Send(formatQueryList(qs, h.teacherName))
}

func (h *Handlers) onQuery(c telebot.Context) error {
	logCtx := h.handlerLogger(c, "/query")

	args := c.Args()
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return c.Send("Usage: /query <id>, for example /query q-1")
	}
	id := strings.TrimSpace(args[0])
	logCtx = logCtx.WithField("query_id", id)

	q, err := h.queries.Get(h.ctx, id)
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			logCtx.Warn("Query not found")
			return c.Send("No query with id " + id + ".")
		}
		logCtx.WithError(err).Error("Failed to load query")
		return c.Send("Could not load the query. Please try again later.")
	}

	t, err := h.directory.Teacher(h.ctx, q.TeacherID)
	if err != nil {
		if !errors.Is(err, teacher.ErrTeacherNotFound) {
			logCtx.WithError(err).Warn("Teacher lookup failed")
		}
		t = nil
	}
	return c.Send(formatQueryDetail(q, t))
}

func (h *Handlers) onStats(c telebot.Context) error {
	logCtx := h.handlerLogger(c, "/stats")

	st, err := h.queries.Stats(h.ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to compute stats")
		return c.Send("Could not load the dashboard. Please try again later.")
	}
	return c.Send(formatStats(st))
}
