// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"
)

func (h *Handlers) onStart(c telebot.Context) error {
	logCtx := h.handlerLogger(c, "/start")
	logCtx.Info("Processing /start command")

	return c.Send(fmt.Sprintf("Hello, %s! This is your student query dashboard. "+
		"Send /new to ask a faculty member something, /queries to see what you have asked, or /help for all commands.", h.student.Name))
}

func (h *Handlers) onHelp(c telebot.Context) error {
	h.handlerLogger(c, "/help").Info("Processing /help command")

	var helpText strings.Builder
	helpText.WriteString("Available commands:\n\n")
	helpText.WriteString("/new - Start a new query. The bot asks for a title, a description and a teacher, then offers an AI review before you submit.\n")
	helpText.WriteString("/cancel - Abandon the query you are drafting.\n\n")
	helpText.WriteString("/queries [all|pending|in_progress|resolved|rejected] [search] - List your queries, most recent first. Search matches title or subject.\n")
	helpText.WriteString("/query <id> - Show one query with the faculty response.\n")
	helpText.WriteString("/stats - Dashboard counters.\n\n")
	helpText.WriteString("/teachers - Faculty directory.\n")
	helpText.WriteString("/profile - Your student profile.\n")
	helpText.WriteString("/help - Show this message.")
	return c.Send(helpText.String())
}

func (h *Handlers) onProfile(c telebot.Context) error {
	h.handlerLogger(c, "/profile").Info("Processing /profile command")
	return c.Send(formatProfile(h.student))
}

func (h *Handlers) onTeachers(c telebot.Context) error {
	logCtx := h.handlerLogger(c, "/teachers")

	teachers, err := h.directory.ListTeachers(h.ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list teachers")
		return c.Send("Could not load the faculty directory. Please try again later.")
	}
	logCtx.WithField("teachers_count", len(teachers)).Info("Successfully retrieved teacher list")
	return c.Send(formatTeachers(teachers))
}
