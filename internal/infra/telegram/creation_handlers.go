package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eduquery/internal/app"
	"eduquery/internal/domain/teacher"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func (h *Handlers) onNew(c telebot.Context) error {
	h.handlerLogger(c, "/new").Info("Starting query draft")

	sess := h.sessions.start(c.Chat().ID, h.newWorkflow())
	sess.expect(awaitingTitle)
	return c.Send("New query. Send the title, e.g. \"Grade correction for Quiz 3\".\nSend /cancel at any time to discard the draft.")
}

func (h *Handlers) onCancel(c telebot.Context) error {
	if h.sessions.end(c.Chat().ID) {
		h.handlerLogger(c, "/cancel").Info("Draft discarded")
		return c.Send("Draft discarded.")
	}
	return c.Send("There is no draft to cancel.")
}

// onText feeds free text into whichever draft field the chat is waiting for.
func (h *Handlers) onText(c telebot.Context) error {
	sess, ok := h.sessions.get(c.Chat().ID)
	if !ok {
		return c.Send("Send /new to start a query, or /help for all commands.")
	}
	logCtx := h.handlerLogger(c, "text")
	text := strings.TrimSpace(c.Text())
	wf := sess.workflow

	switch sess.take() {
	case awaitingTitle:
		if text == "" {
			sess.expect(awaitingTitle)
			return c.Send("The title cannot be empty. Send the title of your query.")
		}
		if err := wf.SetTitle(text); err != nil {
			return h.sendStageError(c, logCtx, err)
		}
		if wf.Input().Description == "" {
			sess.expect(awaitingDescription)
			return c.Send("Describe your issue in detail.")
		}
		return h.sendDraft(c, wf)

	case awaitingDescription:
		if text == "" {
			sess.expect(awaitingDescription)
			return c.Send("The description cannot be empty. Describe your issue in detail.")
		}
		if err := wf.SetDescription(text); err != nil {
			return h.sendStageError(c, logCtx, err)
		}
		if wf.Input().TeacherID == "" {
			return h.sendTeacherPicker(c)
		}
		return h.sendDraft(c, wf)
	}

	if wf.Stage() == app.StageReview {
		return c.Send("Use the buttons under the review to submit or go back, or send /cancel.")
	}
	return h.sendDraft(c, wf)
}

func (h *Handlers) onCallback(c telebot.Context) error {
	logCtx := h.handlerLogger(c, "callback")
	data := c.Callback().Data

	action, arg, err := parseCallback(data)
	if err != nil {
		logCtx.WithError(err).Warn("Unhandled callback")
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
	}

	sess, ok := h.sessions.get(c.Chat().ID)
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: "This draft has expired. Send /new to start again."})
	}
	wf := sess.workflow
	logCtx = logCtx.WithField("callback", data)

	switch action {
	case actionSelectTeacher:
		if _, err := h.directory.Teacher(h.ctx, arg); err != nil {
			if errors.Is(err, teacher.ErrTeacherNotFound) {
				return c.Respond(&telebot.CallbackResponse{Text: "That teacher is no longer in the directory."})
			}
			logCtx.WithError(err).Error("Teacher lookup failed")
			return c.Respond(&telebot.CallbackResponse{Text: "Could not load the teacher."})
		}
		if err := wf.SelectTeacher(arg); err != nil {
			_ = c.Respond()
			return h.sendStageError(c, logCtx, err)
		}
		_ = c.Respond()
		return h.sendDraft(c, wf)

	case actionPickTeacher:
		_ = c.Respond()
		return h.sendTeacherPicker(c)

	case actionEditTitle:
		sess.expect(awaitingTitle)
		_ = c.Respond()
		return c.Send("Send the new title.")

	case actionEditDescription:
		sess.expect(awaitingDescription)
		_ = c.Respond()
		return c.Send("Send the new description.")

	case actionReview:
		_ = c.Respond(&telebot.CallbackResponse{Text: "Analyzing your draft..."})
		return h.review(c, logCtx, wf)

	case actionBack:
		if err := wf.Back(); err != nil {
			_ = c.Respond()
			return h.sendStageError(c, logCtx, err)
		}
		_ = c.Respond()
		return h.sendDraft(c, wf)

	case actionSubmit:
		return h.submit(c, logCtx, wf)

	case actionCancel:
		h.sessions.end(c.Chat().ID)
		_ = c.Respond()
		return c.Send("Draft discarded.")
	}

	return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
}

func (h *Handlers) review(c telebot.Context, logCtx *logrus.Entry, wf *app.CreationWorkflow) error {
	ctx := h.ctx
	if h.analysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(h.ctx, h.analysisTimeout)
		defer cancel()
	}

	res, err := wf.RequestReview(ctx)
	switch {
	case errors.Is(err, app.ErrDraftIncomplete):
		return c.Send(fmt.Sprintf("The draft is incomplete: %v.", err))
	case errors.Is(err, app.ErrAnalysisDiscarded):
		logCtx.Info("Analysis result discarded after the draft changed")
		return nil
	case err != nil:
		return h.sendStageError(c, logCtx, err)
	}

	in := wf.Input()
	return c.Send(formatReview(in, res, h.teacherName(in.TeacherID)), reviewKeyboard())
}

func (h *Handlers) submit(c telebot.Context, logCtx *logrus.Entry, wf *app.CreationWorkflow) error {
	q, err := wf.Submit(h.ctx)
	if err != nil {
		if errors.Is(err, app.ErrWrongStage) {
			_ = c.Respond()
			return h.sendStageError(c, logCtx, err)
		}
		logCtx.WithError(err).Error("Query submission failed")
		return c.Respond(&telebot.CallbackResponse{Text: "Could not submit the query. Please try again.", ShowAlert: true})
	}

	h.sessions.end(c.Chat().ID)
	logCtx.WithField("query_id", q.ID).Info("Query submitted from chat")
	_ = c.Respond(&telebot.CallbackResponse{Text: "Submitted"})
	return c.Send(fmt.Sprintf("Query submitted to %s.\nID: %s\nStatus: %s\n\nTrack it with /query %s",
		h.teacherName(q.TeacherID), q.ID, q.Status, q.ID))
}

func (h *Handlers) sendStageError(c telebot.Context, logCtx *logrus.Entry, err error) error {
	if errors.Is(err, app.ErrWrongStage) {
		logCtx.WithError(err).Debug("Action not allowed in the current stage")
		return c.Send("That action is not available right now. Use the latest buttons, or send /cancel to start over.")
	}
	logCtx.WithError(err).Error("Draft update failed")
	return c.Send("Something went wrong with your draft. Please try again.")
}

func (h *Handlers) sendDraft(c telebot.Context, wf *app.CreationWorkflow) error {
	in := wf.Input()
	name := ""
	if in.TeacherID != "" {
		name = h.teacherName(in.TeacherID)
	}
	return c.Send(formatDraft(in, name), draftKeyboard())
}

func (h *Handlers) sendTeacherPicker(c telebot.Context) error {
	teachers, err := h.directory.ListTeachers(h.ctx)
	if err != nil {
		h.handlerLogger(c, "teacher_picker").WithError(err).Error("Failed to list teachers")
		return c.Send("Could not load the faculty directory. Please try again later.")
	}
	if len(teachers) == 0 {
		return c.Send("The faculty directory is empty, so the query cannot be assigned.")
	}
	return c.Send("Assign to Teacher:", teacherKeyboard(teachers))
}

func draftKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{
		{{Text: "Edit title", Data: cbEditTitle}, {Text: "Edit description", Data: cbEditDescription}},
		{{Text: "Change teacher", Data: cbPickTeacher}},
		{{Text: "Review with AI", Data: cbReview}},
		{{Text: "Cancel", Data: cbCancel}},
	}}
}

func reviewKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{
		{{Text: "Submit", Data: cbSubmit}},
		{{Text: "Back", Data: cbBack}, {Text: "Cancel", Data: cbCancel}},
	}}
}

func teacherKeyboard(teachers []*teacher.Teacher) *telebot.ReplyMarkup {
	rows := make([][]telebot.InlineButton, 0, len(teachers))
	for _, t := range teachers {
		rows = append(rows, []telebot.InlineButton{{
			Text: fmt.Sprintf("%s (%s)", t.Name, t.Department),
			Data: cbTeacherPrefix + t.ID,
		}})
	}
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}
