package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"eduquery/internal/app"
	"eduquery/internal/domain/query"
	"eduquery/internal/domain/student"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Handlers serves the student dashboard over Telegram.
type Handlers struct {
	ctx             context.Context
	queries         *app.QueryService
	directory       *app.DirectoryService
	student         student.Student
	newWorkflow     func() *app.CreationWorkflow
	analysisTimeout time.Duration
	sessions        *sessions
	logger          *logrus.Entry
}

func NewHandlers(
	ctx context.Context,
	queries *app.QueryService,
	directory *app.DirectoryService,
	current student.Student,
	newWorkflow func() *app.CreationWorkflow,
	analysisTimeout time.Duration,
	baseLogger *logrus.Entry,
) *Handlers {
	return &Handlers{
		ctx:             ctx,
		queries:         queries,
		directory:       directory,
		student:         current,
		newWorkflow:     newWorkflow,
		analysisTimeout: analysisTimeout,
		sessions:        newSessions(),
		logger:          baseLogger,
	}
}

// Register wires every command and callback onto the bot.
func (h *Handlers) Register(b *telebot.Bot) {
	b.Handle("/start", h.onStart)
	b.Handle("/help", h.onHelp)
	b.Handle("/profile", h.onProfile)
	b.Handle("/teachers", h.onTeachers)

	b.Handle("/queries", h.onQueries)
	b.Handle("/query", h.onQuery)
	b.Handle("/stats", h.onStats)

	b.Handle("/new", h.onNew)
	b.Handle("/cancel", h.onCancel)
	b.Handle(telebot.OnText, h.onText)
	b.Handle(telebot.OnCallback, h.onCallback)
}

func (h *Handlers) handlerLogger(c telebot.Context, handler string) *logrus.Entry {
	fields := logrus.Fields{"handler": handler}
	if s := c.Sender(); s != nil {
		fields["sender_id"] = s.ID
	}
	if ch := c.Chat(); ch != nil {
		fields["chat_id"] = ch.ID
	}
	return h.logger.WithFields(fields)
}

func (h *Handlers) teacherName(id string) string {
	return h.directory.TeacherName(h.ctx, id)
}

// parseQueriesArgs reads `/queries [all|pending|in_progress|resolved|rejected] [search...]`.
// A first word that is not a status starts the search term.
func parseQueriesArgs(args []string) app.Filter {
	var f app.Filter
	if len(args) == 0 {
		return f
	}
	first := args[0]
	if strings.EqualFold(first, "all") {
		args = args[1:]
	} else if st, err := query.ParseStatus(first); err == nil {
		f.Status = st
		args = args[1:]
	}
	f.Search = strings.Join(args, " ")
	return f
}

// Callback payloads for the creation flow. Teacher selection carries the id after the prefix.
const (
	cbTeacherPrefix   = "new_teacher:"
	cbPickTeacher     = "new_pick_teacher"
	cbEditTitle       = "new_edit_title"
	cbEditDescription = "new_edit_description"
	cbReview          = "new_review"
	cbBack            = "new_back"
	cbSubmit          = "new_submit"
	cbCancel          = "new_cancel"
)

type callbackAction int

const (
	actionUnknown callbackAction = iota
	actionSelectTeacher
	actionPickTeacher
	actionEditTitle
	actionEditDescription
	actionReview
	actionBack
	actionSubmit
	actionCancel
)

// parseCallback maps raw callback data to an action and its argument.
func parseCallback(data string) (callbackAction, string, error) {
	data = strings.TrimSpace(data)
	if id, ok := strings.CutPrefix(data, cbTeacherPrefix); ok {
		if id == "" {
			return actionUnknown, "", fmt.Errorf("teacher callback without id: %q", data)
		}
		return actionSelectTeacher, id, nil
	}
	switch data {
	case cbPickTeacher:
		return actionPickTeacher, "", nil
	case cbEditTitle:
		return actionEditTitle, "", nil
	case cbEditDescription:
		return actionEditDescription, "", nil
	case cbReview:
		return actionReview, "", nil
	case cbBack:
		return actionBack, "", nil
	case cbSubmit:
		return actionSubmit, "", nil
	case cbCancel:
		return actionCancel, "", nil
	}
	return actionUnknown, "", fmt.Errorf("unknown callback data: %q", data)
}

type inputField int

const (
	awaitingNothing inputField = iota
	awaitingTitle
	awaitingDescription
)

// session is one chat's in-progress query.
type session struct {
	mu       sync.Mutex
	workflow *app.CreationWorkflow
	awaiting inputField
}

func (s *session) expect(f inputField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaiting = f
}

// take returns the awaited field and clears it.
func (s *session) take() inputField {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.awaiting
	s.awaiting = awaitingNothing
	return f
}

type sessions struct {
	mu     sync.Mutex
	byChat map[int64]*session
}

func newSessions() *sessions {
	return &sessions{byChat: make(map[int64]*session)}
}

func (s *sessions) get(chatID int64) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byChat[chatID]
	return sess, ok
}

// start replaces any previous session for the chat.
func (s *sessions) start(chatID int64, wf *app.CreationWorkflow) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byChat[chatID]; ok {
		old.workflow.Reset()
	}
	sess := &session{workflow: wf}
	s.byChat[chatID] = sess
	return sess
}

func (s *sessions) end(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byChat[chatID]
	if ok {
		sess.workflow.Reset()
		delete(s.byChat, chatID)
	}
	return ok
}
