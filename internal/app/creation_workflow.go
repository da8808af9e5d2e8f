// internal/app/creation_workflow.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eduquery/internal/domain/analysis"
	"eduquery/internal/domain/query"

	"github.com/sirupsen/logrus"
)

// Stage is the step a creation attempt is in.
type Stage int

const (
	StageDraft Stage = iota
	StageReview
)

func (s Stage) String() string {
	switch s {
	case StageDraft:
		return "draft"
	case StageReview:
		return "review"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

var ErrWrongStage = fmt.Errorf("operation not allowed in the current workflow stage")

// ErrAnalysisDiscarded means the draft changed (Back/Reset) while analysis was in flight;
// the late result was dropped and the workflow did not move.
var ErrAnalysisDiscarded = fmt.Errorf("draft changed while analysis was running")

// Submitter accepts finalized queries. QueryService is the production implementation.
type Submitter interface {
	Submit(ctx context.Context, q query.Query) error
}

// CreationWorkflow drives one user's Draft -> Review -> Finalize flow. It is reusable:
// after a successful Submit it is back in Draft with empty inputs.
type CreationWorkflow struct {
	mu         sync.Mutex
	stage      Stage
	input      DraftInput
	analysis   *analysis.Result
	generation uint64 // bumped whenever an in-flight analysis must be ignored
	analyzing  bool   // a RequestReview call is waiting on the analyzer

	analyzer  analysis.Analyzer
	submitter Submitter
	newID     IDGenerator
	now       func() time.Time
	logger    *logrus.Entry
}

func NewCreationWorkflow(analyzer analysis.Analyzer, submitter Submitter, newID IDGenerator, clock func() time.Time, logger *logrus.Entry) *CreationWorkflow {
	if newID == nil {
		newID = NewQueryID
	}
	if clock == nil {
		clock = time.Now
	}
	return &CreationWorkflow{
		stage:     StageDraft,
		analyzer:  analyzer,
		submitter: submitter,
		newID:     newID,
		now:       clock,
		logger:    logger,
	}
}

func (w *CreationWorkflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

func (w *CreationWorkflow) Input() DraftInput {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Analysis returns a copy of the review-stage analysis, or nil when unavailable.
func (w *CreationWorkflow) Analysis() *analysis.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.analysis == nil {
		return nil
	}
	cp := *w.analysis
	return &cp
}

func (w *CreationWorkflow) SetTitle(title string) error {
	return w.editDraft(func(in *DraftInput) { in.Title = title })
}

func (w *CreationWorkflow) SetDescription(description string) error {
	return w.editDraft(func(in *DraftInput) { in.Description = description })
}

func (w *CreationWorkflow) SelectTeacher(teacherID string) error {
	return w.editDraft(func(in *DraftInput) { in.TeacherID = teacherID })
}

func (w *CreationWorkflow) editDraft(edit func(in *DraftInput)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageDraft || w.analyzing {
		return ErrWrongStage
	}
	edit(&w.input)
	return nil
}

// RequestReview moves Draft -> Review. It refuses incomplete drafts, then calls the
// analyzer exactly once without holding the lock. A nil analysis still reaches Review.
// While that call is pending, a second RequestReview and draft edits get ErrWrongStage.
func (w *CreationWorkflow) RequestReview(ctx context.Context) (*analysis.Result, error) {
	w.mu.Lock()
	if w.stage != StageDraft || w.analyzing {
		w.mu.Unlock()
		return nil, ErrWrongStage
	}
	if err := ValidateDraft(w.input); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.generation++
	gen := w.generation
	w.analyzing = true
	in := w.input
	w.mu.Unlock()

	res := w.analyzer.Analyze(ctx, in.Title, in.Description)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen || w.stage != StageDraft {
		// Reset already cleared the marker; a newer attempt may own it now.
		w.logger.WithField("stage", w.stage.String()).Debug("Discarding stale draft analysis")
		return nil, ErrAnalysisDiscarded
	}
	w.analyzing = false
	w.stage = StageReview
	w.analysis = res
	if res == nil {
		w.logger.Info("Draft analysis unavailable; review will use the original input")
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

// Back returns from Review to Draft keeping every input.
func (w *CreationWorkflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageReview {
		return ErrWrongStage
	}
	w.stage = StageDraft
	w.analysis = nil
	w.generation++
	return nil
}

// Reset abandons the attempt. An analysis still in flight will be discarded when it resolves.
func (w *CreationWorkflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *CreationWorkflow) resetLocked() {
	w.stage = StageDraft
	w.input = DraftInput{}
	w.analysis = nil
	w.analyzing = false
	w.generation++
}

// Submit finalizes the reviewed draft, hands it to the submitter and resets the workflow.
// On failure the workflow stays in Review so the user can retry.
func (w *CreationWorkflow) Submit(ctx context.Context) (query.Query, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageReview {
		return query.Query{}, ErrWrongStage
	}

	id, err := w.newID()
	if err != nil {
		return query.Query{}, err
	}
	q := Finalize(w.input, w.analysis, id, w.now())

	if err := w.submitter.Submit(ctx, q); err != nil {
		return query.Query{}, fmt.Errorf("failed to submit query: %w", err)
	}

	w.logger.WithFields(logrus.Fields{
		"query_id":    q.ID,
		"teacher_id":  q.TeacherID,
		"subject":     q.Subject,
		"urgency":     q.Urgency,
		"ai_assisted": w.analysis != nil,
	}).Info("Query finalized")

	w.resetLocked()
	return q, nil
}
