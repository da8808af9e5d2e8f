package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"eduquery/internal/domain/query"
	"eduquery/internal/infra/logger"
	"eduquery/internal/infra/memory"
)

type workflowHarness struct {
	store     *memory.QueryStore
	analyzer  *fakeAnalyzer
	responses *recordingScheduler
	clock     *fakeClock
	workflow  *CreationWorkflow
}

func newWorkflowHarness(t *testing.T, analyzer *fakeAnalyzer) *workflowHarness {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.NewQueryStore(memory.SeedQueries(clock.Now()), clock.Now)
	directory := NewDirectoryService(memory.NewTeacherCatalog(memory.SeedTeachers()), logger.Discard())
	responses := &recordingScheduler{}
	service := NewQueryService(store, directory, responses, nil, logger.Discard())
	return &workflowHarness{
		store:     store,
		analyzer:  analyzer,
		responses: responses,
		clock:     clock,
		workflow:  NewCreationWorkflow(analyzer, service, NewQueryID, clock.Now, logger.Discard()),
	}
}

func (h *workflowHarness) fillDraft(t *testing.T, title, description, teacherID string) {
	t.Helper()
	if err := h.workflow.SetTitle(title); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if err := h.workflow.SetDescription(description); err != nil {
		t.Fatalf("SetDescription: %v", err)
	}
	if err := h.workflow.SelectTeacher(teacherID); err != nil {
		t.Fatalf("SelectTeacher: %v", err)
	}
}

// TestWorkflow_WiFiOutageWithoutAnalysis: the gateway is unavailable, defaults apply.
func TestWorkflow_WiFiOutageWithoutAnalysis(t *testing.T) {
	ctx := context.Background()
	h := newWorkflowHarness(t, &fakeAnalyzer{})
	h.fillDraft(t, "WiFi outage", "Block B wifi down since yesterday,", "t-3")

	res, err := h.workflow.RequestReview(ctx)
	if err != nil {
		t.Fatalf("RequestReview: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil analysis, got %+v", res)
	}
	if h.workflow.Stage() != StageReview {
		t.Fatalf("stage = %s, want review", h.workflow.Stage())
	}

	q, err := h.workflow.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if q.Subject != "General" || q.Urgency != query.UrgencyMedium || q.Status != query.StatusPending {
		t.Errorf("got subject=%q urgency=%q status=%q", q.Subject, q.Urgency, q.Status)
	}
	if q.Description != "Block B wifi down since yesterday," {
		t.Errorf("Description = %q, want verbatim input", q.Description)
	}
	if q.TeacherResponse.Valid {
		t.Error("TeacherResponse must be absent")
	}

	stored, err := h.store.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("query not in store: %v", err)
	}
	if stored != q {
		t.Errorf("stored %+v differs from returned %+v", stored, q)
	}
}

// TestWorkflow_WiFiOutageWithAnalysis: the gateway answers, its values win.
func TestWorkflow_WiFiOutageWithAnalysis(t *testing.T) {
	ctx := context.Background()
	res := facilitiesAnalysis
	h := newWorkflowHarness(t, &fakeAnalyzer{result: &res})
	h.fillDraft(t, "WiFi outage", "Block B wifi down since yesterday,", "t-3")

	got, err := h.workflow.RequestReview(ctx)
	if err != nil || got == nil {
		t.Fatalf("RequestReview = %+v, %v", got, err)
	}
	if got.ClarityScore != 8 {
		t.Errorf("ClarityScore = %d", got.ClarityScore)
	}

	q, err := h.workflow.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if q.Subject != "Facilities" {
		t.Errorf("Subject = %q", q.Subject)
	}
	if q.Description != "The WiFi network in Block B has been non-functional since yesterday evening." {
		t.Errorf("Description = %q", q.Description)
	}
	if q.Urgency != query.UrgencyLow {
		t.Errorf("Urgency = %q", q.Urgency)
	}
}

func TestWorkflow_SubmitAddsExactlyOneQuery(t *testing.T) {
	ctx := context.Background()
	triples := []DraftInput{
		{Title: "Grade check", Description: "Quiz 3 grade missing", TeacherID: "t-2"},
		{Title: "Lab access", Description: "Card does not open lab 4", TeacherID: "t-1"},
		{Title: "Fee receipt", Description: "Need a duplicate receipt", TeacherID: "t-3"},
	}

	h := newWorkflowHarness(t, &fakeAnalyzer{})
	for _, in := range triples {
		before, _ := h.store.List(ctx)
		existing := make(map[string]bool)
		for _, q := range before {
			existing[q.ID] = true
		}

		h.fillDraft(t, in.Title, in.Description, in.TeacherID)
		if _, err := h.workflow.RequestReview(ctx); err != nil {
			t.Fatalf("RequestReview: %v", err)
		}
		q, err := h.workflow.Submit(ctx)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}

		after, _ := h.store.List(ctx)
		if len(after) != len(before)+1 {
			t.Fatalf("store grew by %d, want 1", len(after)-len(before))
		}
		if after[0].ID != q.ID {
			t.Errorf("new query not at the front: %s", after[0].ID)
		}
		if existing[q.ID] {
			t.Errorf("id %s was already present", q.ID)
		}
		if q.Status != query.StatusPending || !q.DateSubmitted.Equal(q.LastUpdated) {
			t.Errorf("new query = %+v", q)
		}
		if h.workflow.Stage() != StageDraft || h.workflow.Input() != (DraftInput{}) {
			t.Errorf("workflow not reset after submit: %s %+v", h.workflow.Stage(), h.workflow.Input())
		}
	}

	if len(h.responses.ids) != len(triples) {
		t.Errorf("simulated responses scheduled = %d, want %d", len(h.responses.ids), len(triples))
	}
}

func TestWorkflow_IncompleteDraftStaysInDraft(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{}
	h := newWorkflowHarness(t, analyzer)
	h.fillDraft(t, "Only a title", "", "")

	_, err := h.workflow.RequestReview(ctx)
	if !errors.Is(err, ErrDraftIncomplete) {
		t.Fatalf("expected ErrDraftIncomplete, got %v", err)
	}
	if h.workflow.Stage() != StageDraft {
		t.Errorf("stage = %s, want draft", h.workflow.Stage())
	}
	if analyzer.Calls() != 0 {
		t.Errorf("analyzer called %d times for an incomplete draft", analyzer.Calls())
	}
}

func TestWorkflow_BackKeepsInputs(t *testing.T) {
	ctx := context.Background()
	res := facilitiesAnalysis
	analyzer := &fakeAnalyzer{result: &res}
	h := newWorkflowHarness(t, analyzer)
	h.fillDraft(t, "WiFi outage", "Block B", "t-3")

	if _, err := h.workflow.RequestReview(ctx); err != nil {
		t.Fatalf("RequestReview: %v", err)
	}
	if err := h.workflow.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}

	want := DraftInput{Title: "WiFi outage", Description: "Block B", TeacherID: "t-3"}
	if got := h.workflow.Input(); got != want {
		t.Errorf("Input after Back = %+v, want %+v", got, want)
	}
	if h.workflow.Analysis() != nil {
		t.Error("analysis should be cleared after Back")
	}

	if err := h.workflow.SetDescription("Block B, second floor"); err != nil {
		t.Fatalf("SetDescription after Back: %v", err)
	}
	if _, err := h.workflow.RequestReview(ctx); err != nil {
		t.Fatalf("second RequestReview: %v", err)
	}
	if analyzer.Calls() != 2 {
		t.Errorf("analyzer calls = %d, want 2", analyzer.Calls())
	}
}

func TestWorkflow_StageGuards(t *testing.T) {
	ctx := context.Background()
	h := newWorkflowHarness(t, &fakeAnalyzer{})

	if _, err := h.workflow.Submit(ctx); !errors.Is(err, ErrWrongStage) {
		t.Errorf("Submit in draft: %v", err)
	}
	if err := h.workflow.Back(); !errors.Is(err, ErrWrongStage) {
		t.Errorf("Back in draft: %v", err)
	}

	h.fillDraft(t, "T", "D", "t-1")
	if _, err := h.workflow.RequestReview(ctx); err != nil {
		t.Fatalf("RequestReview: %v", err)
	}
	if err := h.workflow.SetTitle("changed"); !errors.Is(err, ErrWrongStage) {
		t.Errorf("SetTitle in review: %v", err)
	}
	if _, err := h.workflow.RequestReview(ctx); !errors.Is(err, ErrWrongStage) {
		t.Errorf("RequestReview in review: %v", err)
	}
}

func TestWorkflow_AbandonedAnalysisIsDiscarded(t *testing.T) {
	ctx := context.Background()
	res := facilitiesAnalysis
	analyzer := &fakeAnalyzer{result: &res, gate: make(chan struct{})}
	h := newWorkflowHarness(t, analyzer)
	h.fillDraft(t, "WiFi outage", "Block B", "t-3")

	done := make(chan error, 1)
	go func() {
		_, err := h.workflow.RequestReview(ctx)
		done <- err
	}()

	// Wait until the analysis is in flight, then abandon the attempt.
	deadline := time.Now().Add(2 * time.Second)
	for analyzer.Calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("analysis never started")
		}
		time.Sleep(time.Millisecond)
	}
	h.workflow.Reset()
	close(analyzer.gate)

	if err := <-done; !errors.Is(err, ErrAnalysisDiscarded) {
		t.Fatalf("expected ErrAnalysisDiscarded, got %v", err)
	}
	if h.workflow.Stage() != StageDraft {
		t.Errorf("stage = %s, want draft", h.workflow.Stage())
	}
	if h.workflow.Analysis() != nil {
		t.Error("late analysis leaked into the reset workflow")
	}
}

func waitForCalls(t *testing.T, analyzer *fakeAnalyzer, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for analyzer.Calls() < n {
		if time.Now().After(deadline) {
			t.Fatalf("analyzer calls = %d, want %d", analyzer.Calls(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorkflow_ConcurrentReviewRequestsAnalyzeOnce(t *testing.T) {
	ctx := context.Background()
	res := facilitiesAnalysis
	analyzer := &fakeAnalyzer{result: &res, gate: make(chan struct{})}
	h := newWorkflowHarness(t, analyzer)
	h.fillDraft(t, "WiFi outage", "Block B", "t-3")

	done := make(chan error, 1)
	go func() {
		_, err := h.workflow.RequestReview(ctx)
		done <- err
	}()
	waitForCalls(t, analyzer, 1)

	if _, err := h.workflow.RequestReview(ctx); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("second RequestReview: expected ErrWrongStage, got %v", err)
	}
	if err := h.workflow.SetTitle("Edited"); !errors.Is(err, ErrWrongStage) {
		t.Errorf("SetTitle during analysis: expected ErrWrongStage, got %v", err)
	}

	close(analyzer.gate)
	if err := <-done; err != nil {
		t.Fatalf("first RequestReview: %v", err)
	}
	if n := analyzer.Calls(); n != 1 {
		t.Errorf("analyzer calls = %d, want 1", n)
	}
	if h.workflow.Stage() != StageReview {
		t.Errorf("stage = %s, want review", h.workflow.Stage())
	}
	if got := h.workflow.Input().Title; got != "WiFi outage" {
		t.Errorf("Title = %q, want the reviewed input", got)
	}
}

func TestWorkflow_ResetReleasesPendingReview(t *testing.T) {
	ctx := context.Background()
	res := facilitiesAnalysis
	analyzer := &fakeAnalyzer{result: &res, gate: make(chan struct{})}
	h := newWorkflowHarness(t, analyzer)
	h.fillDraft(t, "WiFi outage", "Block B", "t-3")

	stale := make(chan error, 1)
	go func() {
		_, err := h.workflow.RequestReview(ctx)
		stale <- err
	}()
	waitForCalls(t, analyzer, 1)

	h.workflow.Reset()
	h.fillDraft(t, "Grade check", "Quiz 3 grade missing", "t-2")

	fresh := make(chan error, 1)
	go func() {
		_, err := h.workflow.RequestReview(ctx)
		fresh <- err
	}()
	waitForCalls(t, analyzer, 2)
	close(analyzer.gate)

	if err := <-stale; !errors.Is(err, ErrAnalysisDiscarded) {
		t.Errorf("stale RequestReview: expected ErrAnalysisDiscarded, got %v", err)
	}
	if err := <-fresh; err != nil {
		t.Fatalf("fresh RequestReview: %v", err)
	}
	if h.workflow.Stage() != StageReview || h.workflow.Input().Title != "Grade check" {
		t.Errorf("stage = %s, title = %q", h.workflow.Stage(), h.workflow.Input().Title)
	}
}

func TestWorkflow_DuplicateIDKeepsReview(t *testing.T) {
	ctx := context.Background()
	h := newWorkflowHarness(t, &fakeAnalyzer{})
	h.workflow.newID = func() (string, error) { return "q-1", nil } // collides with seed data
	h.fillDraft(t, "T", "D", "t-1")

	if _, err := h.workflow.RequestReview(ctx); err != nil {
		t.Fatalf("RequestReview: %v", err)
	}
	if _, err := h.workflow.Submit(ctx); !errors.Is(err, query.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if h.workflow.Stage() != StageReview {
		t.Errorf("stage = %s, want review after failed submit", h.workflow.Stage())
	}
}
