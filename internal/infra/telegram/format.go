package telegram

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"eduquery/internal/app"
	"eduquery/internal/domain/analysis"
	"eduquery/internal/domain/query"
	"eduquery/internal/domain/student"
	"eduquery/internal/domain/teacher"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
	maxListed      = 20
	previewRunes   = 120
)

// nameFunc resolves a teacher id to a display name.
type nameFunc func(teacherID string) string

func formatQueryList(qs []query.Query, name nameFunc) string {
	if len(qs) == 0 {
		return "No queries found.\nTry adjusting your filters or create a new query with /new."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s\n", len(qs), plural(len(qs), "query", "queries"))
	for i, q := range qs {
		if i == maxListed {
			fmt.Fprintf(&b, "\n...and %d more. Narrow the list with a status or search term.", len(qs)-maxListed)
			break
		}
		b.WriteString("\n")
		b.WriteString(formatQueryLine(q, name(q.TeacherID)))
	}
	return b.String()
}

func formatQueryLine(q query.Query, teacherName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s · %s", q.Status, q.DateSubmitted.Format(dateLayout), q.ID)
	if q.Urgency == query.UrgencyHigh {
		b.WriteString(" · High Urgency")
	}
	fmt.Fprintf(&b, "\n%s\n%s\n%s · %s", q.Title, preview(q.Description, previewRunes), teacherName, q.Subject)
	if q.HasResponse() {
		b.WriteString(" · Teacher Responded")
	}
	b.WriteString("\n")
	return b.String()
}

func formatQueryDetail(q query.Query, t *teacher.Teacher) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s · Submitted on %s\n\n", q.Title, q.Subject, q.DateSubmitted.Format(dateLayout))
	fmt.Fprintf(&b, "Current Status: %s\nUrgency: %s\nLast updated: %s\n\n", q.Status, q.Urgency, q.LastUpdated.Format(dateTimeLayout))
	fmt.Fprintf(&b, "Description\n%s\n\n", q.Description)

	if t != nil {
		fmt.Fprintf(&b, "Assigned Faculty\n%s, %s\n\n", t.Name, t.Department)
	} else {
		fmt.Fprintf(&b, "Assigned Faculty\n%s\n\n", teacher.UnknownName)
	}

	if q.HasResponse() {
		fmt.Fprintf(&b, "Faculty Response\n\"%s\"", q.TeacherResponse.String)
	} else {
		b.WriteString("No response yet from faculty.")
	}

	if q.AIAnalysis.Valid {
		var res analysis.Result
		if err := json.Unmarshal([]byte(q.AIAnalysis.String), &res); err == nil {
			fmt.Fprintf(&b, "\n\nAI-assisted draft (clarity %d/10)", res.ClarityScore)
		}
	}
	return b.String()
}

func formatStats(st app.Stats) string {
	return fmt.Sprintf("Dashboard Overview\n\nTotal Queries: %d\nPending Action: %d\nIn Progress: %d\nResolved: %d\nRejected: %d",
		st.Total, st.Pending, st.InProgress, st.Resolved, st.Rejected)
}

func formatTeachers(ts []*teacher.Teacher) string {
	if len(ts) == 0 {
		return "The faculty directory is empty."
	}
	var b strings.Builder
	b.WriteString("Faculty directory\n")
	for _, t := range ts {
		fmt.Fprintf(&b, "\n%s (%s)\n%s\n", t.Name, t.ID, t.Department)
	}
	return b.String()
}

func formatProfile(s student.Student) string {
	return fmt.Sprintf("%s\nStudent ID: %s\nUser ID: %s", s.Name, s.StudentID, s.ID)
}

func formatDraft(in app.DraftInput, teacherName string) string {
	var b strings.Builder
	b.WriteString("New query draft\n\n")
	fmt.Fprintf(&b, "Title: %s\n", orPlaceholder(in.Title))
	fmt.Fprintf(&b, "Description: %s\n", orPlaceholder(in.Description))
	if in.TeacherID == "" {
		b.WriteString("Assign to Teacher: (not selected)")
	} else {
		fmt.Fprintf(&b, "Assign to Teacher: %s", teacherName)
	}
	return b.String()
}

// formatReview shows exactly what Submit will store, using the same fallbacks.
func formatReview(in app.DraftInput, res *analysis.Result, teacherName string) string {
	preview := app.Finalize(in, res, "", time.Time{})

	var b strings.Builder
	b.WriteString("Review your query\n\n")
	if res == nil {
		b.WriteString("AI analysis is unavailable. Your query will be submitted as written.\n\n")
	} else {
		fmt.Fprintf(&b, "Clarity Score: %d/10\nPredicted Subject: %s\nUrgency Level: %s\n\n", res.ClarityScore, res.SuggestedSubject, res.UrgencyAssessment)
	}
	fmt.Fprintf(&b, "Title: %s\nSubject: %s\nUrgency: %s\nAssign to Teacher: %s\n\n", preview.Title, preview.Subject, preview.Urgency, teacherName)
	if res != nil && res.RefinedDescription != "" {
		fmt.Fprintf(&b, "Refined Description (Recommended)\n%s", preview.Description)
	} else {
		fmt.Fprintf(&b, "Description\n%s", preview.Description)
	}
	return b.String()
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(empty)"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
