// internal/domain/query/query.go
package query

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a student query.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
)

// AllStatuses lists statuses in display order.
var AllStatuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus accepts the display form ("In Progress") as well as the
// command form ("in_progress"), case-insensitively.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	for _, s := range AllStatuses {
		if strings.ToLower(string(s)) == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown query status %q", raw)
}

// Urgency is the three-level priority of a query.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

func (u Urgency) IsValid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// DefaultSubject is used when no analysis suggested a category.
const DefaultSubject = "General"

// Query is a student-submitted issue routed to a faculty member.
// Values are handed out by the Store as copies; mutate only through Store.Update.
type Query struct {
	ID              string
	Title           string
	Description     string
	Subject         string
	TeacherID       string
	Status          Status
	Urgency         Urgency
	DateSubmitted   time.Time
	LastUpdated     time.Time
	TeacherResponse sql.NullString // Absent until faculty (or the simulator) responds
	AIAnalysis      sql.NullString // Serialized analysis that finalized the query, if any
}

// HasResponse reports whether a faculty response is attached.
func (q Query) HasResponse() bool {
	return q.TeacherResponse.Valid && q.TeacherResponse.String != ""
}

// Patch is a partial mutation applied by Store.Update. Nil fields are left untouched.
type Patch struct {
	Status          *Status
	TeacherResponse *string
}

// Touches reports whether the patch changes status or response, which
// obliges the store to refresh LastUpdated.
func (p Patch) Touches() bool {
	return p.Status != nil || p.TeacherResponse != nil
}

// Apply writes the patch onto q and refreshes LastUpdated when needed.
// LastUpdated never drops below DateSubmitted.
func (p Patch) Apply(q Query, now time.Time) Query {
	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.TeacherResponse != nil {
		q.TeacherResponse = sql.NullString{String: *p.TeacherResponse, Valid: true}
	}
	if p.Touches() {
		if now.Before(q.DateSubmitted) {
			now = q.DateSubmitted
		}
		q.LastUpdated = now
	}
	return q
}
