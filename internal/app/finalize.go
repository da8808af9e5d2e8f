// internal/app/finalize.go
package app

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"eduquery/internal/domain/analysis"
	"eduquery/internal/domain/query"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrDraftIncomplete is returned by the Draft -> Review guard.
var ErrDraftIncomplete = fmt.Errorf("title, description and teacher are required")

// DraftInput is what the submitter typed before analysis.
type DraftInput struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	TeacherID   string `validate:"required"`
}

var draftValidator = validator.New()

// ValidateDraft checks that every field is present (whitespace-only counts as missing).
// The error wraps ErrDraftIncomplete and names the missing fields.
func ValidateDraft(in DraftInput) error {
	trimmed := DraftInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		TeacherID:   strings.TrimSpace(in.TeacherID),
	}
	err := draftValidator.Struct(trimmed)
	if err == nil {
		return nil
	}
	var missing []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
	}
	return fmt.Errorf("%w: missing %s", ErrDraftIncomplete, strings.Join(missing, ", "))
}

// IDGenerator produces query ids. Ids must never repeat within the store's lifetime.
type IDGenerator func() (string, error)

// NewQueryID returns a time-ordered id of the form q-<uuidv7>.
func NewQueryID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate query id: %w", err)
	}
	return "q-" + u.String(), nil
}

// Finalize merges the draft with the (optional) analysis into a brand new query.
//
//	description = refined description, else the original text
//	subject     = suggested subject, else "General"
//	urgency     = assessed urgency, else Medium
func Finalize(in DraftInput, res *analysis.Result, id string, now time.Time) query.Query {
	q := query.Query{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Subject:       query.DefaultSubject,
		TeacherID:     in.TeacherID,
		Status:        query.StatusPending,
		Urgency:       query.UrgencyMedium,
		DateSubmitted: now,
		LastUpdated:   now,
	}
	if res == nil {
		return q
	}

	if res.RefinedDescription != "" {
		q.Description = res.RefinedDescription
	}
	if res.SuggestedSubject != "" {
		q.Subject = res.SuggestedSubject
	}
	if res.UrgencyAssessment.IsValid() {
		q.Urgency = res.UrgencyAssessment
	}
	if raw, err := analysis.Marshal(res); err == nil {
		q.AIAnalysis = sql.NullString{String: raw, Valid: true}
	}
	return q
}
