// internal/domain/analysis/analysis.go
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"eduquery/internal/domain/query"

	"github.com/go-playground/validator/v10"
)

// Result is the structured suggestion set produced for a query draft.
// It lives only for the duration of one creation attempt.
type Result struct {
	SuggestedSubject   string        `json:"suggestedSubject" validate:"required"`
	ClarityScore       int           `json:"clarityScore" validate:"required,min=1,max=10"`
	RefinedDescription string        `json:"refinedDescription" validate:"required"`
	UrgencyAssessment  query.Urgency `json:"urgencyAssessment" validate:"required,oneof=Low Medium High"`
}

// Analyzer is the boundary to the external draft-analysis capability.
//
// A nil result means "analysis unavailable": either no provider is configured
// or the call failed. Implementations absorb their own errors; callers fall
// back to the raw user input.
type Analyzer interface {
	Analyze(ctx context.Context, title, description string) *Result
}

var validate = validator.New()

// Validate checks that r has every field and that the score and urgency are in range.
func Validate(r *Result) error {
	if r == nil {
		return fmt.Errorf("analysis result is nil")
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid analysis result: %w", err)
	}
	return nil
}

// Marshal serializes r for storage alongside the query it finalized.
func Marshal(r *Result) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to serialize analysis result: %w", err)
	}
	return string(b), nil
}
