package gemini

import (
	"fmt"

	"google.golang.org/genai"
)

// resultSchema mirrors analysis.Result; all four fields are required.
var resultSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestedSubject":   {Type: genai.TypeString, Description: "The most likely subject (e.g., Mathematics, Housing, Finance)"},
		"clarityScore":       {Type: genai.TypeInteger, Description: "Score from 1 to 10 indicating how clear the query is"},
		"refinedDescription": {Type: genai.TypeString, Description: "A polished, professional version of the student's description"},
		"urgencyAssessment":  {Type: genai.TypeString, Enum: []string{"Low", "Medium", "High"}},
	},
	Required: []string{"suggestedSubject", "clarityScore", "refinedDescription", "urgencyAssessment"},
}

func analysisPrompt(title, description string) string {
	return fmt.Sprintf(`Analyze the following student query submission.
Title: %s
Description: %s

Provide a structured analysis including a suggested academic subject or administrative category, a clarity score (1-10), a more professional/clear version of the description, and an estimated urgency level.`, title, description)
}

func analysisConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   resultSchema,
	}
}
