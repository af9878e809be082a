package store

import (
	"encoding/json"
	"fmt"

	"torchlight-intake/internal/form"
	"torchlight-intake/internal/parsing"
)

// Column sets for the two insert attempts. The minimal set only uses columns
// every deployed schema has.
var (
	FullColumns = []string{
		"id", "email", "background", "interests", "experience", "scorecard",
		"form_data", "searcher_name", "home_base", "target_close_window", "submitted_at",
	}
	MinimalColumns = []string{
		"id", "email", "background", "interests", "experience", "scorecard", "submitted_at",
	}
)

// SubmissionRecord is one stored row. Columns missing from the table read
// back as zero values.
type SubmissionRecord struct {
	ID                string          `json:"id"`
	Email             string          `json:"email"`
	Background        string          `json:"background,omitempty"`
	Interests         string          `json:"interests,omitempty"`
	Experience        string          `json:"experience,omitempty"`
	Scorecard         json.RawMessage `json:"scorecard,omitempty"`
	FormData          json.RawMessage `json:"formData,omitempty"`
	SearcherName      string          `json:"searcherName,omitempty"`
	HomeBase          string          `json:"homeBase,omitempty"`
	TargetCloseWindow string          `json:"targetCloseWindow,omitempty"`
	SubmittedAt       string          `json:"submittedAt"`
}

func (r *SubmissionRecord) set(column, value string) {
	switch column {
	case "id":
		r.ID = value
	case "email":
		r.Email = value
	case "background":
		r.Background = value
	case "interests":
		r.Interests = value
	case "experience":
		r.Experience = value
	case "scorecard":
		r.Scorecard = rawJSON(value)
	case "form_data":
		r.FormData = rawJSON(value)
	case "searcher_name":
		r.SearcherName = value
	case "home_base":
		r.HomeBase = value
	case "target_close_window":
		r.TargetCloseWindow = value
	case "submitted_at", "created_at":
		if r.SubmittedAt == "" || column == "submitted_at" {
			r.SubmittedAt = value
		}
	}
}

func rawJSON(value string) json.RawMessage {
	if value == "" || !json.Valid([]byte(value)) {
		return nil
	}
	return json.RawMessage(value)
}

// ScorecardFactors decodes the scorecard column, nil when absent or unreadable.
func (r SubmissionRecord) ScorecardFactors() form.Scorecard {
	if len(r.Scorecard) == 0 {
		return nil
	}
	var sc form.Scorecard
	if err := json.Unmarshal(r.Scorecard, &sc); err != nil {
		return nil
	}
	return sc
}

// Submission rebuilds the questionnaire. Rows written with the full column
// set carry the whole payload; older rows only give back the excerpts.
func (r SubmissionRecord) Submission() (form.Submission, error) {
	if len(r.FormData) > 0 {
		sub, err := parsing.DecodeSubmission(r.FormData)
		if err != nil {
			return form.Submission{}, fmt.Errorf("decode form_data of %s: %w", r.ID, err)
		}
		return sub, nil
	}

	var sub form.Submission
	sub.Email = r.Email
	sub.QuickSummary.PrimaryThesis = r.Interests
	sub.QuickSummary.SearcherName = r.SearcherName
	sub.QuickSummary.HomeBase = r.HomeBase
	sub.QuickSummary.TargetCloseWindow = r.TargetCloseWindow
	sub.BackgroundEdge.ExperienceMap.FunctionalStrengths = r.Background
	sub.BackgroundEdge.ExperienceMap.DealExposure = r.Experience
	if len(r.Scorecard) > 0 {
		if err := json.Unmarshal(r.Scorecard, &sub.Scorecard); err != nil {
			return form.Submission{}, fmt.Errorf("decode scorecard of %s: %w", r.ID, err)
		}
	}
	return sub, nil
}
