package event

import (
	"strings"
)

// TrackingEvent is one entry of a shipment's tracking history as shown by
// the carrier. Both fields are free-form and may be empty.
type TrackingEvent struct {
	DateTime    string `json:"datetime"`
	Description string `json:"description"`
}

// NewTrackingEvent creates a TrackingEvent with surrounding whitespace trimmed
func NewTrackingEvent(dateTime, description string) TrackingEvent {
	return TrackingEvent{
		DateTime:    strings.TrimSpace(dateTime),
		Description: strings.TrimSpace(description),
	}
}

// IsEmpty reports whether the event carries neither a datetime nor a description
func (e TrackingEvent) IsEmpty() bool {
	return e.DateTime == "" && e.Description == ""
}

// Parser identifies which extraction strategy produced an outcome's events
type Parser string

const (
	ParserNone       Parser = "none"
	ParserStructured Parser = "structured"
	ParserFallback   Parser = "fallback"
)

// Debug holds diagnostics attached to every outcome
type Debug struct {
	Attempts int `json:"attempts"`
	HTMLSize int `json:"htmlSize"`
}

// Outcome is the result of scraping a single tracking code
type Outcome struct {
	TrackCode  string          `json:"trackCode"`
	Success    bool            `json:"success"`
	HTTPStatus int             `json:"http"`
	Carrier    string          `json:"carrier,omitempty"`
	URL        string          `json:"url,omitempty"`
	Events     []TrackingEvent `json:"events"`
	HasData    bool            `json:"hasData"`
	Parser     Parser          `json:"parserUsed"`
	Error      string          `json:"error,omitempty"`
	Debug      Debug           `json:"debug"`
}

// Failed creates an unsuccessful outcome for code with the given error text
func Failed(code, errText string) Outcome {
	return Outcome{
		TrackCode: code,
		Success:   false,
		Events:    []TrackingEvent{},
		Parser:    ParserNone,
		Error:     errText,
	}
}

// BatchResult is the response for a list of tracking codes.
// Results are in the same order as the codes that were submitted.
type BatchResult struct {
	Success bool      `json:"success"`
	Count   int       `json:"count"`
	Results []Outcome `json:"results"`
}

// NewBatchResult wraps outcomes into a BatchResult
func NewBatchResult(outcomes []Outcome) BatchResult {
	if outcomes == nil {
		outcomes = []Outcome{}
	}
	return BatchResult{
		Success: true,
		Count:   len(outcomes),
		Results: outcomes,
	}
}
