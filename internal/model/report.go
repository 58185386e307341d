package model

import "time"

// DocumentReport summarizes the anonymization of one document
type DocumentReport struct {
	JobID       string            `json:"job_id,omitempty"`      // Batch job identifier
	Source      string            `json:"source"`                // Path, or "-" for stdin
	ProcessedAt time.Time         `json:"processed_at"`          // When processing finished
	Units       int               `json:"units"`                 // Text units anonymized
	Spans       int               `json:"spans"`                 // Merged entity spans found
	Replaced    int               `json:"replaced"`              // Occurrences rewritten in the text
	Skipped     int               `json:"skipped"`               // Spans skipped (degenerate or unmatchable)
	Pseudonyms  []PseudonymEntry  `json:"pseudonyms,omitempty"`  // Registry contents after processing
	Anonymized  string            `json:"anonymized,omitempty"`  // Rewritten text (batch output only)
	Error       string            `json:"error,omitempty"`       // Set when the document failed
}

// PseudonymEntry is one registry mapping
type PseudonymEntry struct {
	Type      EntityType `json:"type" yaml:"type"`
	Pseudonym string     `json:"pseudonym" yaml:"pseudonym"`
	Original  string     `json:"original,omitempty" yaml:"original"`
}
