// SPDX-License-Identifier: MIT

package pipeline

import (
	"time"

	"github.com/ManuGH/incidentmap/internal/history"
	"github.com/ManuGH/incidentmap/internal/ingest"
)

// Per-source outcomes.
const (
	OutcomeIngested = "ingested"
	OutcomeFailed   = "failed"
)

// SourceReport describes what happened to one bundle file.
type SourceReport struct {
	Source  ingest.Source `json:"source"`
	Outcome string        `json:"outcome"`
	Rows    int           `json:"rows"`
	Applied int           `json:"applied"`
	Skipped int           `json:"skipped"`
	Error   string        `json:"error,omitempty"`
}

// Report summarises one load, successful or not.
type Report struct {
	LoadID      string         `json:"loadId"`
	Source      string         `json:"source"`
	StartedAt   time.Time      `json:"startedAt"`
	FinishedAt  time.Time      `json:"finishedAt"`
	Status      string         `json:"status"`
	Records     int            `json:"records"`
	SkippedRows int            `json:"skippedRows"`
	Sources     []SourceReport `json:"sources"`
	Warnings    []string       `json:"warnings"`
	Error       string         `json:"error,omitempty"`
}

// OK reports whether the load published a dataset.
func (r *Report) OK() bool {
	return r.Status == history.StatusOK
}

func (r *Report) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Report) add(s SourceReport) {
	r.Sources = append(r.Sources, s)
	r.SkippedRows += s.Skipped
}

func (r *Report) entry() history.Entry {
	return history.Entry{
		ID:          r.LoadID,
		Source:      r.Source,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Status:      r.Status,
		Records:     r.Records,
		Sources:     len(r.Sources),
		SkippedRows: r.SkippedRows,
		Error:       r.Error,
	}
}
