// Package domain provides domain models used across the application.
package domain

import (
	"time"
)

// Execution is the audit record marking the start of one investigation run.
// It is created before any crawl or fetch begins and never mutated afterwards.
type Execution struct {
	ID          int64     `db:"id"           json:"id"`
	Query       string    `db:"query"        json:"query"`
	StartedAt   time.Time `db:"started_at"   json:"started_at"`
	ObjectiveID *int64    `db:"objective_id" json:"objective_id,omitempty"`
}

// Objective is a read-only reference to the investigation target.
type Objective struct {
	ID          int64   `db:"id"          json:"id"`
	Name        string  `db:"name"        json:"name"`
	Affiliation *string `db:"affiliation" json:"affiliation,omitempty"`
}

// Document is the master record for one successfully fetched page.
// A document is only persisted when its extracted text is at least
// MinDocumentTextLength characters long.
type Document struct {
	ID          int64     `db:"id"           json:"id"`
	ExecutionID int64     `db:"execution_id" json:"execution_id"`
	Title       string    `db:"title"        json:"title"`
	URL         string    `db:"url"          json:"url"`
	FullText    string    `db:"full_text"    json:"full_text"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

// MinDocumentTextLength is the minimum extracted text length required
// before a document is persisted and fragmented.
const MinDocumentTextLength = 100

// DocumentVector holds the whole-document embedding. At most one per
// document; written best effort after the document itself.
type DocumentVector struct {
	DocumentID int64  `db:"document_id" json:"document_id"`
	Embedding  Vector `db:"embedding"   json:"embedding"`
}

// Fragment is a bounded slice of a document's text, the unit of embedding
// and risk scoring. Sequence numbers are 1-based and contiguous within a
// document.
type Fragment struct {
	ID         int64  `db:"id"          json:"id"`
	DocumentID int64  `db:"document_id" json:"document_id"`
	Sequence   int    `db:"sequence"    json:"sequence"`
	Text       string `db:"text"        json:"text"`
}

// FragmentVector holds a fragment's embedding together with its risk
// assessment. Written only if the embedding call succeeded.
type FragmentVector struct {
	FragmentID  int64     `db:"fragment_id"   json:"fragment_id"`
	Embedding   Vector    `db:"embedding"     json:"embedding"`
	Confidence  float64   `db:"confidence"    json:"confidence"`
	IsRisk      bool      `db:"is_risk"       json:"is_risk"`
	RiskLabelID *int64    `db:"risk_label_id" json:"risk_label_id,omitempty"`
	AnalyzedAt  time.Time `db:"analyzed_at"   json:"analyzed_at"`
}

// RiskLabel categorizes a risk finding. Labels are resolved by name and
// created on first use.
type RiskLabel struct {
	ID          int64  `db:"id"          json:"id"`
	Name        string `db:"name"        json:"name"`
	Description string `db:"description" json:"description"`
	Priority    int    `db:"priority"    json:"priority"`
}

// ReferenceMatch is the nearest labeled reference-corpus entry to a
// candidate embedding, as returned by the knowledge-base lookup.
type ReferenceMatch struct {
	Label    string  `db:"label"    json:"label"`
	Evidence string  `db:"evidence" json:"evidence"`
	Distance float64 `db:"distance" json:"distance"`
}
