// Package models defines core data structures for documents, ingestion jobs, and queries.
package models

import "time"

// Known department identifiers. The authoritative set for a deployment lives
// in configuration; these cover the portal's standard org chart.
const (
	DepartmentEngineering = "engineering"
	DepartmentProcurement = "procurement"
	DepartmentHR          = "hr"
	DepartmentSafety      = "safety"
	DepartmentOperations  = "operations"
	DepartmentFinance     = "finance"
)

// Document lifecycle status, independent of any ingestion stage.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Document represents a committed record for an ingested file plus its
// metadata and AI-derived annotations.
type Document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Department string `json:"department"`
	FileType   string `json:"file_type"`
	SizeBytes  int64  `json:"size_bytes"`

	UploadDate   time.Time `json:"upload_date"`
	LastModified time.Time `json:"last_modified"`

	Version string `json:"version"`
	Status  string `json:"status"`

	Tags                []string `json:"tags,omitempty"`
	Summary             string   `json:"summary,omitempty"`
	AIAnnotationSummary string   `json:"ai_annotation_summary,omitempty"`

	// ComplianceFlags are immutable after commit. CrossDepartmentRelevance is
	// derived from them once, at commit time, and is not independently editable.
	ComplianceFlags          []string `json:"compliance_flags,omitempty"`
	CrossDepartmentRelevance []string `json:"cross_department_relevance,omitempty"`

	Comments []Comment      `json:"comments,omitempty"`
	Versions []VersionEntry `json:"versions,omitempty"`
}

// Comment is an append-only annotation on a document.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// VersionEntry records one entry in a document's version history.
type VersionEntry struct {
	Version           string    `json:"version"`
	Timestamp         time.Time `json:"timestamp"`
	Author            string    `json:"author"`
	ChangeDescription string    `json:"change_description"`
}

// DocumentInput is the input for creating a document. The store assigns the
// id and fills zero timestamps.
type DocumentInput struct {
	Title      string `json:"title"`
	Department string `json:"department"`
	FileType   string `json:"file_type"`
	SizeBytes  int64  `json:"size_bytes"`

	UploadDate time.Time `json:"upload_date,omitempty"`
	Version    string    `json:"version,omitempty"`
	Status     string    `json:"status,omitempty"`

	Tags                []string `json:"tags,omitempty"`
	Summary             string   `json:"summary,omitempty"`
	AIAnnotationSummary string   `json:"ai_annotation_summary,omitempty"`

	ComplianceFlags          []string `json:"compliance_flags,omitempty"`
	CrossDepartmentRelevance []string `json:"cross_department_relevance,omitempty"`
}

// DocumentUpdate is a partial update; nil fields are left unchanged.
// The id, compliance flags, and derived relevance cannot be updated.
type DocumentUpdate struct {
	Title               *string   `json:"title,omitempty"`
	Department          *string   `json:"department,omitempty"`
	FileType            *string   `json:"file_type,omitempty"`
	Status              *string   `json:"status,omitempty"`
	Tags                *[]string `json:"tags,omitempty"`
	Summary             *string   `json:"summary,omitempty"`
	AIAnnotationSummary *string   `json:"ai_annotation_summary,omitempty"`
}
