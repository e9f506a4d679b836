package models

import "time"

// DocumentStatus is the per-document marker shown in listings.
type DocumentStatus string

const (
	DocumentPending DocumentStatus = "pending"
	DocumentGraded  DocumentStatus = "graded"
	DocumentFailed  DocumentStatus = "failed"
)

// DocumentKind distinguishes directly uploaded images from expanded PDF pages.
type DocumentKind string

const (
	DocumentKindImage   DocumentKind = "image"
	DocumentKindPDFPage DocumentKind = "pdf_page"
)

// Document is one gradable essay page queued in the session.
// For PDF pages Path points at the extracted page image inside the session
// workspace and Source at the uploaded PDF.
type Document struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Path    string       `json:"-"`
	Source  string       `json:"source"`
	Kind    DocumentKind `json:"kind"`
	Page    int          `json:"page,omitempty"`
	AddedAt time.Time    `json:"added_at"`
}

// DocumentView is the listing shape with the derived status marker.
type DocumentView struct {
	Document
	Status DocumentStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
}
