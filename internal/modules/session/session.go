package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkgrade/core/internal/models"
	"go.uber.org/zap"
)

// Archiver persists graded results beyond the session. Optional.
type Archiver interface {
	Archive(doc models.Document, result *models.GradingResult, model string) error
}

// Session owns the pending document list, the in-memory result store and the
// scratch workspace for extracted PDF pages. Results live exactly as long as
// the session: a restart clears everything except the optional archive.
type Session struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	workDir string

	docs     []*models.Document
	byID     map[string]*models.Document
	bySource map[string]string // source identity -> doc id, duplicate suppression
	results  map[string]*models.GradingResult
	failures map[string]string

	archiver Archiver
}

// New creates a session with a fresh scratch workspace. A non-empty baseDir
// places the workspace under the configured upload directory, otherwise the
// system temp directory is used.
func New(logger *zap.Logger, baseDir string) (*Session, error) {
	base := strings.TrimSpace(baseDir)
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory: %w", err)
		}
	}
	workDir, err := os.MkdirTemp(base, "session-*")
	if err != nil {
		return nil, fmt.Errorf("create session workspace: %w", err)
	}
	return &Session{
		logger:   logger,
		workDir:  workDir,
		byID:     make(map[string]*models.Document),
		bySource: make(map[string]string),
		results:  make(map[string]*models.GradingResult),
		failures: make(map[string]string),
	}, nil
}

// SetArchiver attaches the optional persistent archive.
func (s *Session) SetArchiver(archiver Archiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archiver = archiver
}

// WorkDir returns the scratch directory for extracted page images.
func (s *Session) WorkDir() string { return s.workDir }

// AddDocument appends a document to the pending list. Re-adding the same
// source page is suppressed; the existing document is returned with ok=false.
func (s *Session) AddDocument(label, path, source string, kind models.DocumentKind, page int) (*models.Document, bool) {
	identity := fmt.Sprintf("%s#%d", source, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.bySource[identity]; exists {
		return s.byID[id], false
	}

	doc := &models.Document{
		ID:      uuid.New().String(),
		Label:   label,
		Path:    path,
		Source:  source,
		Kind:    kind,
		Page:    page,
		AddedAt: time.Now(),
	}
	s.docs = append(s.docs, doc)
	s.byID[doc.ID] = doc
	s.bySource[identity] = doc.ID
	return doc, true
}

// Documents returns the pending list in insertion order.
func (s *Session) Documents() []models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, *doc)
	}
	return out
}

// DocumentViews returns the listing with derived status markers.
func (s *Session) DocumentViews() []models.DocumentView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DocumentView, 0, len(s.docs))
	for _, doc := range s.docs {
		view := models.DocumentView{Document: *doc, Status: models.DocumentPending}
		if _, ok := s.results[doc.ID]; ok {
			view.Status = models.DocumentGraded
		} else if msg, ok := s.failures[doc.ID]; ok {
			view.Status = models.DocumentFailed
			view.Error = msg
		}
		out = append(out, view)
	}
	return out
}

// Document looks up one document by id.
func (s *Session) Document(id string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byID[id]
	if !ok {
		return models.Document{}, false
	}
	return *doc, true
}

// Remove deletes a document and its stored result.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	delete(s.results, id)
	delete(s.failures, id)
	delete(s.bySource, fmt.Sprintf("%s#%d", doc.Source, doc.Page))
	for i, d := range s.docs {
		if d.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			break
		}
	}
	return true
}

// Clear drops the whole list and all stored results.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	s.byID = make(map[string]*models.Document)
	s.bySource = make(map[string]string)
	s.results = make(map[string]*models.GradingResult)
	s.failures = make(map[string]string)
}

// StoreResult records a successful grading. Failed documents are never
// stored, which is what makes a re-run retry them.
func (s *Session) StoreResult(docID string, result *models.GradingResult, model string) {
	s.mu.Lock()
	doc, ok := s.byID[docID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.results[docID] = result
	delete(s.failures, docID)
	archiver := s.archiver
	snapshot := *doc
	s.mu.Unlock()

	if archiver == nil {
		return
	}
	if err := archiver.Archive(snapshot, result, model); err != nil {
		s.logger.Warn("archive grading result failed",
			zap.String("label", snapshot.Label), zap.Error(err))
	}
}

// RecordFailure marks a document as failed for the listing marker.
func (s *Session) RecordFailure(docID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[docID]; ok {
		s.failures[docID] = message
	}
}

// Result returns the stored result for a document.
func (s *Session) Result(docID string) (*models.GradingResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[docID]
	return result, ok
}

// HasResult reports whether a document has already been graded.
func (s *Session) HasResult(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.results[docID]
	return ok
}

// ResultCount returns how many documents currently hold results.
func (s *Session) ResultCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Teardown sweeps the scratch workspace. Failure is logged, never fatal.
func (s *Session) Teardown() {
	if err := os.RemoveAll(s.workDir); err != nil {
		s.logger.Warn("sweep session workspace failed",
			zap.String("dir", s.workDir), zap.Error(err))
	}
}
