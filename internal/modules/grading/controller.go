package grading

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkgrade/core/internal/models"
	"github.com/inkgrade/core/internal/modules/session"
	"go.uber.org/zap"
)

// RunStatus is the lifecycle of one batch grading run.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunStopping RunStatus = "stopping"
	RunFinished RunStatus = "finished"
)

// Finish reasons. Stop requests are honored only between documents, so an
// in-flight request always completes before a run ends.
const (
	ReasonCompleted         = "completed"
	ReasonStopped           = "stopped"
	ReasonStoppedAfterError = "stopped_after_error"
)

// Notifier receives progress events; the websocket hub implements it.
type Notifier interface {
	Notify(event string, payload interface{})
}

// RunSnapshot is the externally visible state of a run.
type RunSnapshot struct {
	ID         string     `json:"id"`
	Status     RunStatus  `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	Cursor     int        `json:"cursor"`
	Total      int        `json:"total"`
	Percent    int        `json:"percent"`
	Graded     int        `json:"graded"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	Current    string     `json:"current,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type run struct {
	id        string
	status    RunStatus
	reason    string
	cursor    int
	total     int
	graded    int
	failed    int
	skipped   int
	current   string
	startedAt time.Time
	finished  time.Time

	stop chan struct{} // closed once on stop request
	done chan struct{} // closed when the loop exits
}

func (r *run) stopRequested() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

// Controller drives sequential batch grading over the session's document
// list: one request in flight, previously graded documents skipped, stop
// honored at item boundaries only.
type Controller struct {
	mu        sync.Mutex
	base      context.Context // application lifetime, cancelled on shutdown
	sess      *session.Session
	encoder   *Encoder
	notifier  Notifier
	logger    *zap.Logger
	clientFor func() (Client, error)
	run       *run
}

func NewController(base context.Context, sess *session.Session, encoder *Encoder, clientFor func() (Client, error), notifier Notifier, logger *zap.Logger) *Controller {
	if base == nil {
		base = context.Background()
	}
	return &Controller{
		base:      base,
		sess:      sess,
		encoder:   encoder,
		clientFor: clientFor,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start begins a new run over the current pending list. At most one run may
// be active; configuration is validated before the first dispatch.
func (c *Controller) Start() (RunSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run != nil && c.run.status != RunFinished {
		return RunSnapshot{}, ErrRunInProgress
	}

	client, err := c.clientFor()
	if err != nil {
		return RunSnapshot{}, err
	}

	docs := c.sess.Documents()
	if len(docs) == 0 {
		return RunSnapshot{}, ErrNoDocuments
	}

	r := &run{
		id:        uuid.New().String(),
		status:    RunRunning,
		total:     len(docs),
		startedAt: time.Now(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	c.run = r

	go c.loop(c.base, r, docs, client)
	return c.snapshotLocked(), nil
}

// Stop requests a cooperative stop. The in-flight document finishes first.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run == nil || c.run.status == RunFinished {
		return false
	}
	if !c.run.stopRequested() {
		close(c.run.stop)
	}
	c.run.status = RunStopping
	c.notify("status", map[string]interface{}{
		"message": "正在停止... 当前任务完成后将中止",
		"run_id":  c.run.id,
	})
	return true
}

// Snapshot returns the current (or last) run state.
func (c *Controller) Snapshot() (RunSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return RunSnapshot{}, false
	}
	return c.snapshotLocked(), true
}

func (c *Controller) loop(ctx context.Context, r *run, docs []models.Document, client Client) {
	defer close(r.done)

	lastFailed := false
	for i, doc := range docs {
		// Boundary check: both an explicit stop and context cancellation
		// end the run here, never mid-request.
		if r.stopRequested() || ctx.Err() != nil {
			c.finish(r, stopReason(lastFailed))
			return
		}

		c.setProgress(r, i, doc.Label)

		if c.sess.HasResult(doc.ID) {
			c.bumpSkipped(r)
			continue
		}

		c.notify("status", map[string]interface{}{
			"message": "正在处理: " + doc.Label,
			"label":   doc.Label,
			"percent": percent(i, r.total),
			"run_id":  r.id,
		})

		lastFailed = !c.gradeOne(ctx, r, doc, client)
	}

	if r.stopRequested() {
		c.finish(r, stopReason(lastFailed))
		return
	}
	c.finish(r, ReasonCompleted)
}

// gradeOne processes a single document and reports success.
func (c *Controller) gradeOne(ctx context.Context, r *run, doc models.Document, client Client) bool {
	imageB64, err := c.encoder.EncodeFile(doc.Path)
	if err != nil {
		c.recordFailure(r, doc, err)
		return false
	}

	result, err := client.Grade(ctx, imageB64)
	if err != nil {
		c.recordFailure(r, doc, err)
		return false
	}

	c.sess.StoreResult(doc.ID, result, client.Model())
	c.mu.Lock()
	r.graded++
	c.mu.Unlock()
	c.notify("marker", map[string]interface{}{
		"document_id": doc.ID,
		"label":       doc.Label,
		"status":      string(models.DocumentGraded),
		"total":       result.Scores.Total,
		"run_id":      r.id,
	})
	return true
}

func (c *Controller) recordFailure(r *run, doc models.Document, err error) {
	c.sess.RecordFailure(doc.ID, err.Error())
	c.mu.Lock()
	r.failed++
	c.mu.Unlock()
	c.logger.Warn("grading document failed",
		zap.String("label", doc.Label), zap.Error(err))
	c.notify("marker", map[string]interface{}{
		"document_id": doc.ID,
		"label":       doc.Label,
		"status":      string(models.DocumentFailed),
		"error":       err.Error(),
		"run_id":      r.id,
	})
}

func (c *Controller) setProgress(r *run, cursor int, label string) {
	c.mu.Lock()
	r.cursor = cursor
	r.current = label
	c.mu.Unlock()
}

func (c *Controller) bumpSkipped(r *run) {
	c.mu.Lock()
	r.skipped++
	c.mu.Unlock()
}

func (c *Controller) finish(r *run, reason string) {
	c.mu.Lock()
	r.status = RunFinished
	r.reason = reason
	r.current = ""
	r.finished = time.Now()
	graded := r.graded
	c.mu.Unlock()

	message := "所有文件批改完成"
	switch reason {
	case ReasonStopped:
		message = "已停止。"
	case ReasonStoppedAfterError:
		message = "已停止（发生错误后中断）。"
	}
	c.logger.Info("grading run finished",
		zap.String("run_id", r.id),
		zap.String("reason", reason),
		zap.Int("graded", graded))
	c.notify("finished", map[string]interface{}{
		"run_id":  r.id,
		"reason":  reason,
		"message": message,
		"graded":  graded,
	})
}

func (c *Controller) snapshotLocked() RunSnapshot {
	r := c.run
	snap := RunSnapshot{
		ID:        r.id,
		Status:    r.status,
		Reason:    r.reason,
		Cursor:    r.cursor,
		Total:     r.total,
		Percent:   percent(r.cursor, r.total),
		Graded:    r.graded,
		Failed:    r.failed,
		Skipped:   r.skipped,
		Current:   r.current,
		StartedAt: r.startedAt,
	}
	if r.status == RunFinished {
		finished := r.finished
		snap.FinishedAt = &finished
		snap.Percent = 100
	}
	return snap
}

func (c *Controller) notify(event string, payload interface{}) {
	if c.notifier != nil {
		c.notifier.Notify(event, payload)
	}
}

func percent(index, total int) int {
	if total <= 0 {
		return 0
	}
	return index * 100 / total
}

func stopReason(lastFailed bool) string {
	if lastFailed {
		return ReasonStoppedAfterError
	}
	return ReasonStopped
}
