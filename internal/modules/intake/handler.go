package intake

import (
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inkgrade/core/internal/models"
	"github.com/inkgrade/core/internal/modules/session"
	"github.com/inkgrade/core/internal/pkg/response"
)

// pdfWorkers caps concurrent PDF expansion; page extraction is CPU and
// disk heavy.
const pdfWorkers = 4

// Handler manages the pending document list: batch upload, listing, removal.
type Handler struct {
	sess   *session.Session
	logger *zap.Logger
}

func NewHandler(sess *session.Session, logger *zap.Logger) *Handler {
	return &Handler{sess: sess, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	docs := rg.Group("/documents", authMW)
	{
		docs.POST("", h.upload)
		docs.GET("", h.list)
		docs.DELETE("/:id", h.remove)
		docs.DELETE("", h.clear)
	}
}

// intakeItem is one uploaded file moving through validation and expansion.
type intakeItem struct {
	name   string
	ext    string
	stored string
	pages  []pageImage
	err    error
}

func (h *Handler) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "multipart form is required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		response.BadRequest(c, "at least one file is required")
		return
	}

	items := make([]*intakeItem, 0, len(files))
	for _, fh := range files {
		items = append(items, h.saveOne(c, fh))
	}

	// PDF expansion runs in parallel; documents are appended afterwards in
	// upload order so the pending list stays deterministic.
	eg, _ := errgroup.WithContext(c.Request.Context())
	eg.SetLimit(pdfWorkers)
	for _, item := range items {
		if item.err != nil || !isPDFExt(item.ext) {
			continue
		}
		item := item
		eg.Go(func() error {
			item.pages, item.err = expandPDF(item.stored, h.sess.WorkDir())
			return nil
		})
	}
	_ = eg.Wait()

	added := make([]models.DocumentView, 0, len(items))
	failures := make([]gin.H, 0)
	duplicates := 0
	for _, item := range items {
		if item.err != nil {
			h.logger.Warn("upload rejected",
				zap.String("file", item.name), zap.Error(item.err))
			failures = append(failures, gin.H{"file": item.name, "error": item.err.Error()})
			continue
		}

		if !isPDFExt(item.ext) {
			doc, ok := h.sess.AddDocument(item.name, item.stored, item.name, models.DocumentKindImage, 0)
			if !ok {
				duplicates++
				continue
			}
			added = append(added, models.DocumentView{Document: *doc, Status: models.DocumentPending})
			continue
		}

		for _, page := range item.pages {
			label := fmt.Sprintf("[PDF P%d] %s", page.Page, item.name)
			if page.Err != nil {
				failures = append(failures, gin.H{"file": label, "error": page.Err.Error()})
				continue
			}
			doc, ok := h.sess.AddDocument(label, page.Path, item.name, models.DocumentKindPDFPage, page.Page)
			if !ok {
				duplicates++
				continue
			}
			added = append(added, models.DocumentView{Document: *doc, Status: models.DocumentPending})
		}
	}

	response.Created(c, gin.H{
		"added":      added,
		"duplicates": duplicates,
		"failures":   failures,
	})
}

// saveOne validates the extension and moves the upload into the session
// workspace under a collision-resistant name.
func (h *Handler) saveOne(c *gin.Context, fh *multipart.FileHeader) *intakeItem {
	item := &intakeItem{name: displayName(fh.Filename)}

	item.ext = normalizeExt(fh.Filename)
	if item.ext == "" {
		item.err = fmt.Errorf("unsupported file type: %s", filepath.Ext(fh.Filename))
		return item
	}

	item.stored = filepath.Join(h.sess.WorkDir(), buildStoredName(item.ext))
	if err := c.SaveUploadedFile(fh, item.stored); err != nil {
		item.err = fmt.Errorf("save upload: %w", err)
	}
	return item
}

func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.sess.DocumentViews())
}

func (h *Handler) remove(c *gin.Context) {
	if !h.sess.Remove(c.Param("id")) {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}

func (h *Handler) clear(c *gin.Context) {
	h.sess.Clear()
	response.NoContent(c)
}
