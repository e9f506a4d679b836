package export

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkgrade/core/internal/config"
	"github.com/inkgrade/core/internal/pkg/response"
)

// Handler generates batch reports and serves them for download.
type Handler struct {
	src    ResultSource
	cfg    *config.AppConfig
	logger *zap.Logger
}

func NewHandler(src ResultSource, cfg *config.AppConfig, logger *zap.Logger) *Handler {
	return &Handler{src: src, cfg: cfg, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/export", authMW, h.export)
	rg.GET("/export/:name", authMW, h.download)
}

type exportDTO struct {
	Format string `json:"format"`
}

func (h *Handler) export(c *gin.Context) {
	var dto exportDTO
	_ = c.ShouldBindJSON(&dto)

	format := strings.ToLower(strings.TrimSpace(dto.Format))
	if format == "" {
		format = "markdown"
	}
	if format != "markdown" && format != "html" {
		response.BadRequest(c, "format must be markdown or html")
		return
	}

	report, err := BuildReport(h.src)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	content := report.Markdown
	ext := "md"
	contentType := "text/markdown; charset=utf-8"
	if format == "html" {
		content, err = RenderHTMLDocument("作文批改报告", report.Markdown)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		ext = "html"
		contentType = "text/html; charset=utf-8"
	}

	dir := h.cfg.ExportDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		response.InternalError(c, &ExportError{Reason: "创建导出目录", Err: err})
		return
	}

	filename := "report-" + report.GeneratedAt.Format("20060102-150405") + "." + ext
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		response.InternalError(c, &ExportError{Reason: "写入报告文件", Err: err})
		return
	}

	h.logger.Info("report exported",
		zap.String("file", filename),
		zap.Int("included", report.Included))

	payload := gin.H{
		"file":     filename,
		"included": report.Included,
		"format":   format,
	}

	// Remote upload is best effort; a failed push never loses the local file.
	if h.cfg.S3.Enable {
		if remoteURL := h.uploadRemote(c, filename, content, contentType); remoteURL != "" {
			payload["remote_url"] = remoteURL
		}
	}

	response.OK(c, payload)
}

func (h *Handler) uploadRemote(c *gin.Context, filename, content, contentType string) string {
	uploader, err := newS3Uploader(h.cfg.S3)
	if err != nil {
		h.logger.Warn("report upload skipped", zap.Error(err))
		return ""
	}
	key := "reports/" + time.Now().Format("2006/01") + "/" + filename
	remoteURL, err := uploader.Upload(c.Request.Context(), key, []byte(content), contentType)
	if err != nil {
		h.logger.Warn("report upload failed", zap.Error(err))
		return ""
	}
	return remoteURL
}

func (h *Handler) download(c *gin.Context) {
	name := safeName(c.Param("name"))
	if name == "" {
		response.NotFound(c)
		return
	}

	path := filepath.Join(h.cfg.ExportDir(), name)
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.File(path)
}

// safeName accepts plain file names only, no path segments.
func safeName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ""
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return ""
	}
	return name
}
