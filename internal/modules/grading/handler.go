package grading

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/inkgrade/core/internal/pkg/response"
)

// Handler exposes run control over HTTP.
type Handler struct {
	ctrl *Controller
}

func NewHandler(ctrl *Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	grading := r.Group("/grading", authMW)
	{
		grading.POST("/run", h.startRun)
		grading.GET("/run", h.getRun)
		grading.POST("/stop", h.stopRun)
	}
}

func (h *Handler) startRun(c *gin.Context) {
	snap, err := h.ctrl.Start()
	switch {
	case errors.Is(err, ErrRunInProgress):
		response.Conflict(c, err.Error())
		return
	case errors.Is(err, ErrNotConfigured):
		response.BadRequest(c, err.Error())
		return
	case errors.Is(err, ErrNoDocuments):
		response.UnprocessableEntity(c, err.Error())
		return
	case err != nil:
		response.InternalError(c, err)
		return
	}
	response.OK(c, snap)
}

func (h *Handler) getRun(c *gin.Context) {
	snap, ok := h.ctrl.Snapshot()
	if !ok {
		response.NotFoundMsg(c, "尚未开始批改")
		return
	}
	response.OK(c, snap)
}

func (h *Handler) stopRun(c *gin.Context) {
	if !h.ctrl.Stop() {
		response.UnprocessableEntity(c, "no grading run is active")
		return
	}
	response.OK(c, gin.H{"stopping": true})
}
