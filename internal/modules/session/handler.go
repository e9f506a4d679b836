package session

import (
	"github.com/gin-gonic/gin"
	"github.com/inkgrade/core/internal/pkg/response"
)

// Handler exposes stored grading results for display.
type Handler struct {
	sess *Session
}

func NewHandler(sess *Session) *Handler {
	return &Handler{sess: sess}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	r.GET("/results/:id", authMW, h.getResult)
}

func (h *Handler) getResult(c *gin.Context) {
	id := c.Param("id")
	doc, ok := h.sess.Document(id)
	if !ok {
		response.NotFound(c)
		return
	}
	result, ok := h.sess.Result(id)
	if !ok {
		response.NotFoundMsg(c, "等待处理或处理失败")
		return
	}
	response.OK(c, gin.H{
		"document": doc,
		"result":   result,
	})
}
