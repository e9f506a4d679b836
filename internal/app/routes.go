package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkgrade/core/internal/middleware"
	"github.com/inkgrade/core/internal/modules/export"
	"github.com/inkgrade/core/internal/modules/grading"
	"github.com/inkgrade/core/internal/modules/intake"
	"github.com/inkgrade/core/internal/modules/session"
	"github.com/inkgrade/core/internal/pkg/response"
)

func (a *App) registerRoutes() {
	r := a.router
	authMW := middleware.Auth(a.cfg.AccessToken)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "inkgrade-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/inkgrade/core",
		"issues":   "https://github.com/inkgrade/core/issues",
	}

	apiPrefix := "/api/v1"
	api := r.Group(apiPrefix)

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	// Pending list
	intake.NewHandler(a.sess, a.logger).RegisterRoutes(api, authMW)

	// Batch run control
	grading.NewHandler(a.ctrl).RegisterRoutes(api, authMW)

	// Stored results
	session.NewHandler(a.sess).RegisterRoutes(api, authMW)

	// Report export and download
	export.NewHandler(a.sess, a.cfg, a.logger).RegisterRoutes(api, authMW)

	// Live progress
	a.hub.RegisterRoutes(api, authMW)
	api.GET("/progress/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subscribers": a.hub.ClientCount()})
	})
}
