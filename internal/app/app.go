package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkgrade/core/internal/config"
	"github.com/inkgrade/core/internal/database"
	"github.com/inkgrade/core/internal/middleware"
	"github.com/inkgrade/core/internal/modules/grading"
	"github.com/inkgrade/core/internal/modules/progress"
	"github.com/inkgrade/core/internal/modules/session"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	sess   *session.Session
	ctrl   *grading.Controller
	hub    *progress.Hub
	db     *gorm.DB
	logger *zap.Logger
	cancel context.CancelFunc
}

// New initializes the application: config → session → optional archive → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.Use(cors.New(corsPolicy(cfg)))

	sess, err := session.New(logger, cfg.UploadDir())
	if err != nil {
		return nil, err
	}

	// The MySQL archive is opt-in; the tool is fully functional without it.
	var db *gorm.DB
	if cfg.Database.Enable {
		db, err = database.Connect(cfg, true)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		sess.SetArchiver(session.NewGormArchiver(db))
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := progress.NewHub(logger)
	encoder := grading.NewEncoder(cfg.Grading)
	clientFor := func() (grading.Client, error) { return grading.NewClient(cfg.Grading) }
	ctrl := grading.NewController(ctx, sess, encoder, clientFor, hub, logger)

	app := &App{
		cfg:    cfg,
		router: router,
		sess:   sess,
		ctrl:   ctrl,
		hub:    hub,
		db:     db,
		logger: logger,
		cancel: cancel,
	}
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the run loop, disconnects subscribers and sweeps the
// session workspace.
func (a *App) Shutdown() {
	a.cancel()
	a.hub.Close()
	a.sess.Teardown()
}

var processStart = time.Now()
