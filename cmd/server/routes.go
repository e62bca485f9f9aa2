package main

import (
	"context"
	"errors"
	"net/http"

	"go-job-harvester/internal/app"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/orchestrator"

	"github.com/gin-gonic/gin"
)

// Runner is the part of app.App the HTTP API drives.
type Runner interface {
	Start(ctx context.Context, done func(orchestrator.Result, error)) error
	Running() bool
	LastSummary() (models.RunSummary, bool)
}

// trigger starts a run in the background unless one is already going.
func trigger(ctx context.Context, r Runner, log logger.Logger, source string) bool {
	err := r.Start(ctx, func(_ orchestrator.Result, err error) {
		if err != nil {
			log.Error("❌ Run failed", logger.String("trigger", source), logger.Error(err))
		}
	})
	if errors.Is(err, app.ErrRunInProgress) {
		log.Warn("⏭️ Run skipped, another one is in progress", logger.String("trigger", source))
		return false
	}
	log.Info("▶️ Starting run", logger.String("trigger", source))
	return true
}

func newRouter(ctx context.Context, r Runner, metrics http.Handler, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Job Harvester API is running!",
			"status":  "healthy",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "running": r.Running()})
	})
	router.GET("/runs/last", func(c *gin.Context) {
		summary, ok := r.LastSummary()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no run has finished yet"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})
	router.POST("/runs", func(c *gin.Context) {
		if !trigger(ctx, r, log, "api") {
			c.JSON(http.StatusConflict, gin.H{"error": app.ErrRunInProgress.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "started"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
	return router
}
