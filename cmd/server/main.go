package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-job-harvester/internal/app"
	"go-job-harvester/internal/config"
	"go-job-harvester/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

// runDrainTimeout covers the finalize window of a cancelled run plus its last page.
const runDrainTimeout = 6 * time.Minute

func main() {
	cfgFile := flag.String("config", config.DefaultPath, "config file")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	harvester, err := app.Build(ctx, cfg, reg, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to build harvester: %v", err)
	}
	defer harvester.Close()

	var scheduler *cron.Cron
	if cfg.Schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		scheduler = cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
		if _, err := scheduler.AddFunc(cfg.Schedule, func() {
			trigger(ctx, harvester, zlog, "schedule")
		}); err != nil {
			log.Fatalf("❌ Invalid schedule %q: %v", cfg.Schedule, err)
		}
		scheduler.Start()
		zlog.Info("⏰ Scheduled runs enabled", logger.String("schedule", cfg.Schedule))
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(ctx, harvester, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), zlog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("🌐 Server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("❌ Server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("🛑 Shutting down")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("⚠️ Server shutdown failed", logger.Error(err))
	}

	//a cancelled run still finishes its page, then saves and notifies
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), runDrainTimeout)
	defer cancelDrain()
	if harvester.Running() {
		zlog.Info("⏳ Waiting for the in-flight run to finish")
	}
	if err := harvester.Wait(drainCtx); err != nil {
		zlog.Warn("⚠️ Run did not finish before shutdown", logger.Error(err))
	}
}
