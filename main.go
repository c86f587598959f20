package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NexoraPanel/config"
	"NexoraPanel/handlers"
	"NexoraPanel/middleware"
	"NexoraPanel/publishers"
	"NexoraPanel/services"
	"NexoraPanel/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	config.LoadEnv()
	utils.SetLogLevel(os.Getenv("LOG_LEVEL"))
	utils.SetLogFormat(os.Getenv("LOG_FORMAT"))

	cfg, err := config.Load()
	if err != nil {
		utils.Errorf("failed to load configuration: %v", err)
		os.Exit(1)
	}

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	facebook := publishers.NewFacebookClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.FacebookAPIURL, cfg.FacebookVersion)
	registry := services.NewRegistry(metrics)
	panel := services.NewPanel(cfg.Modules, facebook, facebook, cfg.ImageDir, registry, metrics)

	scheduler := services.NewScheduler(panel.Runners())
	if _, err := scheduler.Register(); err != nil {
		utils.Errorf("failed to register post schedules: %v", err)
		os.Exit(1)
	}
	scheduler.Start()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	cleanupDone := make(chan struct{})
	go limiter.Cleanup(cleanupDone)

	handler := handlers.NewHandler(panel, facebook, cfg.UserToken)
	r := setupRoutes(handler, metrics, limiter, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Infof("server starting on port %s", cfg.Port)
		utils.Infof("graph api %s/%s, image folder %s", cfg.FacebookAPIURL, cfg.FacebookVersion, cfg.ImageDir)
		printModules(cfg)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Warnf("http shutdown: %v", err)
	}
	scheduler.Stop()
	close(cleanupDone)
	if err := registry.Shutdown(shutdownCtx); err != nil {
		utils.Warnf("background runs did not exit in time: %v", err)
	}
}

func setupRoutes(h *handlers.Handler, metrics *services.Metrics, limiter *middleware.RateLimiter, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLog(metrics))

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	panel := r.PathPrefix("/").Subrouter()
	panel.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	panel.Use(limiter.Limit())
	h.Register(panel)

	return r
}

func printModules(cfg *config.Config) {
	for _, m := range cfg.Modules {
		fields := utils.Fields{
			"module":    m.Name,
			"page_id":   m.PageID,
			"posts":     m.PostsFile,
			"images":    m.ImageDir,
			"interval":  m.Interval.String(),
			"has_token": m.AccessToken != "",
		}
		if m.PostSchedule != "" {
			fields["post_schedule"] = m.PostSchedule
		}
		utils.WithFields(fields).Infof("module %s configured", m.DisplayName)
	}
}
