package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinebrowse/api"
	"cinebrowse/config"
	"cinebrowse/handlers"
	"cinebrowse/services/catalog"
	"cinebrowse/services/ratings"
	"cinebrowse/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}

	catalogSvc := catalog.NewService(cfg.TMDBAPIKey, catalog.Options{
		Language:       cfg.Language,
		VoteCountBase:  cfg.VoteCountBase,
		VoteCountRated: cfg.VoteCountRated,
		SimilarLimit:   cfg.SimilarLimit,
		CastLimit:      cfg.CastLimit,
	})
	handler := handlers.NewCatalogHandler(catalogSvc, nil)
	if cfg.OMDBAPIKey != "" {
		handler.Ratings = ratings.NewClient(cfg.OMDBAPIKey, nil)
	} else {
		log.Printf("[main] OMDB_API_KEY not set, external ratings disabled")
	}

	router := utils.NewRouter()
	limiter := api.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(api.RequestID(), api.AccessLog(), limiter.Middleware())
	handler.Register(apiRouter)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[main] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
