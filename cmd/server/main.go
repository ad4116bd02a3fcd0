package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-note-taker/internal/config"
	"ai-note-taker/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	repo, err := server.OpenRepository(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open note store: %v", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	wsManager := server.NewManager(cfg)
	go wsManager.Run(hubCtx)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.NewHandler(cfg, repo, wsManager),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting AI Note Taker backend on %s (env: %s, store: %s)", srv.Addr, cfg.Server.Env, cfg.Store.Driver)
		if cfg.Store.Driver == "couch" {
			log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopHub()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
