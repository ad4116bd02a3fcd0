// Package server assembles the development backend: storage, services,
// the push hub and the HTTP routes.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"ai-note-taker/internal/config"
	"ai-note-taker/internal/handler"
	"ai-note-taker/internal/repository"
	"ai-note-taker/internal/service"
	"ai-note-taker/internal/websocket"

	"github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb"
)

// OpenRepository returns the note store selected by cfg.Store.Driver,
// creating the CouchDB database when it does not exist yet.
func OpenRepository(ctx context.Context, cfg *config.Config) (repository.NoteRepository, error) {
	if cfg.Store.Driver != "couch" {
		return repository.NewMemoryNoteRepository(), nil
	}

	client, err := kivik.New("couch", cfg.Database.CouchURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
	}

	exists, err := client.DBExists(ctx, cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, cfg.Database.Name); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	return repository.NewCouchNoteRepository(client, cfg.Database.Name), nil
}

// NewHandler wires the services and routes around repo. The caller runs
// the manager.
func NewHandler(cfg *config.Config, repo repository.NoteRepository, manager *websocket.Manager) http.Handler {
	noteService := service.NewNoteService(repo, manager)
	exportService := service.NewExportService(repo)
	frameService := service.NewFrameService(noteService, cfg.Upload.Dir, cfg.Upload.MaxSize)

	return handler.NewRouter(handler.Handlers{
		Notes:     handler.NewNoteHandler(noteService),
		Export:    handler.NewExportHandler(exportService),
		Frames:    handler.NewFrameHandler(frameService, cfg.Upload.MaxSize),
		WebSocket: handler.NewWebSocketHandler(manager, cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize),
	}, cfg.CORS)
}

func NewManager(cfg *config.Config) *websocket.Manager {
	return websocket.NewManager(
		cfg.WebSocket.MaxConnections,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
}
