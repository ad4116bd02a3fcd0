package handler

import (
	"net/http"

	"ai-note-taker/internal/config"
	"ai-note-taker/internal/middleware"
	"ai-note-taker/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Notes     *NoteHandler
	Export    *ExportHandler
	Frames    *FrameHandler
	WebSocket *WebSocketHandler
}

func NewRouter(h Handlers, cors config.CORSConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cors.AllowedOrigins,
		cors.AllowedMethods,
		cors.AllowedHeaders,
		cors.Credentials,
	))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/notes", h.Notes.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/notes", h.Notes.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/notes/{id}", h.Notes.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/notes/{id}", h.Notes.Update).Methods("PUT", "OPTIONS")
	api.HandleFunc("/notes/{id}", h.Notes.Delete).Methods("DELETE", "OPTIONS")

	api.HandleFunc("/export", h.Export.Export).Methods("GET", "OPTIONS")
	api.HandleFunc("/process-frame", h.Frames.Process).Methods("POST", "OPTIONS")

	r.HandleFunc("/ws", h.WebSocket.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "healthy", "service": "ai-note-taker"})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"message": "AI Note Taker API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"/api/notes":         "GET, POST",
			"/api/notes/{id}":    "GET, PUT, DELETE",
			"/api/export":        "GET ?format=pdf|txt",
			"/api/process-frame": "POST multipart (file)",
			"/ws":                "WebSocket note push",
		},
	})
}
