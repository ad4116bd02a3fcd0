package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/service"
	"ai-note-taker/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	note, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "Failed to create note")
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, "Failed to get note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	note, err := h.service.Update(r.Context(), noteID, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err, "Failed to delete note")
		return
	}

	response.NoContent(w)
}

// writeServiceError maps service sentinels to status codes. Anything
// unrecognised is reported with the generic fallback message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrNoteExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnsupportedFormat):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrUnsupportedFrame):
		response.Error(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrFrameTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
