package handler

import (
	"errors"
	"log"
	"net/http"

	"ai-note-taker/internal/service"
	"ai-note-taker/pkg/response"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the frame size limit.
const multipartOverhead = 64 << 10

type FrameHandler struct {
	service *service.FrameService
	maxSize int64
}

func NewFrameHandler(service *service.FrameService, maxSize int64) *FrameHandler {
	return &FrameHandler{
		service: service,
		maxSize: maxSize,
	}
}

func (h *FrameHandler) Process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, service.ErrFrameTooLarge.Error())
			return
		}
		response.BadRequest(w, "Missing multipart field \"file\"")
		return
	}
	defer file.Close()

	result, err := h.service.Process(r.Context(), header.Filename, file)
	if err != nil {
		log.Printf("[Frames] Failed to process %s: %v", header.Filename, err)
		writeServiceError(w, err, "Failed to process frame")
		return
	}

	response.Success(w, result)
}
