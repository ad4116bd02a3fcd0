package handler

import (
	"net/http"

	"ai-note-taker/internal/service"
	"ai-note-taker/pkg/response"
)

type ExportHandler struct {
	service *service.ExportService
}

func NewExportHandler(service *service.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Export(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, err, "Failed to export notes")
		return
	}

	response.Attachment(w, export.Filename, export.ContentType, export.Data)
}
