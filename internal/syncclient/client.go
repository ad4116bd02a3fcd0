// Package syncclient is the only part of the client that talks to the notes
// backend: note CRUD, export downloads, frame uploads and the push channel.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-note-taker/internal/domain"
)

// HTTPError is returned for replies outside the 2xx range.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL. A zero timeout
// means requests never time out on their own.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) List(ctx context.Context) ([]domain.Note, error) {
	var notes []domain.Note
	if err := c.doJSON(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (c *Client) Create(ctx context.Context, note domain.Note) (domain.Note, error) {
	var created domain.Note
	if err := c.doJSON(ctx, http.MethodPost, "/api/notes", note, &created); err != nil {
		return domain.Note{}, fmt.Errorf("failed to save note: %w", err)
	}
	return created, nil
}

// Update sends the full note to PUT /api/notes/{id}.
func (c *Client) Update(ctx context.Context, note domain.Note) (domain.Note, error) {
	if note.ID == "" {
		return domain.Note{}, fmt.Errorf("failed to update note: missing id")
	}
	var updated domain.Note
	path := "/api/notes/" + url.PathEscape(note.ID)
	if err := c.doJSON(ctx, http.MethodPut, path, note, &updated); err != nil {
		return domain.Note{}, fmt.Errorf("failed to update note: %w", err)
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	path := "/api/notes/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// Export downloads the rendered collection in the given format.
func (c *Client) Export(ctx context.Context, format domain.ExportFormat) ([]byte, error) {
	if _, err := domain.ParseExportFormat(string(format)); err != nil {
		return nil, err
	}
	path := "/api/export?format=" + url.QueryEscape(string(format))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to export notes: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, path); err != nil {
		return nil, fmt.Errorf("failed to export notes: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export payload: %w", err)
	}
	return data, nil
}

// ProcessFrame uploads an image as the multipart field "file".
func (c *Client) ProcessFrame(ctx context.Context, filename string, frame io.Reader) (domain.FrameResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.FrameResult{}, err
	}
	if _, err := io.Copy(part, frame); err != nil {
		return domain.FrameResult{}, fmt.Errorf("failed to read frame: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.FrameResult{}, err
	}

	const path = "/api/process-frame"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return domain.FrameResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result domain.FrameResult
	if err := c.do(req, path, &result); err != nil {
		return domain.FrameResult{}, fmt.Errorf("failed to process frame: %w", err)
	}
	return result, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, path); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response body: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{
		Method:     resp.Request.Method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       errorMessage(data),
	}
}

// errorMessage extracts the "error" field of a JSON error body, falling back
// to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
