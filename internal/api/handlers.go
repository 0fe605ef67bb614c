package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/constelviz/constel/pkg/errors"
	"github.com/constelviz/constel/pkg/pipeline"
	"github.com/constelviz/constel/pkg/store"
)

// Content types for frame formats.
var frameContentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Documents
// =============================================================================

// createDocumentRequest is the body for POST /api/documents.
type createDocumentRequest struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Payload) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidPayload, "payload is required"))
		return
	}

	doc, err := s.store.Put(r.Context(), store.Document{
		ID:      req.ID,
		Name:    req.Name,
		Payload: req.Payload,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDocumentFrame renders one stored document in one format.
// Query parameters: format (default svg), width, height, refresh.
func (s *Server) handleDocumentFrame(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	opts, format, err := frameOptions(r, doc.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", frameContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Frames[format])
}

// =============================================================================
// Inline render
// =============================================================================

// renderResponse is the body for POST /api/render.
// Frames are base64-encoded by Go's []byte JSON rules; PNG output is binary,
// so every format uses the same encoding.
type renderResponse struct {
	GraphHash  string            `json:"graph_hash"`
	LayoutHash string            `json:"layout_hash"`
	NodeCount  int               `json:"node_count"`
	LinkCount  int               `json:"link_count"`
	Ticks      int               `json:"ticks"`
	Frames     map[string][]byte `json:"frames"`
}

// handleRender runs the pipeline on an inline payload and returns every
// requested frame in one JSON response.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(r, &opts); err != nil {
		writeError(w, err)
		return
	}
	if opts.PayloadURL != "" {
		if err := errors.ValidateURL(opts.PayloadURL); err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		GraphHash:  result.GraphHash,
		LayoutHash: result.LayoutHash,
		NodeCount:  result.Stats.NodeCount,
		LinkCount:  result.Stats.LinkCount,
		Ticks:      result.Stats.Ticks,
		Frames:     result.Frames,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// frameOptions builds pipeline options from frame query parameters.
func frameOptions(r *http.Request, payload json.RawMessage) (pipeline.Options, string, error) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "bad format parameter")
	}

	opts := pipeline.Options{
		PayloadJSON: payload,
		Formats:     []string{format},
		Refresh:     q.Get("refresh") == "true",
	}
	if v := q.Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return pipeline.Options{}, "", errors.New(errors.ErrCodeInvalidViewport, "bad width parameter %q", v)
		}
		opts.Width = f
	}
	if v := q.Get("height"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return pipeline.Options{}, "", errors.New(errors.ErrCodeInvalidViewport, "bad height parameter %q", v)
		}
		opts.Height = f
	}
	return opts, format, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPayload, errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidViewport:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound, errors.ErrCodeGraphNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case errors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		status = http.StatusForbidden
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
