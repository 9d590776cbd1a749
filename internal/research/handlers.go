package research

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/HerbHall/paperstream/internal/server"
	"go.uber.org/zap"
)

// maxRequestBody bounds a /process body. Topics are short strings.
const maxRequestBody = 1 << 20

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	Query string `json:"query" example:"quantum computing"`
}

// ProcessResponse is the successful response of POST /process.
type ProcessResponse struct {
	Answer string `json:"answer" example:"Abstract: ..."`
}

// Handler serves the request/response research endpoint.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a Handler for svc.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the research endpoint.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /process", h.handleProcess)
}

// handleProcess generates a research paper for a topic and returns it whole.
//
//	@Summary		Generate a research paper
//	@Description	Streams a search-grounded research paper for the topic upstream and returns the concatenated text once generation ends.
//	@Tags			research
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ProcessRequest	true	"Research topic"
//	@Success		200		{object}	ProcessResponse
//	@Failure		400		{object}	server.Problem
//	@Failure		422		{object}	server.Problem
//	@Failure		500		{object}	server.Problem
//	@Router			/process [post]
func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	query, status, detail := decodeProcessRequest(http.MaxBytesReader(w, r.Body, maxRequestBody))
	switch status {
	case http.StatusBadRequest:
		server.BadRequest(w, detail, r.URL.Path)
		return
	case http.StatusUnprocessableEntity:
		server.Unprocessable(w, detail, r.URL.Path)
		return
	}

	result, err := h.svc.collect(query, Observe(TransportHTTP, h.svc.Stream(r.Context(), query)))
	if err != nil {
		h.logger.Error("process request failed",
			zap.String("request_id", server.RequestID(r.Context())),
			zap.Error(err),
		)
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}

	server.WriteJSON(w, http.StatusOK, ProcessResponse{Answer: result.Answer})
}

// decodeProcessRequest validates a /process body. It returns the query and
// http.StatusOK, or the rejection status with a description. Unparseable
// input is a 400; JSON that does not match {"query": non-empty string} is a
// 422.
func decodeProcessRequest(body io.Reader) (string, int, string) {
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", http.StatusBadRequest, "request body too large"
		}
		return "", http.StatusBadRequest, "failed to read request body"
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", http.StatusBadRequest, "invalid JSON body: " + err.Error()
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return "", http.StatusUnprocessableEntity, "request body must be a JSON object"
	}

	v, present := obj["query"]
	if !present || v == nil {
		return "", http.StatusUnprocessableEntity, "query is required"
	}
	query, ok := v.(string)
	if !ok {
		return "", http.StatusUnprocessableEntity, "query must be a string"
	}
	if query == "" {
		return "", http.StatusUnprocessableEntity, "query is required"
	}
	return query, http.StatusOK, ""
}
