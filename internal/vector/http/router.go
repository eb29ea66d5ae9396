package http

import (
	"net/http"

	commonhttp "github.com/vector-portal/backend/internal/common/http"
	"github.com/vector-portal/backend/internal/common/logger"
	"github.com/vector-portal/backend/internal/vector"
)

type generateRequest struct {
	Sentence string `json:"sentence"`
}

type generateResponse struct {
	Array []float64 `json:"array"`
}

type Handler struct {
	generator vector.Generator
	errors    *commonhttp.ErrorHandler
	log       *logger.Logger
}

func NewHandler(generator vector.Generator, log *logger.Logger) http.Handler {
	h := &Handler{
		generator: generator,
		errors:    commonhttp.NewErrorHandler(log),
		log:       log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/vector", h.generate)
	return mux
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req generateRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("vector generation failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	values, err := h.generator.Generate(req.Sentence)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"action": "vector_generated",
	}).Info("processing random vector generation")

	commonhttp.WriteJSON(w, http.StatusOK, generateResponse{Array: values})
}
