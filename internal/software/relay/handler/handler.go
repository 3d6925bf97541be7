package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"ride-session/internal/general/logger"
)

// RelayHTTPHandler exposes the relay's health endpoint. The relay has no
// user-facing API; everything else flows through the broker.
type RelayHTTPHandler struct {
	logger *logger.Logger
}

// NewRelayHTTPHandler builds the relay's HTTP surface.
func NewRelayHTTPHandler(logger *logger.Logger) *RelayHTTPHandler {
	return &RelayHTTPHandler{logger: logger}
}

// RegisterRoutes mounts relay endpoints on the provided mux.
func (handler *RelayHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handler.handleHealth)
}

func (handler *RelayHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (handler *RelayHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}
