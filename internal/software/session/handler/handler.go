package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ride-session/internal/domain/ride"
	"ride-session/internal/domain/session"
	"ride-session/internal/general/jwt"
	"ride-session/internal/general/logger"
	"ride-session/internal/ports"
	"ride-session/internal/software/session/service"
)

// SessionHTTPHandler adapts HTTP requests to the SessionService.
type SessionHTTPHandler struct {
	svc    ports.SessionService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewSessionHTTPHandler wires an HTTP handler around the SessionService.
func NewSessionHTTPHandler(svc ports.SessionService, logger *logger.Logger, auth *jwt.Manager) *SessionHTTPHandler {
	return &SessionHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts session endpoints on the provided mux. Mutating
// actions are rider-only; reads are open to observers too.
func (handler *SessionHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	rider := jwt.AuthMiddlewareFunc(handler.auth, session.RoleRider)
	anyRole := jwt.AuthMiddlewareFunc(handler.auth, session.RoleRider, session.RoleObserver)

	mux.HandleFunc("POST /api/v1/rides", rider(handler.handleRequestRide))
	mux.HandleFunc("POST /api/v1/rides/finish", rider(handler.handleFinishRide))
	mux.HandleFunc("POST /api/v1/allowance", rider(handler.handleApproveAllowance))
	mux.HandleFunc("POST /api/v1/funds", rider(handler.handleAcquireFunds))

	mux.HandleFunc("GET /api/v1/session", anyRole(handler.handleSessionView))
	mux.HandleFunc("GET /api/v1/telemetry/vehicles", anyRole(handler.handleVehicles))
	mux.HandleFunc("GET /api/v1/telemetry/signals", anyRole(handler.handleSignals))

	mux.HandleFunc("GET /healthz", handler.handleHealth)
}

// ----- general helpers -----

// jsonResponse encodes data to the response, controlling status on failure.
func (handler *SessionHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *SessionHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusConflict {
		action = "action_conflict"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// actionError maps a service error onto an HTTP status.
func (handler *SessionHTTPHandler) actionError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStreamNotReady):
		handler.httpError(ctx, w, http.StatusServiceUnavailable, "session is not initialized yet", err)
	case errors.Is(err, ride.ErrSessionBusy):
		handler.httpError(ctx, w, http.StatusConflict, "an action is already awaiting confirmation", err)
	case errors.Is(err, ride.ErrIllegalTransition):
		handler.httpError(ctx, w, http.StatusConflict, "action is not allowed in the current ride phase", err)
	case errors.Is(err, ride.ErrRejectedByAuthority):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "action failed", err)
	}
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *SessionHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
