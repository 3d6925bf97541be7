package handler

import (
	"net/http"
	"time"

	"ride-session/internal/domain/ride"
)

// SessionViewResponse mirrors the session snapshot for API consumers.
type SessionViewResponse struct {
	Phase          string `json:"phase"`
	Busy           bool   `json:"busy"`
	PendingAction  string `json:"pending_action,omitempty"`
	VehicleID      string `json:"vehicle_id,omitempty"`
	Balance        int64  `json:"balance"`
	Allowance      int64  `json:"allowance"`
	StatusLine     string `json:"status_line,omitempty"`
	CanRequestRide bool   `json:"can_request_ride"`
	CanFinishRide  bool   `json:"can_finish_ride"`
}

// VehicleResponse is one vehicle's latest telemetry.
type VehicleResponse struct {
	ID          string    `json:"id"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Orientation float64   `json:"orientation"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SignalResponse is one traffic signal's latest state.
type SignalResponse struct {
	ID        string    `json:"id"`
	North     string    `json:"north"`
	East      string    `json:"east"`
	South     string    `json:"south"`
	West      string    `json:"west"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (handler *SessionHTTPHandler) handleSessionView(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	view := handler.svc.View()
	resp := SessionViewResponse{
		Phase:          view.Phase.String(),
		Busy:           view.Busy,
		PendingAction:  view.PendingKind.String(),
		VehicleID:      view.AssignedVehicleID,
		Balance:        view.Balance,
		Allowance:      view.Allowance,
		StatusLine:     view.StatusLine,
		CanRequestRide: !view.Busy && view.Phase == ride.PhaseIdle,
		CanFinishRide:  !view.Busy && view.Phase == ride.PhaseAwaitingFinish,
	}

	handler.jsonResponse(ctx, w, http.StatusOK, resp)
}

func (handler *SessionHTTPHandler) handleVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	vehicles := handler.svc.Vehicles()
	resp := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, VehicleResponse{
			ID:          v.ID,
			X:           v.Pos.X,
			Y:           v.Pos.Y,
			Orientation: v.HeadingDegrees,
			UpdatedAt:   v.UpdatedAt,
		})
	}

	handler.jsonResponse(ctx, w, http.StatusOK, resp)
}

func (handler *SessionHTTPHandler) handleSignals(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	signals := handler.svc.Signals()
	resp := make([]SignalResponse, 0, len(signals))
	for _, s := range signals {
		resp = append(resp, SignalResponse{
			ID:        s.ID,
			North:     s.North.String(),
			East:      s.East.String(),
			South:     s.South.String(),
			West:      s.West.String(),
			UpdatedAt: s.UpdatedAt,
		})
	}

	handler.jsonResponse(ctx, w, http.StatusOK, resp)
}

func (handler *SessionHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
