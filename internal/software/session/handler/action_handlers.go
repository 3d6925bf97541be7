package handler

import (
	"encoding/json"
	"net/http"

	"ride-session/internal/domain/geo"
	"ride-session/internal/ports"
)

// RideRequest is the request body for a new ride. Coordinates use the
// simulator's "x,y" form.
type RideRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Amount int64  `json:"amount"`
}

// AmountRequest is the request body for allowance and funds actions.
type AmountRequest struct {
	Amount int64 `json:"amount"`
}

func (handler *SessionHTTPHandler) handleRequestRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req RideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := geo.ParseCoordinate(req.Start)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "start must be \"x,y\"", err)
		return
	}
	end, err := geo.ParseCoordinate(req.End)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "end must be \"x,y\"", err)
		return
	}

	result, err := handler.svc.RequestRide(ctx, ports.RequestRideInput{Start: start, End: end, Amount: req.Amount})
	if err != nil {
		handler.actionError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusAccepted, result)
}

func (handler *SessionHTTPHandler) handleFinishRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	result, err := handler.svc.FinishRide(ctx)
	if err != nil {
		handler.actionError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusAccepted, result)
}

func (handler *SessionHTTPHandler) handleApproveAllowance(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount <= 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "amount must exceed zero", nil)
		return
	}

	result, err := handler.svc.ApproveAllowance(ctx, req.Amount)
	if err != nil {
		handler.actionError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusAccepted, result)
}

func (handler *SessionHTTPHandler) handleAcquireFunds(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount <= 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "amount must exceed zero", nil)
		return
	}

	result, err := handler.svc.AcquireFunds(ctx, req.Amount)
	if err != nil {
		handler.actionError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusAccepted, result)
}
