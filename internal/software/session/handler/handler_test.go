package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ride-session/internal/domain/geo"
	"ride-session/internal/domain/ride"
	"ride-session/internal/domain/session"
	"ride-session/internal/general/jwt"
	"ride-session/internal/general/logger"
	"ride-session/internal/ports"
	"ride-session/internal/software/session/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService scripts the service layer so handler tests only exercise HTTP
// decoding, auth, and error mapping.
type stubService struct {
	result ports.SubmissionResult
	err    error
	view   ride.View
}

func (s *stubService) RequestRide(ctx context.Context, in ports.RequestRideInput) (ports.SubmissionResult, error) {
	return s.result, s.err
}

func (s *stubService) ApproveAllowance(ctx context.Context, amount int64) (ports.SubmissionResult, error) {
	return s.result, s.err
}

func (s *stubService) AcquireFunds(ctx context.Context, amount int64) (ports.SubmissionResult, error) {
	return s.result, s.err
}

func (s *stubService) FinishRide(ctx context.Context) (ports.SubmissionResult, error) {
	return s.result, s.err
}

func (s *stubService) View() ride.View                  { return s.view }
func (s *stubService) Vehicles() []geo.VehicleTelemetry { return nil }
func (s *stubService) Signals() []geo.SignalState       { return nil }

func newTestHandler(t *testing.T, svc ports.SessionService) (*http.ServeMux, string) {
	t.Helper()
	mgr := jwt.NewManager("handler-test-secret", time.Hour)
	h := NewSessionHTTPHandler(svc, logger.New("session-handler-test"), mgr)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	token, _, err := mgr.IssueToken("0xrider", session.RoleRider)
	require.NoError(t, err)
	return mux, token
}

func doPost(mux *http.ServeMux, token, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRequestRideAccepted(t *testing.T) {
	svc := &stubService{result: ports.SubmissionResult{Kind: "REQUEST_RIDE", Receipt: "r-42"}}
	mux, token := newTestHandler(t, svc)

	rec := doPost(mux, token, "/api/v1/rides", `{"start":"120,431","end":"80,15","amount":300}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var result ports.SubmissionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "r-42", result.Receipt)
	assert.Equal(t, "REQUEST_RIDE", result.Kind)
}

func TestRequestRideValidation(t *testing.T) {
	mux, token := newTestHandler(t, &stubService{})

	rec := doPost(mux, token, "/api/v1/rides", `{"start":"banana","end":"80,15","amount":300}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doPost(mux, token, "/api/v1/rides", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doPost(mux, token, "/api/v1/allowance", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrStreamNotReady, http.StatusServiceUnavailable},
		{ride.ErrSessionBusy, http.StatusConflict},
		{ride.ErrIllegalTransition, http.StatusConflict},
		{ride.ErrRejectedByAuthority, http.StatusBadRequest},
	}

	for _, tc := range cases {
		mux, token := newTestHandler(t, &stubService{err: tc.err})
		rec := doPost(mux, token, "/api/v1/rides/finish", "")
		assert.Equal(t, tc.code, rec.Code, "error %v", tc.err)
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	mux, _ := newTestHandler(t, &stubService{})

	rec := doPost(mux, "", "/api/v1/funds", `{"amount":10}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// health stays open
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionView(t *testing.T) {
	svc := &stubService{view: ride.View{
		Phase:             ride.PhaseAwaitingFinish,
		AssignedVehicleID: "C1",
		Balance:           700,
		Allowance:         100,
		StatusLine:        "Car C1 is at Dropoff",
	}}
	mux, token := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view SessionViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "AWAITING_FINISH", view.Phase)
	assert.True(t, view.CanFinishRide)
	assert.False(t, view.CanRequestRide)
	assert.Equal(t, "C1", view.VehicleID)
	assert.EqualValues(t, 700, view.Balance)
}
