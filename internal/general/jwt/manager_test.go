package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ride-session/internal/domain/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestIssueAndValidate(t *testing.T) {
	mgr := NewManager(testSecret, time.Hour)

	token, claims, err := mgr.IssueToken("0xrider", session.RoleRider)
	require.NoError(t, err)
	assert.Equal(t, "0xrider", claims.Subject)
	assert.Equal(t, session.RoleRider, claims.Role)

	_, parsed, err := mgr.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "0xrider", parsed.Subject)
	assert.Equal(t, session.RoleRider, parsed.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewManager(testSecret, time.Hour).IssueToken("0xrider", session.RoleRider)
	require.NoError(t, err)

	_, _, err = NewManager("other-secret", time.Hour).ParseAndValidate(token)
	assert.Error(t, err)
}

func TestRoleAllowed(t *testing.T) {
	claims := NewClaims("0xrider", session.RoleObserver, time.Hour)

	assert.NoError(t, RoleAllowed(claims, session.RoleRider, session.RoleObserver))
	assert.Error(t, RoleAllowed(claims, session.RoleRider))
}

func TestAuthMiddleware(t *testing.T) {
	mgr := NewManager(testSecret, time.Hour)
	var gotSubject string
	protected := AuthMiddlewareFunc(mgr, session.RoleRider)(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = RequireClaims(r).Subject
		w.WriteHeader(http.StatusNoContent)
	})

	// no token
	rec := httptest.NewRecorder()
	protected(rec, httptest.NewRequest(http.MethodPost, "/api/v1/rides", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong role
	token, _, err := mgr.IssueToken("0xwatcher", session.RoleObserver)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rides", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// rider passes and claims land in the request context
	token, _, err = mgr.IssueToken("0xrider", session.RoleRider)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/rides", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0xrider", gotSubject)
}
