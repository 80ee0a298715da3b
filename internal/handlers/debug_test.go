package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"findsync/internal/auth"
	"findsync/internal/mocks"
	"findsync/internal/telemetry"
)

type invalidatorStub struct{ calls int }

func (s *invalidatorStub) Invalidate() { s.calls++ }

func TestDebugRoutesDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterDebugRoutes(r, DebugDeps{}, false)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/schema/refresh", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugSchemaRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	stub := &invalidatorStub{}
	RegisterDebugRoutes(r, DebugDeps{Schema: stub}, true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/schema/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.calls)
}

func TestDebugAuditTestPublishes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, "audit.findsync", mock.AnythingOfType("telemetry.AuditEnvelope")).Return(nil).Once()
	emitter := telemetry.NewAuditEmitter(publisher, "audit.findsync", "findsync", "test", zap.NewNop())
	RegisterDebugRoutes(r, DebugDeps{Emitter: emitter}, true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	publisher.AssertExpectations(t)
}

func TestDebugTokenVerifies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	verifier := auth.NewVerifier("secret")
	RegisterDebugRoutes(r, DebugDeps{Verifier: verifier}, true)

	req := httptest.NewRequest(http.MethodPost, "/debug/token", bytes.NewBufferString(`{"sub":"fb-9","name":"Kim"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	claims, err := verifier.Verify(resp["token"])
	require.NoError(t, err)
	assert.Equal(t, "fb-9", claims.ExternalID())
	assert.Equal(t, "Kim", claims.Name)
}
