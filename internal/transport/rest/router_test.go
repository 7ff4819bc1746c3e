package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/cache"
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/config"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/repository"
	"github.com/wonderless/Test-autoestima-sub000/internal/service"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest/middleware"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/ws"
)

type testServer struct {
	handler   http.Handler
	auth      *service.AuthService
	persister *service.Persister
	catalog   *catalog.Catalog
}

func newTestServer(t *testing.T, mode string) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: mode},
		JWT:    config.JWTConfig{Secret: "router-test-secret", Expire: time.Hour},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	logger := zap.NewNop()
	cat := catalog.Default()
	repo := repository.NewMemoryUserRepo()
	sessions := cache.NewMemorySessionStore()
	dashboard := cache.NewMemoryDashboardCache(time.Minute)
	locks := service.NewUserLocks()
	clock := service.SystemClock()
	persister := service.NewPersister(repo, logger, time.Second, 0)
	hub := ws.NewHub(logger)
	t.Cleanup(hub.Close)
	t.Cleanup(persister.Wait)

	auth := service.NewAuthService(cfg.JWT)
	tests := service.NewTestService(cat, persister, sessions, dashboard, locks, clock, logger)
	results := service.NewResultsService(cat, repo, sessions, dashboard, persister, locks, clock, logger,
		service.ResultsOptions{LoadAttempts: 1})
	tests.SetBroadcaster(hub)
	results.SetBroadcaster(hub)

	h := NewRouter(&Container{
		Config:         cfg,
		Catalog:        cat,
		AuthService:    auth,
		TestService:    tests,
		ResultsService: results,
		AdminService:   service.NewAdminService(cat, repo, dashboard, clock, logger),
		WSHub:          hub,
		RateLimiter:    middleware.NewRateLimiter(1000, time.Minute),
		Gatherer:       prometheus.NewRegistry(),
		Logger:         logger,
	})
	return &testServer{handler: h, auth: auth, persister: persister, catalog: cat}
}

func (s *testServer) token(t *testing.T, uid string, role model.Role) string {
	t.Helper()
	tok, err := s.auth.IssueToken(uid, uid+"@example.com", role)
	require.NoError(t, err)
	return tok.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) perfectBody() map[string]interface{} {
	answers := make(map[string]bool)
	for id, v := range s.catalog.AnswerKey() {
		answers[strconv.Itoa(id)] = v
	}
	for _, id := range s.catalog.VeracityIDs() {
		answers[strconv.Itoa(id)] = false
	}
	return map[string]interface{}{"answers": answers}
}

func TestHealthAndQuestions(t *testing.T) {
	s := newTestServer(t, "release")

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = s.do(t, http.MethodGet, "/v1/questions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Questions []model.Question `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Questions, 30)
}

func TestOpenAPIDescription(t *testing.T) {
	s := newTestServer(t, "release")
	rec := s.do(t, http.MethodGet, "/v1/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/me/results")
}

func TestStudentRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, "release")
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/me/results", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/me/results", "bogus", nil).Code)
}

func TestSessionCookieAuthenticates(t *testing.T) {
	s := newTestServer(t, "release")
	req := httptest.NewRequest(http.MethodGet, "/v1/me/results", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: s.token(t, "u1", model.RoleStudent)})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"no_test"`)
}

func TestSubmitAndLoadResults(t *testing.T) {
	s := newTestServer(t, "release")
	tok := s.token(t, "u1", model.RoleStudent)

	rec := s.do(t, http.MethodPost, "/v1/me/test/start", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/me/test/answers", tok, s.perfectBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/v1/me/results", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.ResultsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, service.StatusOK, view.Status)
	assert.Equal(t, 24, view.Total)
	assert.Len(t, view.Categories, 4)

	rec = s.do(t, http.MethodPost, "/v1/me/categories/fisico/toggle", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	for _, cv := range view.Categories {
		assert.Equal(t, cv.Category != model.CategoryFisico, cv.IsOpen)
	}
}

func TestSubmitIncompleteAnswers(t *testing.T) {
	s := newTestServer(t, "release")
	tok := s.token(t, "u1", model.RoleStudent)

	rec := s.do(t, http.MethodPost, "/v1/me/test/answers", tok, map[string]interface{}{
		"answers": map[string]bool{"1": true},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing")

	rec = s.do(t, http.MethodPost, "/v1/me/test/answers", tok, map[string]interface{}{
		"answers": map[string]bool{"uno": true},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressionErrorsMapToStatus(t *testing.T) {
	s := newTestServer(t, "release")
	tok := s.token(t, "u1", model.RoleStudent)

	rec := s.do(t, http.MethodPost, "/v1/me/categories/fisico/toggle", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/me/test/answers", tok, s.perfectBody()).Code)

	rec = s.do(t, http.MethodPost, "/v1/me/categories/musical/toggle", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/me/categories/fisico/recommendations/fisico-alto-mantener/activities", tok,
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/me/categories/fisico/recommendations/fisico-alto-mantener/activities", tok,
		map[string]int{"currentIndex": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/me/recommendations/fisico-alto-mantener/feedback/open", tok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminRoutesEnforceRoles(t *testing.T) {
	s := newTestServer(t, "release")
	student := s.token(t, "s1", model.RoleStudent)
	admin := s.token(t, "a1", model.RoleAdmin)
	super := s.token(t, "root", model.RoleSuperAdmin)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/admin/dashboard", student, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/admin/dashboard", admin, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/admin/dashboard", super, nil).Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/superadmin/feedback", admin, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/superadmin/feedback", super, nil).Code)

	rec := s.do(t, http.MethodGet, "/v1/admin/export.csv", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "uid,email"))
}

func TestDevTokenOnlyInDebug(t *testing.T) {
	release := newTestServer(t, "release")
	assert.Equal(t, http.StatusNotFound,
		release.do(t, http.MethodPost, "/v1/dev/token", "", model.TokenRequest{UserID: "u1"}).Code)

	debug := newTestServer(t, "debug")
	rec := debug.do(t, http.MethodPost, "/v1/dev/token", "", model.TokenRequest{UserID: "u1", Role: model.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	var tok model.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, http.StatusOK, debug.do(t, http.MethodGet, "/v1/admin/dashboard", tok.Token, nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "release")
	req := httptest.NewRequest(http.MethodOptions, "/v1/me/results", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/me/results", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
