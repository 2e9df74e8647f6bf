package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/docentes-portal/backend/internal/auth"
	"github.com/docentes-portal/backend/internal/models"
	"github.com/docentes-portal/backend/internal/reconcile"
	"github.com/docentes-portal/backend/internal/security"
	"github.com/docentes-portal/backend/internal/sessions"
	"github.com/docentes-portal/backend/internal/tokens"
	"github.com/docentes-portal/backend/internal/users"
	"github.com/docentes-portal/backend/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	r      *gin.Engine
	repo   *users.MemoryRepository
	hasher *security.Hasher
	issuer *tokens.Issuer
	redis  *mr.Miniredis
}

func newTestServer(t *testing.T, source reconcile.Source) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	repo := users.NewMemoryRepository()
	hasher := security.NewHasher(bcrypt.MinCost)
	issuer := tokens.NewIssuer("handlers-test-secret-xxxxxxxxxxxxxxx", time.Hour)
	rev := sessions.NewRevocations(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	requireAuth := middleware.AuthMiddleware(issuer, rev, repo)

	r := gin.New()
	NewAuthHandler(auth.NewService(repo, hasher, issuer), rev).Register(r.Group("/"), nil, requireAuth)
	NewUsersHandler(users.NewService(repo, hasher), reconcile.NewReconciler(repo), source, 1).Register(r.Group("/"), requireAuth)

	return &testServer{r: r, repo: repo, hasher: hasher, issuer: issuer, redis: m}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedAdmin(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := s.hasher.Hash(password)
	require.NoError(t, err)
	u, err := s.repo.Insert(context.Background(), &models.User{
		Username: username, PasswordHash: hash, Nombre: "Admin", Email: "admin@x.com",
		Role: models.RoleAdministrator, Activo: models.Active(true),
	})
	require.NoError(t, err)
	return u
}

func (s *testServer) seedInstructor(t *testing.T, cedula string) *models.User {
	t.Helper()
	u, err := s.repo.Insert(context.Background(), &models.User{
		Cedula: cedula, Nombre: "Ana", Email: "a@x.com", Departamento: "Sistemas",
		Role: models.RoleInstructor, Activo: models.Active(true),
	})
	require.NoError(t, err)
	return u
}

func (s *testServer) login(t *testing.T, path string, body interface{}) string {
	t.Helper()
	w := s.do(http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res auth.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.AccessToken
}

func TestLoginDocente_Success(t *testing.T) {
	s := newTestServer(t, nil)
	u := s.seedInstructor(t, "123")

	w := s.do(http.MethodPost, "/auth/login/docente", "", gin.H{"cedula": "123"})
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got["access_token"])
	user := got["user"].(map[string]interface{})
	assert.Equal(t, u.ID, user["id"])
	assert.Equal(t, "docente", user["role"])
	assert.Equal(t, "Sistemas", user["departamento"])
}

func TestLoginDocente_Unknown(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodPost, "/auth/login/docente", "", gin.H{"cedula": "999"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"`+auth.MsgInstructorNotFound+`"}`, w.Body.String())
}

func TestLoginDocente_MissingBody(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodPost, "/auth/login/docente", "", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAdmin_SuccessAndFailures(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedAdmin(t, "root", "s3cret")

	w := s.do(http.MethodPost, "/auth/login/admin", "", gin.H{"username": "root", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	wrong := s.do(http.MethodPost, "/auth/login/admin", "", gin.H{"username": "root", "password": "nope"})
	ghost := s.do(http.MethodPost, "/auth/login/admin", "", gin.H{"username": "ghost", "password": "s3cret"})
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, http.StatusUnauthorized, ghost.Code)
	assert.Equal(t, wrong.Body.String(), ghost.Body.String())
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedInstructor(t, "123")
	tok := s.login(t, "/auth/login/docente", gin.H{"cedula": "123"})

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users", tok, nil).Code)

	w := s.do(http.MethodPost, "/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revoked":true`)

	claims, err := s.issuer.Verify(tok)
	require.NoError(t, err)
	assert.True(t, s.redis.Exists("revoked:access:"+claims.ID))
	assert.Greater(t, s.redis.TTL("revoked:access:"+claims.ID), time.Duration(0))

	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/users", tok, nil).Code)
}

func TestLogout_RequiresToken(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/auth/logout", "", nil).Code)
}

func TestLoginAdmin_SeededAdministrator(t *testing.T) {
	s := newTestServer(t, nil)
	_, created, err := users.NewService(s.repo, s.hasher).EnsureAdmin(context.Background(), users.CreateUserInput{
		Username: "root", Password: "s3cret", Nombre: "Administrador", Email: "admin@example.com",
	})
	require.NoError(t, err)
	require.True(t, created)

	tok := s.login(t, "/auth/login/admin", gin.H{"username": "root", "password": "s3cret"})
	w := s.do(http.MethodPost, "/users/crear-admin-inicial", tok, gin.H{
		"nombre": "B", "email": "b@x.com", "role": "administrador", "username": "boss", "password": "pw",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
