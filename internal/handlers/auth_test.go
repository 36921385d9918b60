package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cogniboard/cogniboard-api/internal/auth"
	"github.com/cogniboard/cogniboard-api/internal/database"
	"github.com/cogniboard/cogniboard-api/internal/dto"
	"github.com/cogniboard/cogniboard-api/internal/middleware"
	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/cogniboard/cogniboard-api/internal/repository"
	"github.com/cogniboard/cogniboard-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
	tokens      *auth.TokenManager
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	tokens := auth.NewTokenManager("test-secret", time.Hour, auth.NewMemoryRevoker())
	handler := NewAuthHandler(authService, tokens)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
		tokens:      tokens,
	}
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/auth/register", env.handler.Register)

	w := postJSON(t, r, "/api/auth/register", map[string]string{
		"name":     "Ada",
		"email":    "Ada@Example.com",
		"password": "supersecret",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Ada", response.Name)
	require.Equal(t, "ada@example.com", response.Email, "emails are stored lowercased")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/auth/register", env.handler.Register)

	payload := map[string]string{
		"name":     "Ada",
		"email":    "a@x.com",
		"password": "supersecret",
	}

	w := postJSON(t, r, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/auth/register", env.handler.Register)

	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"short password", map[string]string{"name": "Ada", "email": "a@x.com", "password": "short"}},
		{"bad email", map[string]string{"name": "Ada", "email": "not-an-email", "password": "supersecret"}},
		{"blank name", map[string]string{"name": "   ", "email": "a@x.com", "password": "supersecret"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/auth/register", tc.payload, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		Name:     "Ada",
		Email:    "a@x.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "supersecret",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.AccessToken)
	require.Equal(t, "bearer", response.TokenType)
}

func TestAuthHandler_Login_UniformFailure(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		Name:     "Ada",
		Email:    "a@x.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/auth/login", env.handler.Login)

	wrongPassword := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong-password",
	}, "")
	unknownEmail := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "supersecret",
	}, "")

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String(),
		"login must not reveal whether the email or the password was wrong")
}

func TestAuthHandler_BearerFlow(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		Name:     "Ada",
		Email:    "a@x.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/auth/me", middleware.RequireAuth(env.tokens), env.handler.GetCurrentUser)
	r.POST("/api/auth/logout", middleware.RequireAuth(env.tokens), env.handler.Logout)

	token, err := env.tokens.Issue(user.ID)
	require.NoError(t, err)

	// No credential
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid credential
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.ID)

	// Logout revokes the credential
	w = postJSON(t, r, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ListUsers(t *testing.T) {
	env := setupAuthTestEnv(t)

	for _, u := range []string{"a@x.com", "b@x.com"} {
		_, err := env.authService.Register(services.RegisterInput{
			Name:     "User",
			Email:    u,
			Password: "supersecret",
		})
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/users", nil)

	env.handler.ListUsers(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Users, 2)
}
