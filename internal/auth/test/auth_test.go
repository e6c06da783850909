package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/binhbb2204/BookHub/internal/auth"
	"github.com/binhbb2204/BookHub/pkg/database"
	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger.Init(logger.ERROR, true, nil)
	require.NoError(t, database.InitDatabase(t.TempDir()+"/auth.db"))
	t.Cleanup(func() { database.Close() })

	gin.SetMode(gin.TestMode)
	h := auth.NewHandler(testSecret)
	router := gin.New()
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	protected := router.Group("/auth")
	protected.Use(auth.AuthMiddleware(testSecret))
	protected.POST("/change-password", h.ChangePassword)
	protected.GET("/whoami", func(c *gin.Context) {
		uid, _ := auth.UserID(c)
		c.String(http.StatusOK, uid)
	})
	return router
}

func do(router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var env envelope
	json.Unmarshal(resp.Body.Bytes(), &env)
	return resp, env
}

func register(t *testing.T, router *gin.Engine, username string) (string, string) {
	t.Helper()
	resp, env := do(router, "POST", "/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	require.True(t, env.Success)

	var data struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token, data.UserID
}

func TestRegisterAndLogin(t *testing.T) {
	router := setupRouter(t)
	token, userID := register(t, router, "reader")
	assert.Len(t, userID, 36)

	claims, err := utils.ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	resp, env := do(router, "POST", "/auth/login", "", gin.H{"username": "reader", "password": "Secret123"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, env.Success)

	resp, env = do(router, "POST", "/auth/login", "", gin.H{"email": "reader@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid credentials", env.Message)
}

func TestRegister_Duplicate(t *testing.T) {
	router := setupRouter(t)
	register(t, router, "reader")

	resp, env := do(router, "POST", "/auth/register", "", gin.H{
		"username": "reader",
		"email":    "other@example.com",
		"password": "Secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "Username already exists", env.Message)
}

func TestRegister_WeakPassword(t *testing.T) {
	router := setupRouter(t)

	resp, env := do(router, "POST", "/auth/register", "", gin.H{
		"username": "reader",
		"email":    "reader@example.com",
		"password": "alllowercase",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, env.Success)
}

func TestMiddleware(t *testing.T) {
	router := setupRouter(t)
	token, userID := register(t, router, "reader")

	resp, _ := do(router, "GET", "/auth/whoami", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, resp.Body.String())

	resp, env := do(router, "GET", "/auth/whoami", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Authorization header required", env.Message)

	resp, _ = do(router, "GET", "/auth/whoami", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	forged, err := utils.GenerateJWT(userID, "reader", "another-secret")
	require.NoError(t, err)
	resp, _ = do(router, "GET", "/auth/whoami", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestChangePassword(t *testing.T) {
	router := setupRouter(t)
	token, _ := register(t, router, "reader")

	resp, _ := do(router, "POST", "/auth/change-password", token, gin.H{"currentPassword": "nope", "newPassword": "Better456"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp, env := do(router, "POST", "/auth/change-password", token, gin.H{"currentPassword": "Secret123", "newPassword": "Better456"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, env.Success)

	resp, _ = do(router, "POST", "/auth/login", "", gin.H{"username": "reader", "password": "Better456"})
	assert.Equal(t, http.StatusOK, resp.Code)
}
