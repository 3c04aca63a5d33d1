package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestJWTService_TokenRoundTrip(t *testing.T) {
	service := NewJWTService(testSecret)
	userID := uuid.New()

	token, expiresAt, err := service.GenerateToken(Claims{
		UserID: userID,
		Email:  "analyst@agrocred.com.br",
		Role:   "analyst",
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "analyst@agrocred.com.br", claims.Email)
	assert.Equal(t, "analyst", claims.Role)
}

func TestJWTService_WrongSecretRejected(t *testing.T) {
	token, _, err := NewJWTService(testSecret).GenerateToken(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewJWTService("other-secret").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_GarbageTokenRejected(t *testing.T) {
	_, err := NewJWTService(testSecret).ValidateToken("not.a.token")
	assert.Error(t, err)
}

func protectedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{JWTMiddleware(testSecret)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	router.GET("/protected", chain...)
	return router
}

func TestJWTMiddleware_MissingTokenRejected(t *testing.T) {
	router := protectedRouter()

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_BearerHeaderAccepted(t *testing.T) {
	token, _, err := NewJWTService(testSecret).GenerateToken(Claims{UserID: uuid.New(), Role: "operator"})
	require.NoError(t, err)

	router := protectedRouter()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTMiddleware_CookieAccepted(t *testing.T) {
	token, _, err := NewJWTService(testSecret).GenerateToken(Claims{UserID: uuid.New(), Role: "operator"})
	require.NoError(t, err)

	router := protectedRouter()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	service := NewJWTService(testSecret)

	adminToken, _, err := service.GenerateToken(Claims{UserID: uuid.New(), Role: "admin"})
	require.NoError(t, err)
	operatorToken, _, err := service.GenerateToken(Claims{UserID: uuid.New(), Role: "operator"})
	require.NoError(t, err)

	router := protectedRouter(RequireRole("admin"))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+operatorToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
