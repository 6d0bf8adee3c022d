package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studio-booking/internal/domain/user"
	"studio-booking/internal/handler/middleware"
	"studio-booking/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := jwt.NewService("test-secret", time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := gin.New()
	protected := router.Group("", authMiddleware.RequireAuth())
	protected.GET("/me", func(c *gin.Context) {
		id, _ := middleware.GetUserID(c)
		role, _ := middleware.GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "role": role.String()})
	})
	protected.DELETE("/admin-only", authMiddleware.RequireRoleAtLeast(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, jwtService
}

func performAuthRequest(router *gin.Engine, method, url, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	router, jwtService := setupAuthRouter(t)

	t.Run("rejects a request without a token", func(t *testing.T) {
		rec := performAuthRequest(router, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		rec := performAuthRequest(router, http.MethodGet, "/me", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := jwt.NewService("test-secret", -time.Minute)
		token, err := expired.GenerateToken(uuid.New(), user.RoleAdmin)
		require.NoError(t, err)

		rec := performAuthRequest(router, http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("exposes the user ID and role to handlers", func(t *testing.T) {
		userID := uuid.New()
		token, err := jwtService.GenerateToken(userID, user.RoleStaff)
		require.NoError(t, err)

		rec := performAuthRequest(router, http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), userID.String())
		assert.Contains(t, rec.Body.String(), "staff")
	})
}

func TestRequireRoleAtLeast(t *testing.T) {
	router, jwtService := setupAuthRouter(t)

	t.Run("staff cannot reach admin-only routes", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), user.RoleStaff)
		require.NoError(t, err)

		rec := performAuthRequest(router, http.MethodDelete, "/admin-only", token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	})

	t.Run("admin passes", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), user.RoleAdmin)
		require.NoError(t, err)

		rec := performAuthRequest(router, http.MethodDelete, "/admin-only", token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
