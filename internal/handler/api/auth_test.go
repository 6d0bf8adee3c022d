package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"studio-booking/internal/handler/api"
	"studio-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type stubAuthCommands struct {
	result   *commands.LoginResult
	err      error
	gotEmail string
}

func (s *stubAuthCommands) Login(_ context.Context, email, _ string) (*commands.LoginResult, error) {
	s.gotEmail = email
	return s.result, s.err
}

type AuthHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	auth   *stubAuthCommands
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.auth = &stubAuthCommands{}
	handler := api.NewAuthHandler(s.auth)
	s.router.POST("/auth/login", handler.Login)
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) performLogin(body any) *httptest.ResponseRecorder {
	return performJSONRequest(s.T(), s.router, http.MethodPost, "/auth/login", body)
}

func (s *AuthHandlerTestSuite) TestLogin() {
	s.Run("returns the access token on success", func() {
		s.SetupTest()
		s.auth.result = &commands.LoginResult{
			UserID:      uuid.New(),
			Email:       "admin@studio.test",
			Role:        "admin",
			AccessToken: "header.payload.signature",
		}

		rec := s.performLogin(map[string]any{"email": "admin@studio.test", "password": "secret"})

		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "header.payload.signature")
		s.Equal("admin@studio.test", s.auth.gotEmail)
	})

	s.Run("maps bad credentials to 401", func() {
		s.SetupTest()
		s.auth.err = commands.ErrInvalidCredentials

		rec := s.performLogin(map[string]any{"email": "admin@studio.test", "password": "wrong"})

		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Contains(rec.Body.String(), "INVALID_CREDENTIALS")
	})

	s.Run("maps a deactivated account to 403", func() {
		s.SetupTest()
		s.auth.err = commands.ErrUserInactive

		rec := s.performLogin(map[string]any{"email": "old@studio.test", "password": "secret"})

		s.Equal(http.StatusForbidden, rec.Code)
		s.Contains(rec.Body.String(), "USER_INACTIVE")
	})

	s.Run("rejects a malformed email", func() {
		s.SetupTest()

		rec := s.performLogin(map[string]any{"email": "not-an-email", "password": "secret"})

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
