package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/dto"
	"github.com/contactkeeper/contacts_backend/internal/handlers"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest, baseURL string) (*domain.User, error) {
	args := m.Called(ctx, req, baseURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email string, password string) (*domain.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockAuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) RequestEmailConfirmation(ctx context.Context, email string, baseURL string) error {
	args := m.Called(ctx, email, baseURL)
	return args.Error(0)
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, info domain.GoogleUserInfo) (*domain.TokenPair, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *MockAuthService) ResolveUser(ctx context.Context, accessToken string) (*domain.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)

// --- Test Suite ---
type AuthHandlerTestSuite struct {
	suite.Suite
	mockAuthService *MockAuthService
	router          *gin.Engine
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockAuthService = new(MockAuthService)

	cfg := &config.Config{AppBaseURL: "http://localhost:8080"}
	h := handlers.NewAuthHandler(suite.mockAuthService, cfg)

	suite.router = gin.New()
	auth := suite.router.Group("/api/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.GET("/refresh_token", h.RefreshToken)
	auth.GET("/confirmed_email/:token", h.ConfirmedEmail)
	auth.POST("/request_email", h.RequestEmail)
}

func (suite *AuthHandlerTestSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	suite.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Signup Tests ---

func (suite *AuthHandlerTestSuite) TestSignup_Success() {
	reqBody := dto.RegisterRequest{Username: "newuser", Email: "new@example.com", Password: "password123"}
	created := &domain.User{UserID: uuid.NewString(), Username: reqBody.Username, Email: reqBody.Email}

	suite.mockAuthService.On("Register", mock.Anything, reqBody, "http://localhost:8080").Return(created, nil).Once()

	w := suite.postJSON("/api/auth/signup", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.UserID, resp.ID)
	suite.Equal(created.Email, resp.Email)
	suite.False(resp.Confirmed)
	suite.mockAuthService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestSignup_DuplicateEmail() {
	reqBody := dto.RegisterRequest{Username: "newuser", Email: "taken@example.com", Password: "password123"}

	suite.mockAuthService.On("Register", mock.Anything, reqBody, mock.Anything).Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.postJSON("/api/auth/signup", reqBody)

	suite.Equal(http.StatusConflict, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Account already exists", resp.Error)
}

func (suite *AuthHandlerTestSuite) TestSignup_InvalidBody() {
	w := suite.postJSON("/api/auth/signup", gin.H{"username": "x", "email": "not-an-email"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAuthService.AssertNotCalled(suite.T(), "Register", mock.Anything, mock.Anything, mock.Anything)
}

// --- Login Tests ---

func (suite *AuthHandlerTestSuite) TestLogin_Success() {
	pair := &domain.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer"}

	suite.mockAuthService.On("Login", mock.Anything, "user@example.com", "password123").Return(pair, nil).Once()

	w := suite.postJSON("/api/auth/login", dto.LoginRequest{Email: "user@example.com", Password: "password123"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TokenPairResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("access", resp.AccessToken)
	suite.Equal("refresh", resp.RefreshToken)
	suite.Equal("bearer", resp.TokenType)
}

func (suite *AuthHandlerTestSuite) TestLogin_InvalidCredentials() {
	suite.mockAuthService.On("Login", mock.Anything, "user@example.com", "wrong").Return(nil, apperrors.ErrInvalidCredentials).Once()

	w := suite.postJSON("/api/auth/login", dto.LoginRequest{Email: "user@example.com", Password: "wrong"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Invalid email or password", resp.Error)
}

func (suite *AuthHandlerTestSuite) TestLogin_EmailNotConfirmed() {
	suite.mockAuthService.On("Login", mock.Anything, "pending@example.com", "password123").Return(nil, apperrors.ErrEmailNotConfirmed).Once()

	w := suite.postJSON("/api/auth/login", dto.LoginRequest{Email: "pending@example.com", Password: "password123"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Email not confirmed", resp.Error)
}

// --- RefreshToken Tests ---

func (suite *AuthHandlerTestSuite) TestRefreshToken_Success() {
	pair := &domain.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh", TokenType: "bearer"}

	suite.mockAuthService.On("Refresh", mock.Anything, "old-refresh").Return(pair, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer old-refresh")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TokenPairResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("new-refresh", resp.RefreshToken)
}

func (suite *AuthHandlerTestSuite) TestRefreshToken_MissingHeader() {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAuthService.AssertNotCalled(suite.T(), "Refresh", mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestRefreshToken_Rejected() {
	suite.mockAuthService.On("Refresh", mock.Anything, "reused-token").Return(nil, apperrors.ErrInvalidToken).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer reused-token")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Invalid refresh token", resp.Error)
}

// --- ConfirmedEmail Tests ---

func (suite *AuthHandlerTestSuite) TestConfirmedEmail_Success() {
	suite.mockAuthService.On("ConfirmEmail", mock.Anything, "valid-token").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/valid-token", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.MessageResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Email confirmed", resp.Message)
}

func (suite *AuthHandlerTestSuite) TestConfirmedEmail_AlreadyConfirmed() {
	suite.mockAuthService.On("ConfirmEmail", mock.Anything, "valid-token").Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/valid-token", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.MessageResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Your email is already confirmed", resp.Message)
}

func (suite *AuthHandlerTestSuite) TestConfirmedEmail_BadToken() {
	suite.mockAuthService.On("ConfirmEmail", mock.Anything, "bad-token").Return(false, apperrors.ErrInvalidToken).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/bad-token", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Invalid token for email verification", resp.Error)
}

// --- RequestEmail Tests ---

func (suite *AuthHandlerTestSuite) TestRequestEmail_AlwaysGeneric() {
	suite.mockAuthService.On("RequestEmailConfirmation", mock.Anything, "anyone@example.com", mock.Anything).Return(nil).Once()

	w := suite.postJSON("/api/auth/request_email", dto.RequestEmailRequest{Email: "anyone@example.com"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.MessageResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Check your email for confirmation.", resp.Message)
}

// --- Run Suite ---
func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
