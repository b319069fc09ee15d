package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/dto"
	"github.com/contactkeeper/contacts_backend/internal/middleware"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
	baseURL     string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService portssvc.AuthSvcFacade, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		baseURL:     cfg.AppBaseURL,
	}
}

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// registerAuthRoutes sets up the routes for authentication.
func registerAuthRoutes(rg *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services.Auth, cfg)

	// Credential endpoints get a tight per-IP limit
	rate, _ := limiter.NewRateFromFormatted("5-M")
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)
	limitMiddleware := middleware.RateLimit(ipLimiter)

	auth := rg.Group("/api/auth")
	{
		auth.POST("/signup", limitMiddleware, h.Signup)
		auth.POST("/login", limitMiddleware, h.Login)
		auth.GET("/refresh_token", h.RefreshToken)
		auth.GET("/confirmed_email/:token", h.ConfirmedEmail)
		auth.POST("/request_email", limitMiddleware, h.RequestEmail)
	}

	registerGoogleOAuthRoutes(auth, services)
}

// Signup godoc
// @Summary Register a new user
// @Description Creates an unconfirmed account and sends a confirmation email.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Account already exists"
// @Failure 500 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req, h.baseURL)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Account already exists"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to register user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// Login godoc
// @Summary User login
// @Description Authenticates a user and returns an access+refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmailNotConfirmed):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Email not confirmed"})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
		default:
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Login failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to log in"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTokenPairResponse(pair))
}

// RefreshToken godoc
// @Summary Rotate token pair
// @Description Exchanges a valid refresh token (bearer) for a new access+refresh pair.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.TokenPairResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/refresh_token [get]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid refresh token"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid refresh token"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Token refresh failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to refresh token"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTokenPairResponse(pair))
}

// ConfirmedEmail godoc
// @Summary Confirm email address
// @Description Confirms the email carried by the token. Idempotent.
// @Tags auth
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/confirmed_email/{token} [get]
func (h *AuthHandler) ConfirmedEmail(c *gin.Context) {
	token := c.Param("token")

	alreadyConfirmed, err := h.authService.ConfirmEmail(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid token for email verification"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Verification error"})
		default:
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Email confirmation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to confirm email"})
		}
		return
	}

	if alreadyConfirmed {
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email confirmed"})
}

// RequestEmail godoc
// @Summary Re-send confirmation email
// @Description Sends the confirmation email again for unconfirmed accounts.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RequestEmailRequest true "Email address"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/request_email [post]
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req dto.RequestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.authService.RequestEmailConfirmation(c.Request.Context(), req.Email, h.baseURL); err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to request confirmation email", slog.String("error", err.Error()))
	}

	// Identical response whether or not the address is registered.
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Check your email for confirmation."})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
