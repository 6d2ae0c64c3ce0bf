package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "gin-auth-core/internal/handler/dto/request"
	resdto "gin-auth-core/internal/handler/dto/response"
	"gin-auth-core/internal/handler/httperr"
	"gin-auth-core/internal/pkg/config"
	"gin-auth-core/internal/pkg/cookie"
	"gin-auth-core/internal/pkg/errs"
	"gin-auth-core/internal/usecase/commands"
	"gin-auth-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AuthHandler struct {
	authCommands  commands.AuthCommands
	userQueries   queries.UserQueries
	eventQueries  queries.EventQueries
	cfg           config.Config
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthHandler(
	authCommands commands.AuthCommands,
	userQueries queries.UserQueries,
	eventQueries queries.EventQueries,
	cfg config.Config,
) *AuthHandler {
	accessExpiry, err := time.ParseDuration(cfg.JWT.AccessTokenDuration)
	if err != nil {
		accessExpiry = 15 * time.Minute
	}
	refreshExpiry, err := time.ParseDuration(cfg.JWT.RefreshTokenDuration)
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	return &AuthHandler{
		authCommands:  authCommands,
		userQueries:   userQueries,
		eventQueries:  eventQueries,
		cfg:           cfg,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// @Summary Register a new user
// @Description Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RegisterRequest true "Register request"
// @Success 201 {object} resdto.RegisterResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req reqdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.authCommands.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidEmail):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid email address", nil)
		case errors.Is(err, errs.ErrInvalidPassword):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Password must be between 8 and 100 characters", nil)
		case errors.Is(err, errs.ErrUserAlreadyExists):
			httperr.AbortWithError(c, http.StatusConflict, err, "Email already registered", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	cookie.SetTokenCookies(c, h.cfg.Cookie,
		result.TokenPair.AccessToken, result.TokenPair.RefreshToken,
		h.accessExpiry, h.refreshExpiry)

	var userResp resdto.UserResponse
	_ = copier.Copy(&userResp, result.User)

	c.JSON(http.StatusCreated, resdto.RegisterResponse{
		AccessToken: result.TokenPair.AccessToken,
		User:        userResp,
	})
}

// @Summary User login
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.authCommands.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidCredentials):
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid email or password", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	cookie.SetTokenCookies(c, h.cfg.Cookie,
		result.TokenPair.AccessToken, result.TokenPair.RefreshToken,
		h.accessExpiry, h.refreshExpiry)

	var userResp resdto.UserResponse
	_ = copier.Copy(&userResp, result.User)

	c.JSON(http.StatusOK, resdto.LoginResponse{
		AccessToken: result.TokenPair.AccessToken,
		User:        userResp,
	})
}

// @Summary Refresh token pair
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RefreshRequest false "Refresh request"
// @Success 200 {object} resdto.RefreshResponse
// @Failure 401 {object} httperr.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req reqdto.RefreshRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken = cookie.GetRefreshToken(c)
	}
	if refreshToken == "" {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing refresh token"), "Refresh token required", nil)
		return
	}

	tokens, err := h.authCommands.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired refresh token", nil)
		return
	}

	cookie.SetTokenCookies(c, h.cfg.Cookie,
		tokens.AccessToken, tokens.RefreshToken,
		h.accessExpiry, h.refreshExpiry)

	c.JSON(http.StatusOK, resdto.RefreshResponse{AccessToken: tokens.AccessToken})
}

// @Summary User logout
// @Description Clear session cookies
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// Stateless JWTs: logout clears the cookies, clients drop the tokens.
	cookie.ClearTokenCookies(c, h.cfg.Cookie)
	c.Status(http.StatusNoContent)
}

// @Summary Get current user
// @Description Get current authenticated user information
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.UserResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user context"), "User not authenticated", nil)
		return
	}

	view, err := h.userQueries.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUserNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "User not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	var userResp resdto.UserResponse
	_ = copier.Copy(&userResp, view)
	c.JSON(http.StatusOK, userResp)
}

// @Summary Get current user's event log
// @Description List authentication events for the current user, oldest first
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.EventLogResponse
// @Failure 401 {object} httperr.Response
// @Router /auth/me/events [get]
func (h *AuthHandler) MeEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user context"), "User not authenticated", nil)
		return
	}

	views, err := h.eventQueries.ListForUser(c.Request.Context(), userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	events := make([]resdto.EventResponse, 0, len(views))
	for _, v := range views {
		events = append(events, resdto.EventResponse{
			Name:       v.Name,
			OccurredAt: v.OccurredAt,
			Payload:    v.Payload,
		})
	}
	c.JSON(http.StatusOK, resdto.EventLogResponse{Events: events})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
