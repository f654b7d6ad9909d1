package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/metrics"
	"github.com/devcrm/crm-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username           string `json:"username"            validate:"required,min=3,max=50"`
	Email              string `json:"email"               validate:"required,email"`
	Password           string `json:"password"            validate:"required,min=6,max=72"`
	FirstName          string `json:"first_name"          validate:"max=100"`
	LastName           string `json:"last_name"           validate:"max=100"`
	LanguagePreference string `json:"language_preference"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token              string   `json:"token"`
	Type               string   `json:"type"`
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	FirstName          string   `json:"first_name,omitempty"`
	LastName           string   `json:"last_name,omitempty"`
	Roles              []string `json:"roles"`
	LanguagePreference string   `json:"language_preference"`
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	roles := r.Roles
	if roles == nil {
		roles = []string{}
	}
	return authResponse{
		Token:              r.Token,
		Type:               r.TokenType,
		ID:                 r.UserID,
		Username:           r.Username,
		Email:              r.Email,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Roles:              roles,
		LanguagePreference: r.LanguagePreference,
	}
}

// Register creates a new user account with the default role and returns a token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		LanguagePreference: req.LanguagePreference,
	})
	metrics.AuthAttemptsTotal.WithLabelValues("register", resultLabel(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("login", resultLabel(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(result))
}
