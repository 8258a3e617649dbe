package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/punithchavan/CHIKITSA/internal/platform/token"
)

// Handler exposes account and profile endpoints.
type Handler struct {
	svc    *Service
	tokens *token.Issuer
	logger zerolog.Logger
}

func NewHandler(svc *Service, tokens *token.Issuer, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		logger: logger.With().Str("handler", "identity").Logger(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/login", h.Login)
	e.POST("/api/users", h.CreateAccount)
	e.GET("/api/doctor/:username", h.GetDoctor)
	e.GET("/api/patient/:username", h.GetPatient)
	e.GET("/api/patient/by-name/:name", h.GetPatientByName)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login returns the account plus a signed session token. An unknown username
// is a 400 and a wrong password a 401; clients depend on the distinction.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	user, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, "User not found")
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect password")
	case err != nil:
		h.logger.Error().Err(err).Msg("login failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	signed, err := h.tokens.Issue(user.ID.String(), user.Username, string(user.Role))
	if err != nil {
		h.logger.Error().Err(err).Msg("token issue failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
		"token":   signed,
	})
}

// CreateAccount handles the role-polymorphic POST /api/users.
func (h *Handler) CreateAccount(c echo.Context) error {
	var in CreateAccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, profile, err := h.svc.CreateAccount(c.Request().Context(), &in)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Username already taken")
	case err != nil:
		h.logger.Error().Err(err).Msg("account creation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not create user")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
		"profile": profile,
	})
}

func (h *Handler) GetDoctor(c echo.Context) error {
	doc, err := h.svc.DoctorByUsername(c.Request().Context(), c.Param("username"))
	switch {
	case errors.Is(err, ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case errors.Is(err, ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor profile not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("doctor lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch doctor")
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.PatientByUsername(c.Request().Context(), c.Param("username"))
	switch {
	case errors.Is(err, ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient profile not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("patient lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPatientByName(c echo.Context) error {
	p, err := h.svc.PatientByName(c.Request().Context(), c.Param("name"))
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("patient lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch patient")
	}
	return c.JSON(http.StatusOK, p)
}
