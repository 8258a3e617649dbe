package scheduling

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/punithchavan/CHIKITSA/pkg/pagination"
)

// Handler exposes the appointment and connection endpoints.
type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With().Str("handler", "scheduling").Logger(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/admin/connect", h.Connect)
	e.GET("/admin/active-connections", h.ActiveConnections)
	e.POST("/admin/update-appointment-status", h.UpdateStatus)
	e.POST("/admin/sync-connections", h.SyncConnections)
	e.GET("/admin/stats", h.AdminStats)
	e.GET("/admin/appointments", h.ListByStatus)
	e.POST("/api/appointment/:appointmentId/cancel", h.Cancel)
	e.GET("/api/admin/dashboard-stats", h.DashboardStats)
	e.GET("/api/doctor/:doctorId/appointments/today", h.TodayForDoctor)
	e.GET("/api/doctor/:doctorId/patients", h.PatientsOfDoctor)
	e.GET("/api/patient/:patientId/appointments", h.UpcomingForPatient)
}

func (h *Handler) Connect(c echo.Context) error {
	var in ConnectInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	appt, err := h.svc.Connect(c.Request().Context(), &in)
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error().Err(err).Msg("booking failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not create appointment")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message":     "Connection established",
		"appointment": appt,
	})
}

func (h *Handler) ActiveConnections(c echo.Context) error {
	conns, err := h.svc.ActiveConnections(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("active connections listing failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch active connections")
	}
	return c.JSON(http.StatusOK, conns)
}

type updateStatusRequest struct {
	AppointmentID string `json:"appointmentId"`
	Status        Status `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	}

	appt, count, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error().Err(err).Msg("status update failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not update appointment")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":           "Appointment status updated",
		"appointment":       appt,
		"activeConnections": count,
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	}

	appt, err := h.svc.Cancel(c.Request().Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("cancellation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not cancel appointment")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Appointment cancelled",
		"appointment": appt,
	})
}

func (h *Handler) SyncConnections(c echo.Context) error {
	count, err := h.svc.SyncConnections(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("connection sync failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not sync connections")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":           "Connections synced",
		"activeConnections": count,
	})
}

func (h *Handler) AdminStats(c echo.Context) error {
	stats, err := h.svc.AdminStats(c.Request().Context())
	switch {
	case errors.Is(err, ErrAdminNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Admin not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("admin stats failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) DashboardStats(c echo.Context) error {
	stats, err := h.svc.DashboardStats(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("dashboard stats failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch dashboard stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) TodayForDoctor(c echo.Context) error {
	day, err := h.svc.TodayForDoctor(c.Request().Context(), c.Param("doctorId"), time.Now())
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("daily schedule failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch appointments")
	}
	return c.JSON(http.StatusOK, day)
}

func (h *Handler) PatientsOfDoctor(c echo.Context) error {
	roster, err := h.svc.PatientsOfDoctor(c.Request().Context(), c.Param("doctorId"))
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("patient roster failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch patients")
	}
	return c.JSON(http.StatusOK, roster)
}

func (h *Handler) UpcomingForPatient(c echo.Context) error {
	upcoming, err := h.svc.UpcomingForPatient(c.Request().Context(), c.Param("patientId"), time.Now())
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case err != nil:
		h.logger.Error().Err(err).Msg("upcoming appointments failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch appointments")
	}
	return c.JSON(http.StatusOK, upcoming)
}

func (h *Handler) ListByStatus(c echo.Context) error {
	status := Status(c.QueryParam("status"))
	if status == "" {
		status = StatusScheduled
	}
	p := pagination.FromContext(c)

	conns, total, err := h.svc.ListByStatus(c.Request().Context(), status, p.Limit, p.Offset)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error().Err(err).Msg("appointment listing failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch appointments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(conns, total, p.Limit, p.Offset))
}
