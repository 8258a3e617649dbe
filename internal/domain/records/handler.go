package records

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/punithchavan/CHIKITSA/internal/platform/filestore"
	"github.com/punithchavan/CHIKITSA/internal/platform/phi"
)

// Handler exposes the medical-record endpoints. Create and Update accept
// multipart forms because records may carry a file.
type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With().Str("handler", "records").Logger(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/create-medical-record", h.Create)
	e.PUT("/api/update-medical-record", h.Update)
	e.GET("/api/patient/:patientId/medical-records", h.ListForPatient)
	e.GET("/api/medical-record/:patientId/:doctorId", h.LatestForPair)
}

func (h *Handler) Create(c echo.Context) error {
	in := &CreateInput{
		PatientID:      c.FormValue("patientId"),
		DoctorID:       c.FormValue("doctorId"),
		AppointmentID:  c.FormValue("appointmentId"),
		Diagnosis:      c.FormValue("diagnosis"),
		Prescription:   c.FormValue("prescription"),
		TestsSuggested: c.FormValue("testsSuggested"),
		Description:    c.FormValue("description"),
	}

	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
		}
		defer f.Close()
		in.File = f
		in.FileName = fh.Filename
	}

	rec, err := h.svc.Create(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case errors.Is(err, filestore.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	case err != nil:
		h.logger.Error().Err(err).Msg("record creation failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not create medical record")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Medical record created",
		"record":  rec,
	})
}

func (h *Handler) Update(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form data")
	}
	optional := func(key string) *string {
		if vs, ok := params[key]; ok && len(vs) > 0 {
			return &vs[0]
		}
		return nil
	}

	in := &UpdateInput{
		RecordID:       c.FormValue("recordId"),
		Diagnosis:      optional("diagnosis"),
		Prescription:   optional("prescription"),
		TestsSuggested: optional("testsSuggested"),
		Description:    optional("description"),
	}

	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
		}
		defer f.Close()
		in.File = f
		in.FileName = fh.Filename
	}

	rec, err := h.svc.Update(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Medical record not found")
	case errors.Is(err, filestore.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	case err != nil:
		h.logger.Error().Err(err).Msg("record update failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not update medical record")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Medical record updated",
		"record":  rec,
	})
}

func (h *Handler) ListForPatient(c echo.Context) error {
	views, err := h.svc.ListForPatient(c.Request().Context(), c.Param("patientId"))
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, phi.ErrDecrypt):
		h.logger.Error().Err(err).Msg("record decryption failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to decrypt record description")
	case err != nil:
		h.logger.Error().Err(err).Msg("record listing failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch medical records")
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) LatestForPair(c echo.Context) error {
	view, err := h.svc.LatestForPair(c.Request().Context(), c.Param("patientId"), c.Param("doctorId"))
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "No medical record found")
	case errors.Is(err, phi.ErrDecrypt):
		h.logger.Error().Err(err).Msg("record decryption failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to decrypt record description")
	case err != nil:
		h.logger.Error().Err(err).Msg("record lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not fetch medical record")
	}
	return c.JSON(http.StatusOK, view)
}
