package filestore

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/punithchavan/CHIKITSA/internal/platform/phi"
)

// DownloadHandler serves stored uploads. When backed by an EncryptedStore the
// response carries the original plaintext bytes; the stored form stays
// encrypted.
func DownloadHandler(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("name")

		rc, err := store.Open(c.Request().Context(), name)
		switch {
		case errors.Is(err, ErrFileNotFound), errors.Is(err, ErrInvalidName):
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		case errors.Is(err, phi.ErrDecrypt):
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to decrypt file")
		case err != nil:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to read file")
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		c.Response().Header().Set(echo.HeaderContentType, contentType)
		c.Response().WriteHeader(http.StatusOK)
		_, err = io.Copy(c.Response(), rc)
		return err
	}
}
