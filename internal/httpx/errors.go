package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/menu"
)

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	var pc *menu.PriceChoiceError
	switch {
	case errors.As(err, &pc):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuthFailed), errors.Is(err, apperr.ErrReauthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as JSON. Database errors are logged and hidden from the
// client.
func Error(c *gin.Context, err error) {
	code := Status(err)
	var pc *menu.PriceChoiceError
	if errors.As(err, &pc) {
		c.JSON(code, menu.PriceChoice{
			Error:     err.Error(),
			Original:  pc.Original.String(),
			Truncated: pc.Truncated.StringFixed(2),
			Rounded:   pc.Rounded.StringFixed(2),
		})
		return
	}
	if code == http.StatusInternalServerError {
		rid, _ := c.Get("rid")
		logrus.WithError(err).WithField("rid", rid).Error("request failed")
		c.JSON(code, menu.HTTPError{Error: "internal error"})
		return
	}
	c.JSON(code, menu.HTTPError{Error: err.Error()})
}
