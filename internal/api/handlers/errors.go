package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tss-backtest/internal/api/models"
	"tss-backtest/internal/model"
)

func abortWithError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// abortWithRunError maps simulation errors onto HTTP responses.
func abortWithRunError(c *gin.Context, err error) {
	var invalidRange *model.InvalidRangeError
	var insufficient *model.InsufficientDataError
	switch {
	case errors.As(err, &invalidRange):
		details := map[string]any{}
		if !invalidRange.Start.IsZero() || !invalidRange.End.IsZero() {
			details["start_date"] = invalidRange.Start.Format("2006-01-02")
			details["end_date"] = invalidRange.End.Format("2006-01-02")
		} else {
			details["days"] = invalidRange.Days
		}
		abortWithError(c, http.StatusBadRequest, "INVALID_RANGE", err.Error(), details)
	case errors.As(err, &insufficient):
		abortWithError(c, http.StatusBadRequest, "INSUFFICIENT_DATA", err.Error(), map[string]any{
			"bars": insufficient.Bars,
			"need": insufficient.Need,
		})
	case errors.Is(err, errTooManyDays):
		abortWithError(c, http.StatusBadRequest, "RANGE_TOO_LARGE", err.Error(), nil)
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "BACKTEST_ERROR", err.Error(), nil)
	}
}

var errTooManyDays = errors.New("requested range exceeds the configured maximum")
