package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/models"
	"github.com/use-agent/statuswatch/store"
	"github.com/use-agent/statuswatch/tracker"
)

// respondError maps an error to the correct HTTP status code and writes a
// structured JSON error response.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	switch {
	case errors.As(err, &scrapeErr):
	case errors.Is(err, store.ErrNotFound):
		scrapeErr = models.NewScrapeError(models.ErrCodeNotFound, "tracker not found", err)
	case errors.Is(err, tracker.ErrRejected):
		scrapeErr = models.NewScrapeError(models.ErrCodeScrapeRejected, err.Error(), err)
	default:
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	code := mapErrorToStatus(scrapeErr)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, models.ErrorResponse{Error: scrapeErr.ToDetail()})
}

// badRequest writes a 400 for a binding or parameter error.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeScrapeRejected:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeFetchFailed:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// trackerID parses the :id path parameter.
func trackerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: "tracker id must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}
