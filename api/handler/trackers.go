package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/api/middleware"
	"github.com/use-agent/statuswatch/models"
)

// Trackers is the tracker workflow the handlers drive.
type Trackers interface {
	Create(ctx context.Context, userID string, in models.TrackerCreate) (*models.Tracker, error)
	List(ctx context.Context, userID string) ([]*models.Tracker, error)
	Get(ctx context.Context, userID string, id int64) (*models.Tracker, error)
	Delete(ctx context.Context, userID string, id int64) error
	Refresh(ctx context.Context, userID string, id int64) (*models.RefreshResponse, error)
	SetStatus(ctx context.Context, userID string, id int64, newStatus string) (*models.RefreshResponse, error)
	Profile(ctx context.Context, userID, email string) (*models.Profile, error)
	SetPhone(ctx context.Context, userID, phone string) (string, *models.Profile, error)
	TestNotify(ctx context.Context, phone, message string) bool
}

// CreateTracker returns a handler for POST /api/v1/trackers.
//
// The initial status is scraped before anything is stored; a fetch or parse
// failure rejects the tracker with 400.
func CreateTracker(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TrackerCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		t, err := svc.Create(c.Request.Context(), middleware.UserID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// ListTrackers returns a handler for GET /api/v1/trackers.
func ListTrackers(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetTracker returns a handler for GET /api/v1/trackers/:id.
func GetTracker(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := trackerID(c)
		if !ok {
			return
		}
		t, err := svc.Get(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// RefreshTracker returns a handler for POST /api/v1/trackers/:id/refresh.
func RefreshTracker(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := trackerID(c)
		if !ok {
			return
		}
		resp, err := svc.Refresh(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SetTrackerStatus returns a handler for PUT /api/v1/trackers/:id/status.
func SetTrackerStatus(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := trackerID(c)
		if !ok {
			return
		}
		var req models.StatusChange
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		resp, err := svc.SetStatus(c.Request.Context(), middleware.UserID(c), id, req.NewStatus)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DeleteTracker returns a handler for DELETE /api/v1/trackers/:id.
func DeleteTracker(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := trackerID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Tracker deleted successfully"})
	}
}
