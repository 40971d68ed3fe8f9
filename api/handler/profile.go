package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/api/middleware"
	"github.com/use-agent/statuswatch/models"
)

// GetProfile returns a handler for GET /api/v1/profile.
func GetProfile(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Profile(c.Request.Context(), middleware.UserID(c), "")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// UpdatePhone returns a handler for PUT /api/v1/profile/phone.
// The number must be E.164 (e.g. +919876543210).
func UpdatePhone(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PhoneUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		old, p, err := svc.SetPhone(c.Request.Context(), middleware.UserID(c), req.PhoneNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PhoneUpdateResponse{
			Success:  true,
			Message:  "Phone number updated successfully",
			OldPhone: old,
			NewPhone: p.Phone,
		})
	}
}

// TestNotification returns a handler for POST /api/v1/notify/test.
// Delivery failures are reported in the body with 200, not as HTTP errors.
func TestNotification(svc Trackers) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TestNotification
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		resp := models.NotificationResponse{Phone: req.PhoneNumber}
		if svc.TestNotify(c.Request.Context(), req.PhoneNumber, req.Message) {
			resp.Success = true
			resp.Message = fmt.Sprintf("Test notification sent to %s", req.PhoneNumber)
		} else {
			resp.Message = "Notification failed - check notification channel configuration"
		}
		c.JSON(http.StatusOK, resp)
	}
}
