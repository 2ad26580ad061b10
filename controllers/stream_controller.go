package controllers

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"insulation-crm-api/config"
	"insulation-crm-api/middleware"
	"insulation-crm-api/models"
	"insulation-crm-api/services"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// Stream timing defaults in seconds. The max duration bound forces clients
// to reconnect periodically so dead connections cannot pile up server-side.
const (
	defaultStreamMaxDuration = 120
	defaultStreamInterval    = 30
)

func streamSeconds(envKey string, fallback int) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(envKey)); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return time.Duration(fallback) * time.Second
}

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// sseAuthError emits a dedicated auth_error frame instead of a generic
// stream error so the client can redirect to login instead of retrying.
func sseAuthError(c *gin.Context) {
	sseHeaders(c)
	c.Render(http.StatusOK, sse.Event{
		Event: "auth_error",
		Data: map[string]string{
			"error":   "unauthorized",
			"message": "Please log in",
		},
	})
	c.Writer.Flush()
}

// streamToken pulls the JWT from the Authorization header or, because the
// browser EventSource API cannot set headers, from the token query param.
func streamToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if tokenString := strings.TrimPrefix(authHeader, "Bearer "); tokenString != authHeader {
		return tokenString
	}
	return c.Query("token")
}

// StreamNotifications is the SSE delivery channel for the aggregate
// notification payload. It recomputes the payload on a fixed interval and
// only sends a frame when the content hash changed. Approval notifications
// are marked read once transmitted, so the stream shows each one at most
// once.
func StreamNotifications(c *gin.Context) {
	claims, err := middleware.ParseToken(streamToken(c))
	if err != nil {
		sseAuthError(c)
		return
	}

	var user models.User
	if err := config.DB.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		sseAuthError(c)
		return
	}

	viewer := services.Viewer{
		UserID:  user.UserID,
		IsAdmin: user.IsAdmin(),
	}
	if user.AgentID != nil {
		viewer.AgentID = *user.AgentID
	}

	sseHeaders(c)

	maxDuration := streamSeconds("SSE_MAX_DURATION", defaultStreamMaxDuration)
	pollInterval := streamSeconds("SSE_POLL_INTERVAL", defaultStreamInterval)

	service := services.NewNotificationService(getDB())
	ctx := c.Request.Context()

	deadline := time.NewTimer(maxDuration)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastHash := ""
	for {
		// Token expiry discovered mid-loop ends the stream the same way
		// a rejected connection starts: with an auth_error frame.
		if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
			c.Render(http.StatusOK, sse.Event{
				Event: "auth_error",
				Data:  map[string]string{"error": "unauthorized", "message": "Session expired"},
			})
			c.Writer.Flush()
			return
		}

		payload, err := service.StreamCounts(ctx, viewer)
		if err != nil {
			// Terminates only this connection; the client falls back
			// to polling after its retry budget.
			log.Printf("Notification stream query failed for user %d: %v", viewer.UserID, err)
			return
		}

		hash, err := payload.Hash()
		if err != nil {
			log.Printf("Notification stream payload encode failed for user %d: %v", viewer.UserID, err)
			return
		}

		if hash != lastHash {
			c.Render(http.StatusOK, sse.Event{Data: payload})
			c.Writer.Flush()
			lastHash = hash

			// At-most-once: transmitted notifications will not appear
			// on the next iteration.
			for _, n := range payload.ApprovalNotifications {
				if err := service.MarkRead(ctx, n.NotificationID, viewer.UserID); err != nil {
					log.Printf("Failed to mark streamed notification %d read: %v", n.NotificationID, err)
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			// Session budget spent; the client reconnects.
			return
		case <-ticker.C:
		}
	}
}
