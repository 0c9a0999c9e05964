package handler

import (
	"net/http"
	"strings"

	"pairlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListConnections returns all connections, optionally filtered by a
// comma-separated `states` query (e.g. ?states=WAITING,CANCELED).
func (h *Handler) ListConnections(c *gin.Context) {
	states := models.ConnectionStates
	if raw := c.Query("states"); raw != "" {
		states = states[:0:0]
		for _, part := range strings.Split(raw, ",") {
			state := models.ConnectionState(strings.TrimSpace(part))
			if !knownConnectionState(state) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown connection state: " + string(state)})
				return
			}
			states = append(states, state)
		}
	}

	conns, err := h.Storage.ListConnectionsByStates(states)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list connections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

// ListPendingIntents returns every outstanding pending intent.
func (h *Handler) ListPendingIntents(c *gin.Context) {
	intents, err := h.Storage.ListPendingIntents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending intents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_intents": intents})
}

func knownConnectionState(state models.ConnectionState) bool {
	for _, known := range models.ConnectionStates {
		if state == known {
			return true
		}
	}
	return false
}
