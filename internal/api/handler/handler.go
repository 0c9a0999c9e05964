// Package handler exposes the operator HTTP surface: token issuing,
// read-only listings of connections and pending intents, and a websocket
// feed of live match events.
package handler

import "pairlink/backend/internal/storage"

// Handler holds the dependencies of the HTTP endpoints.
type Handler struct {
	Storage *storage.Service
	Secret  []byte
}

// NewHandler creates a new Handler.
func NewHandler(s *storage.Service, jwtSecret string) *Handler {
	return &Handler{Storage: s, Secret: []byte(jwtSecret)}
}
