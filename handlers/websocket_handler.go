package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/riftops/clash-coordinator/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is handled by the CORS layer for the REST
		// surface; the socket accepts any origin and carries no secrets.
		return true
	},
}

type WebSocketHandler struct {
	hub    *notify.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *notify.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs subscribes the caller to roster change broadcasts for one Discord
// server. Clients connect to /ws/servers/{serverName}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	serverName := chi.URLParam(r, "serverName")
	if serverName == "" {
		http.Error(w, "missing serverName", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.String("server", serverName), slog.Any("error", err))
		return
	}

	h.hub.Subscribe(conn, serverName)
}
