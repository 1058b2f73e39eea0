package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bonhomie/fest-system/live"
	"github.com/bonhomie/fest-system/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the fest frontend origin before the event.
		return true
	},
}

type WebSocketHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// ServeEvents subscribes a client to live-status updates for the whole
// events list.
func (h *WebSocketHandler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, services.EventsRoom)
}

// ServeEvent subscribes a client to one event's room.
func (h *WebSocketHandler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		http.Error(w, "missing eventID", http.StatusBadRequest)
		return
	}
	h.serve(w, r, "event_"+eventID)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Warn("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
