package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"hail/internal/auth"
	"hail/internal/dispatch"
	"hail/internal/domain"
	"hail/internal/observability"
	"hail/internal/presence"
	"hail/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// clientAction is a message sent by a connected client.
type clientAction struct {
	Action string  `json:"action"`
	RideID string  `json:"ride_id,omitempty"`
	Lat    float64 `json:"lat,omitempty"`
	Lng    float64 `json:"lng,omitempty"`
}

// WSHandler upgrades clients to a websocket and services their
// subscription and location messages until the connection drops.
type WSHandler struct {
	hub         *dispatch.Hub
	registry    *presence.Registry
	rideService *service.RideService
	log         *slog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *dispatch.Hub, registry *presence.Registry, rideService *service.RideService, log *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, registry: registry, rideService: rideService, log: log}
}

// Attach handles GET /v1/ws
func (h *WSHandler) Attach(c *gin.Context) {
	id, _ := auth.FromContext(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "user_id", id.UserID, "err", err)
		return
	}

	session := h.hub.Add(id.UserID, conn)
	observability.WSSessions.Inc()

	go h.readLoop(conn, session, id)
}

func (h *WSHandler) readLoop(conn *websocket.Conn, session *dispatch.Session, id auth.Identity) {
	defer func() {
		h.hub.Remove(session)
		observability.WSSessions.Dec()
		_ = conn.Close()

		// Transport loss behaves exactly like an explicit GoOffline, so
		// stale online drivers never accumulate.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.registry.Disconnect(ctx, id.UserID); err != nil {
			h.log.Warn("presence cleanup failed", "user_id", id.UserID, "err", err)
		}
	}()

	conn.SetReadLimit(4096)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("ws closed unexpectedly", "user_id", id.UserID, "err", err)
			}
			return
		}

		var action clientAction
		if err := json.Unmarshal(payload, &action); err != nil {
			continue
		}

		h.handleAction(id, action)
	}
}

func (h *WSHandler) handleAction(id auth.Identity, action clientAction) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch action.Action {
	case "watch-ride":
		err = h.registry.WatchRide(ctx, id.UserID, action.RideID)
	case "unwatch-ride":
		err = h.registry.UnwatchRide(ctx, id.UserID, action.RideID)
	case "go-online":
		if id.Role == domain.RoleDriver {
			err = h.registry.GoOnline(ctx, id.UserID)
		}
	case "go-offline":
		if id.Role == domain.RoleDriver {
			err = h.registry.GoOffline(ctx, id.UserID)
		}
	case "location-update":
		err = h.rideService.UpdateLocation(ctx, service.UpdateLocationInput{
			DriverID: id.UserID,
			RideID:   action.RideID,
			Lat:      action.Lat,
			Lng:      action.Lng,
		})
	default:
		return
	}

	if err != nil {
		h.log.Debug("ws action failed", "user_id", id.UserID, "action", action.Action, "err", err)
	}
}
