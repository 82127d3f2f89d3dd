package dispatch

import (
	"context"
	"log/slog"

	"hail/internal/observability"
	"hail/internal/presence"
	"hail/internal/service"
)

// sender delivers an envelope to all open sessions of a user.
type sender interface {
	Send(userID string, env Envelope) int
}

// Dispatcher resolves a target selector against the presence registry and
// pushes the event to each connected subscriber. Failures never propagate
// to the caller; the state mutation has already committed.
type Dispatcher struct {
	hub      sender
	resolver presence.Resolver
	journal  *Journal // nil when the event journal is disabled
	log      *slog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(hub sender, resolver presence.Resolver, journal *Journal, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		hub:      hub,
		resolver: resolver,
		journal:  journal,
		log:      log,
	}
}

// ToUser pushes to every open connection of one user.
func (d *Dispatcher) ToUser(ctx context.Context, userID, event string, payload map[string]any) {
	d.publish(ctx, "user:"+userID, []string{userID}, event, payload)
}

// ToRide pushes to every watcher of a ride.
func (d *Dispatcher) ToRide(ctx context.Context, rideID, event string, payload map[string]any) {
	members, err := d.resolver.RideWatchers(ctx, rideID)
	if err != nil {
		d.dropped(ctx, "ride:"+rideID, event, err)
		return
	}
	d.publish(ctx, "ride:"+rideID, members, event, payload)
}

// ToOnlineDrivers pushes to the broadcast set of online drivers.
func (d *Dispatcher) ToOnlineDrivers(ctx context.Context, event string, payload map[string]any) {
	members, err := d.resolver.OnlineDrivers(ctx)
	if err != nil {
		d.dropped(ctx, "online-drivers", event, err)
		return
	}
	d.publish(ctx, "online-drivers", members, event, payload)
}

func (d *Dispatcher) publish(ctx context.Context, target string, members []string, event string, payload map[string]any) {
	env := Envelope{Event: event, Data: payload}

	delivered := 0
	for _, userID := range members {
		delivered += d.hub.Send(userID, env)
	}

	observability.EventsPublished.WithLabelValues(event).Inc()
	observability.EventDeliveries.WithLabelValues(event).Add(float64(delivered))

	if d.journal != nil {
		if err := d.journal.Record(ctx, target, event, payload); err != nil {
			d.log.Warn("event journal write failed", "target", target, "event", event, "err", err)
		}
	}

	d.log.Debug("event dispatched",
		"target", target, "event", event, "members", len(members), "delivered", delivered)
}

func (d *Dispatcher) dropped(ctx context.Context, target, event string, err error) {
	observability.EventsDropped.WithLabelValues(event).Inc()
	d.log.Warn("target resolution failed, event dropped", "target", target, "event", event, "err", err)
}

// Ensure Dispatcher satisfies the service-layer contract.
var _ service.Notifier = (*Dispatcher)(nil)
