package service

import "context"

// Event names pushed through the fan-out layer. Delivery is best-effort:
// every state change must remain correct even if no subscriber receives it.
const (
	EventRideRequested  = "ride-requested"
	EventReceiveBid     = "receive-bid"
	EventCounterOffer   = "counter-offer"
	EventBidAccepted    = "bid-accepted"
	EventBidRejected    = "bid-rejected"
	EventRideStarted    = "ride-started"
	EventLocationUpdate = "location-update"
	EventRideCompleted  = "ride-completed"
	EventRideCancelled  = "ride-cancelled"
)

// Notifier delivers an event to a target set resolved at publish time.
// Implementations must never fail the calling operation; errors are
// swallowed and surfaced through logs and metrics only.
type Notifier interface {
	// ToUser pushes to every open connection of one user.
	ToUser(ctx context.Context, userID, event string, payload map[string]any)

	// ToRide pushes to every watcher of a ride.
	ToRide(ctx context.Context, rideID, event string, payload map[string]any)

	// ToOnlineDrivers pushes to the broadcast set of online drivers.
	ToOnlineDrivers(ctx context.Context, event string, payload map[string]any)
}
