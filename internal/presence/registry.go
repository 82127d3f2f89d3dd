// Package presence tracks which drivers are reachable for dispatch and
// which users watch which rides. Membership lives in store-backed sets
// keyed by group; the driver's online flag is additionally persisted on the
// user row so it survives a registry restart.
package presence

import (
	"context"
	"fmt"

	"hail/internal/observability"
	"hail/internal/repository"
)

const (
	onlineDriversKey = "presence:online_drivers"
	rideWatchPrefix  = "presence:ride:"
	userGroupsPrefix = "presence:user_groups:"
)

// Resolver resolves a target selector to the current member set.
type Resolver interface {
	// RideWatchers returns the users watching a ride.
	RideWatchers(ctx context.Context, rideID string) ([]string, error)

	// OnlineDrivers returns the broadcast set of online drivers.
	OnlineDrivers(ctx context.Context) ([]string, error)
}

// Registry is the presence registry. All operations are safe for
// concurrent use; the store serializes the set mutations.
type Registry struct {
	groups   GroupStore
	userRepo repository.UserRepository
}

// NewRegistry creates a new Registry.
func NewRegistry(groups GroupStore, userRepo repository.UserRepository) *Registry {
	return &Registry{groups: groups, userRepo: userRepo}
}

// GoOnline marks a driver reachable for dispatch. The broadcast set is
// authoritative for delivery: a failure between the two writes can leave a
// stale persisted flag, but never a dispatchable driver, and the flag
// reconciles on the next online/offline transition.
func (r *Registry) GoOnline(ctx context.Context, driverID string) error {
	if err := r.userRepo.SetOnline(ctx, driverID, true); err != nil {
		return err
	}
	if err := r.groups.AddMember(ctx, onlineDriversKey, driverID); err != nil {
		return err
	}
	r.refreshGauge(ctx)
	return nil
}

// GoOffline removes a driver from dispatch. Group membership is dropped
// before the flag so a failure never strands a dispatchable driver with a
// false flag.
func (r *Registry) GoOffline(ctx context.Context, driverID string) error {
	if err := r.groups.RemoveMember(ctx, onlineDriversKey, driverID); err != nil {
		return err
	}
	r.refreshGauge(ctx)
	return r.userRepo.SetOnline(ctx, driverID, false)
}

// Disconnect handles a transport-level connection loss. It behaves exactly
// like GoOffline and additionally clears every ride-watch membership, so
// stale "online" drivers never accumulate.
func (r *Registry) Disconnect(ctx context.Context, userID string) error {
	index := userGroupsPrefix + userID
	groups, err := r.groups.Members(ctx, index)
	if err != nil {
		return err
	}

	if err := r.groups.Drain(ctx, index, userID, append(groups, onlineDriversKey)); err != nil {
		return err
	}

	r.refreshGauge(ctx)

	// Best effort: the user may be a rider, whose row has no online flag
	// to clear.
	_ = r.userRepo.SetOnline(ctx, userID, false)
	return nil
}

// WatchRide subscribes a user to live updates for one ride. Watch
// membership is independent of the online flag.
func (r *Registry) WatchRide(ctx context.Context, userID, rideID string) error {
	return r.groups.Link(ctx, rideWatchKey(rideID), userGroupsPrefix+userID, userID)
}

// UnwatchRide removes a user from a ride's watch group.
func (r *Registry) UnwatchRide(ctx context.Context, userID, rideID string) error {
	return r.groups.Unlink(ctx, rideWatchKey(rideID), userGroupsPrefix+userID, userID)
}

// IsOnline reports whether the driver is in the broadcast set.
func (r *Registry) IsOnline(ctx context.Context, driverID string) (bool, error) {
	return r.groups.IsMember(ctx, onlineDriversKey, driverID)
}

// RideWatchers returns the users watching a ride.
func (r *Registry) RideWatchers(ctx context.Context, rideID string) ([]string, error) {
	return r.groups.Members(ctx, rideWatchKey(rideID))
}

// OnlineDrivers returns the broadcast set of online drivers.
func (r *Registry) OnlineDrivers(ctx context.Context) ([]string, error) {
	return r.groups.Members(ctx, onlineDriversKey)
}

// refreshGauge republishes the broadcast-set cardinality. Best effort;
// the gauge self-corrects on the next membership change.
func (r *Registry) refreshGauge(ctx context.Context) {
	if n, err := r.groups.Count(ctx, onlineDriversKey); err == nil {
		observability.DriversOnline.Set(float64(n))
	}
}

func rideWatchKey(rideID string) string {
	return fmt.Sprintf("%s%s", rideWatchPrefix, rideID)
}

// Ensure Registry satisfies the dispatcher's resolver contract.
var _ Resolver = (*Registry)(nil)
