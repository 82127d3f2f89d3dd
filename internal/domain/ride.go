package domain

import "time"

// RideStatus represents the current status of a ride request.
type RideStatus string

const (
	RideStatusPending     RideStatus = "PENDING"
	RideStatusNegotiating RideStatus = "NEGOTIATING"
	RideStatusConfirmed   RideStatus = "CONFIRMED"
	RideStatusOngoing     RideStatus = "ONGOING"
	RideStatusCompleted   RideStatus = "COMPLETED"
	RideStatusCancelled   RideStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are possible from s.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// Open reports whether the ride is still accepting bids.
func (s RideStatus) Open() bool {
	return s == RideStatusPending || s == RideStatusNegotiating
}

// RideRequest represents a rider's posted trip seeking a driver match.
type RideRequest struct {
	ID             string
	RiderID        string
	TargetDriverID string // Set for direct bookings, empty for open market

	PickupAddress string
	PickupLat     float64
	PickupLng     float64
	DropAddress   string
	DropLat       float64
	DropLng       float64

	Status           RideStatus
	AssignedDriverID string
	FinalFare        float64

	OTP         string
	OTPVerified bool

	VehicleLat float64
	VehicleLng float64
	Distance   float64
	CancelledBy Role // Which role cancelled, when Status is CANCELLED

	CreatedAt time.Time
	UpdatedAt time.Time
	BoardedAt time.Time // Set by StartRide; billing duration baseline
}
