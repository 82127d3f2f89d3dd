package domain

import "time"

// BidStatus represents the current status of a bid.
type BidStatus string

const (
	BidStatusPending   BidStatus = "PENDING"
	BidStatusCountered BidStatus = "COUNTERED"
	BidStatusAccepted  BidStatus = "ACCEPTED"
	BidStatusRejected  BidStatus = "REJECTED"
)

// RideBid represents a driver's proposed fare for a ride request.
// At most one bid exists per (ride, driver) pair; a re-submission
// overwrites the existing row.
type RideBid struct {
	ID          string
	RideID      string
	DriverID    string
	OfferedFare float64
	CounterFare float64 // Rider's counter-offer; zero when none
	Status      BidStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectiveFare is the fare a ride settles at if this bid is accepted:
// the rider's counter-offer when one exists, otherwise the driver's offer.
func (b *RideBid) EffectiveFare() float64 {
	if b.CounterFare > 0 {
		return b.CounterFare
	}
	return b.OfferedFare
}
