package domain

import "time"

// Bill represents the final billing record for a completed ride.
// Exactly one bill exists per completed ride; it is immutable once created.
type Bill struct {
	ID              string
	RideID          string
	Fare            float64 // The negotiated fare, not recomputed from distance
	Distance        float64 // Kilometers, caller-supplied
	DurationMinutes int     // Elapsed minutes since boarding, rounded up
	CreatedAt       time.Time
}
