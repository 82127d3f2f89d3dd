package service

import "errors"

var (
	// ErrForbidden is returned when the caller is authenticated but not
	// entitled to act on the resource (wrong role, not the ride's rider,
	// not the assigned driver).
	ErrForbidden = errors.New("caller not entitled to act on this resource")

	// ErrInvalidFare is returned when a bid or counter-offer amount is not positive.
	ErrInvalidFare = errors.New("fare must be greater than zero")

	// ErrInvalidTargetDriver is returned when a direct booking targets a user
	// that does not exist or is not a driver.
	ErrInvalidTargetDriver = errors.New("target driver does not resolve to a driver")

	// ErrInvalidPickupLocation is returned when pickup coordinates are out of range.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropLocation is returned when destination coordinates are out of range.
	ErrInvalidDropLocation = errors.New("invalid destination location")

	// ErrRideNotOpen is returned when a bid arrives on a ride that is no
	// longer in PENDING or NEGOTIATING.
	ErrRideNotOpen = errors.New("ride is not accepting bids")

	// ErrAlreadyConfirmed is returned when accepting a bid on a ride that
	// has already left the negotiation phase.
	ErrAlreadyConfirmed = errors.New("ride already confirmed")

	// ErrInvalidState is returned when the operation is not legal for the
	// ride's current status.
	ErrInvalidState = errors.New("operation not allowed in current ride state")

	// ErrInvalidOtp is returned when the boarding code does not match.
	ErrInvalidOtp = errors.New("invalid otp")

	// ErrAlreadyTerminal is returned when acting on a completed or
	// cancelled ride.
	ErrAlreadyTerminal = errors.New("ride already completed or cancelled")
)
