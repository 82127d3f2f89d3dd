package domain

import "time"

// Role represents the role of a user in the system.
type Role string

const (
	RoleRider  Role = "RIDER"
	RoleDriver Role = "DRIVER"
)

// Vehicle describes a driver's vehicle.
type Vehicle struct {
	Model string
	Plate string
	Color string
}

// User represents a rider or a driver in the system.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Role      Role
	Vehicle   Vehicle // Drivers only
	Online    bool    // Drivers only; owned by the presence registry
	CreatedAt time.Time
}

// IsDriver reports whether the user is registered as a driver.
func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}
