package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hail/internal/auth"
	"hail/internal/domain"
	"hail/internal/service"
)

// RideHandler handles HTTP requests for ride requests.
type RideHandler struct {
	rideService *service.RideService
	billing     *service.BillingService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, billing *service.BillingService) *RideHandler {
	return &RideHandler{rideService: rideService, billing: billing}
}

// CreateRideRequest is the HTTP request body for posting a ride request.
type CreateRideRequest struct {
	PickupAddress  string  `json:"pickup_address"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DropAddress    string  `json:"drop_address"`
	DropLat        float64 `json:"drop_lat"`
	DropLng        float64 `json:"drop_lng"`
	TargetDriverID string  `json:"target_driver_id,omitempty"`
}

// StartRideRequest is the HTTP request body for the boarding handshake.
type StartRideRequest struct {
	OTP string `json:"otp"`
}

// UpdateLocationRequest is the HTTP request body for a live position update.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CompleteRideRequest is the HTTP request body for completing a ride.
type CompleteRideRequest struct {
	Distance float64 `json:"distance"`
}

// RideResponse is the HTTP representation of a ride request.
type RideResponse struct {
	ID               string  `json:"id"`
	RiderID          string  `json:"rider_id"`
	TargetDriverID   string  `json:"target_driver_id,omitempty"`
	PickupAddress    string  `json:"pickup_address"`
	PickupLat        float64 `json:"pickup_lat"`
	PickupLng        float64 `json:"pickup_lng"`
	DropAddress      string  `json:"drop_address"`
	DropLat          float64 `json:"drop_lat"`
	DropLng          float64 `json:"drop_lng"`
	Status           string  `json:"status"`
	AssignedDriverID string  `json:"assigned_driver_id,omitempty"`
	FinalFare        float64 `json:"final_fare,omitempty"`
	OTP              string  `json:"otp,omitempty"` // Rider only
	OTPVerified      bool    `json:"otp_verified"`
	VehicleLat       float64 `json:"vehicle_lat,omitempty"`
	VehicleLng       float64 `json:"vehicle_lng,omitempty"`
	Distance         float64 `json:"distance,omitempty"`
	CancelledBy      string  `json:"cancelled_by,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// BillResponse is the HTTP representation of a bill.
type BillResponse struct {
	ID              string  `json:"id"`
	RideID          string  `json:"ride_id"`
	Fare            float64 `json:"fare"`
	Distance        float64 `json:"distance"`
	DurationMinutes int     `json:"duration_minutes"`
}

// toRideResponse converts a ride for the given viewer. The boarding code is
// visible only to the ride's rider, who hands it to the driver at pickup.
func toRideResponse(ride *domain.RideRequest, viewerID string) RideResponse {
	resp := RideResponse{
		ID:               ride.ID,
		RiderID:          ride.RiderID,
		TargetDriverID:   ride.TargetDriverID,
		PickupAddress:    ride.PickupAddress,
		PickupLat:        ride.PickupLat,
		PickupLng:        ride.PickupLng,
		DropAddress:      ride.DropAddress,
		DropLat:          ride.DropLat,
		DropLng:          ride.DropLng,
		Status:           string(ride.Status),
		AssignedDriverID: ride.AssignedDriverID,
		FinalFare:        ride.FinalFare,
		OTPVerified:      ride.OTPVerified,
		VehicleLat:       ride.VehicleLat,
		VehicleLng:       ride.VehicleLng,
		Distance:         ride.Distance,
		CancelledBy:      string(ride.CancelledBy),
		CreatedAt:        ride.CreatedAt.Format(time.RFC3339),
	}
	if viewerID == ride.RiderID {
		resp.OTP = ride.OTP
	}
	return resp
}

func toBillResponse(bill *domain.Bill) BillResponse {
	return BillResponse{
		ID:              bill.ID,
		RideID:          bill.RideID,
		Fare:            bill.Fare,
		Distance:        bill.Distance,
		DurationMinutes: bill.DurationMinutes,
	}
}

// Create handles POST /v1/rides
func (h *RideHandler) Create(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CreateRequest(c.Request.Context(), service.CreateRequestInput{
		RiderID:        id.UserID,
		PickupAddress:  req.PickupAddress,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DropAddress:    req.DropAddress,
		DropLat:        req.DropLat,
		DropLng:        req.DropLng,
		TargetDriverID: req.TargetDriverID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride, id.UserID))
}

// Get handles GET /v1/rides/:id
func (h *RideHandler) Get(c *gin.Context) {
	id, _ := auth.FromContext(c)

	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride, id.UserID))
}

// ListOpen handles GET /v1/rides
func (h *RideHandler) ListOpen(c *gin.Context) {
	id, _ := auth.FromContext(c)

	rides, err := h.rideService.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		resp = append(resp, toRideResponse(r, id.UserID))
	}
	respondJSON(c, http.StatusOK, resp)
}

// ListMine handles GET /v1/rides/mine
func (h *RideHandler) ListMine(c *gin.Context) {
	id, _ := auth.FromContext(c)

	rides, err := h.rideService.ListForUser(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		resp = append(resp, toRideResponse(r, id.UserID))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Start handles POST /v1/rides/:id/start
func (h *RideHandler) Start(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req StartRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.StartRide(c.Request.Context(), service.StartRideInput{
		DriverID: id.UserID,
		RideID:   c.Param("id"),
		OTP:      req.OTP,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride, id.UserID))
}

// UpdateLocation handles PATCH /v1/rides/:id/location
func (h *RideHandler) UpdateLocation(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.rideService.UpdateLocation(c.Request.Context(), service.UpdateLocationInput{
		DriverID: id.UserID,
		RideID:   c.Param("id"),
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"lat": req.Lat, "lng": req.Lng})
}

// Complete handles POST /v1/rides/:id/complete
func (h *RideHandler) Complete(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req CompleteRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, bill, err := h.rideService.CompleteRide(c.Request.Context(), service.CompleteRideInput{
		DriverID: id.UserID,
		RideID:   c.Param("id"),
		Distance: req.Distance,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"ride": toRideResponse(ride, id.UserID),
		"bill": toBillResponse(bill),
	})
}

// Cancel handles POST /v1/rides/:id/cancel
func (h *RideHandler) Cancel(c *gin.Context) {
	id, _ := auth.FromContext(c)

	ride, err := h.rideService.CancelRide(c.Request.Context(), service.CancelRideInput{
		CallerID: id.UserID,
		RideID:   c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride, id.UserID))
}

// GetBill handles GET /v1/rides/:id/bill
func (h *RideHandler) GetBill(c *gin.Context) {
	id, _ := auth.FromContext(c)

	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if id.UserID != ride.RiderID && id.UserID != ride.AssignedDriverID {
		respondError(c, service.ErrForbidden)
		return
	}

	bill, err := h.billing.GetByRide(c.Request.Context(), ride.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBillResponse(bill))
}
