package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hail/internal/auth"
	"hail/internal/domain"
	"hail/internal/service"
)

// BidHandler handles HTTP requests for bids.
type BidHandler struct {
	bidService  *service.BidService
	rideService *service.RideService
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(bidService *service.BidService, rideService *service.RideService) *BidHandler {
	return &BidHandler{bidService: bidService, rideService: rideService}
}

// SubmitBidRequest is the HTTP request body for submitting a bid.
type SubmitBidRequest struct {
	OfferedFare float64 `json:"offered_fare"`
}

// CounterBidRequest is the HTTP request body for counter-offering a bid.
type CounterBidRequest struct {
	CounterFare float64 `json:"counter_fare"`
}

// BidResponse is the HTTP representation of a bid.
type BidResponse struct {
	ID          string  `json:"id"`
	RideID      string  `json:"ride_id"`
	DriverID    string  `json:"driver_id"`
	OfferedFare float64 `json:"offered_fare"`
	CounterFare float64 `json:"counter_fare,omitempty"`
	Status      string  `json:"status"`
	UpdatedAt   string  `json:"updated_at"`
}

func toBidResponse(bid *domain.RideBid) BidResponse {
	return BidResponse{
		ID:          bid.ID,
		RideID:      bid.RideID,
		DriverID:    bid.DriverID,
		OfferedFare: bid.OfferedFare,
		CounterFare: bid.CounterFare,
		Status:      string(bid.Status),
		UpdatedAt:   bid.UpdatedAt.Format(time.RFC3339),
	}
}

// Submit handles POST /v1/rides/:id/bids
func (h *BidHandler) Submit(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	bid, err := h.bidService.SubmitBid(c.Request.Context(), service.SubmitBidRequest{
		DriverID:    id.UserID,
		RideID:      c.Param("id"),
		OfferedFare: req.OfferedFare,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBidResponse(bid))
}

// List handles GET /v1/rides/:id/bids
func (h *BidHandler) List(c *gin.Context) {
	id, _ := auth.FromContext(c)

	bids, err := h.bidService.ListBids(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, toBidResponse(b))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Accept handles POST /v1/bids/:id/accept
func (h *BidHandler) Accept(c *gin.Context) {
	id, _ := auth.FromContext(c)

	ride, err := h.rideService.AcceptBid(c.Request.Context(), service.AcceptBidInput{
		RiderID: id.UserID,
		BidID:   c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride, id.UserID))
}

// Reject handles POST /v1/bids/:id/reject
func (h *BidHandler) Reject(c *gin.Context) {
	id, _ := auth.FromContext(c)

	bid, err := h.rideService.RejectBid(c.Request.Context(), service.RejectBidInput{
		RiderID: id.UserID,
		BidID:   c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBidResponse(bid))
}

// Counter handles POST /v1/bids/:id/counter
func (h *BidHandler) Counter(c *gin.Context) {
	id, _ := auth.FromContext(c)

	var req CounterBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	bid, err := h.bidService.CounterBid(c.Request.Context(), service.CounterBidRequest{
		RiderID:     id.UserID,
		BidID:       c.Param("id"),
		CounterFare: req.CounterFare,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBidResponse(bid))
}
