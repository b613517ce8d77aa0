package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
	"ridehail/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// LocationPayload is a lat/lng pair in request and response bodies.
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	PassengerID   string          `json:"passenger_id"`
	PassengerName string          `json:"passenger_name"`
	Pickup        LocationPayload `json:"pickup"`
	Destination   LocationPayload `json:"destination"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DriverActionRequest identifies the driver performing a lifecycle action.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// RateRideRequest is the HTTP request body for rating a completed ride.
type RateRideRequest struct {
	Rating float64 `json:"rating"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID                  string           `json:"id"`
	PassengerID         string           `json:"passenger_id"`
	PassengerName       string           `json:"passenger_name,omitempty"`
	Pickup              *LocationPayload `json:"pickup,omitempty"`
	Destination         *LocationPayload `json:"destination,omitempty"`
	Status              string           `json:"status"`
	DriverID            string           `json:"driver_id,omitempty"`
	DriverName          string           `json:"driver_name,omitempty"`
	DriverPhone         string           `json:"driver_phone,omitempty"`
	DriverLocation      *LocationPayload `json:"driver_location,omitempty"`
	EstimatedPickupTime string           `json:"estimated_pickup_time,omitempty"`
	EstimatedFare       float64          `json:"estimated_fare"`
	Fare                float64          `json:"fare,omitempty"`
	DistanceKm          float64          `json:"distance_km"`
	SurgeFactor         float64          `json:"surge_factor"`
	SurgeActive         bool             `json:"surge_active"`
	PaymentStatus       string           `json:"payment_status,omitempty"`
	TransactionID       string           `json:"transaction_id,omitempty"`
	CancelReason        string           `json:"cancel_reason,omitempty"`
	CreatedAt           string           `json:"created_at"`
}

func toLocationPayload(loc *domain.Location) *LocationPayload {
	if loc == nil {
		return nil
	}
	return &LocationPayload{Latitude: loc.Latitude, Longitude: loc.Longitude}
}

func toRideResponse(ride *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:            ride.ID,
		PassengerID:   ride.PassengerID,
		PassengerName: ride.PassengerName,
		Pickup:        toLocationPayload(ride.PassengerLocation),
		Destination:   toLocationPayload(ride.Destination),
		Status:        string(ride.Status),
		DriverID:      ride.DriverID,
		DriverName:    ride.DriverName,
		DriverPhone:   ride.DriverPhone,
		DriverLocation: toLocationPayload(ride.DriverLocation),
		EstimatedFare: ride.EstimatedFare,
		Fare:          ride.Fare,
		DistanceKm:    ride.DistanceKm,
		SurgeFactor:   ride.SurgeFactor,
		SurgeActive:   ride.SurgeFactor > 1.0,
		PaymentStatus: string(ride.PaymentStatus),
		TransactionID: ride.TransactionID,
		CancelReason:  ride.CancelReason,
		CreatedAt:     ride.CreatedAt.Format(time.RFC3339),
	}
	if !ride.EstimatedPickupTime.IsZero() {
		resp.EstimatedPickupTime = ride.EstimatedPickupTime.Format(time.RFC3339)
	}
	return resp
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		PassengerID:   req.PassengerID,
		PassengerName: req.PassengerName,
		Pickup:        domain.Location{Latitude: req.Pickup.Latitude, Longitude: req.Pickup.Longitude},
		Destination:   domain.Location{Latitude: req.Destination.Latitude, Longitude: req.Destination.Longitude},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	rides, err := h.rideService.ListRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetByPassenger handles GET /v1/users/:id/rides
func (h *RideHandler) GetByPassenger(c *gin.Context) {
	rides, err := h.rideService.ListPassengerRides(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CancelRide(c.Request.Context(), service.CancelRideRequest{
		RideID: c.Param("id"),
		Reason: req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// DriverArrived handles POST /v1/rides/:id/arrived
func (h *RideHandler) DriverArrived(c *gin.Context) {
	h.driverAction(c, h.rideService.DriverArrived)
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	h.driverAction(c, h.rideService.StartRide)
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	h.driverAction(c, h.rideService.CompleteRide)
}

func (h *RideHandler) driverAction(c *gin.Context, action func(ctx context.Context, rideID, driverID string) (*domain.Ride, error)) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := action(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RateRide handles POST /v1/rides/:id/rate
func (h *RideHandler) RateRide(c *gin.Context) {
	var req RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.rideService.RateDriver(c.Request.Context(), c.Param("id"), req.Rating); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "rated"})
}
