package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
	"ridehail/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
	driverRepo    repository.DriverRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, driverRepo repository.DriverRepository) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
		driverRepo:    driverRepo,
	}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	FCMToken string `json:"fcm_token,omitempty"`
}

// UpdateDriverLocationRequest is the HTTP request body for a location update.
type UpdateDriverLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SetAvailabilityRequest is the HTTP request body for toggling availability.
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Phone         string           `json:"phone"`
	Status        string           `json:"status"`
	IsAvailable   bool             `json:"is_available"`
	Location      *LocationPayload `json:"location,omitempty"`
	CurrentRideID string           `json:"current_ride_id,omitempty"`
	Rating        float64          `json:"rating"`
	RatingCount   int              `json:"rating_count"`
	Earnings      float64          `json:"earnings"`
	TotalRides    int              `json:"total_rides"`
}

// NearbyDriverResponse is one entry in a nearby-drivers listing.
type NearbyDriverResponse struct {
	DriverID  string  `json:"driver_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Status:        string(d.Status),
		IsAvailable:   d.IsAvailable,
		Location:      toLocationPayload(d.CurrentLocation),
		CurrentRideID: d.CurrentRideID,
		Rating:        d.Rating,
		RatingCount:   d.RatingCount,
		Earnings:      d.Earnings,
		TotalRides:    d.TotalRides,
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	// Check if driver already exists
	existing, err := h.driverRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Driver already registered",
			"driver":  toDriverResponse(existing),
		})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:     req.Name,
		Phone:    req.Phone,
		FCMToken: req.FCMToken,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// Activate handles POST /v1/drivers/:id/activate
func (h *DriverHandler) Activate(c *gin.Context) {
	if err := h.driverService.Activate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "active"})
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}
	respondJSON(c, http.StatusOK, response)
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateDriverLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.driverService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: c.Param("id"),
		Lat:      req.Latitude,
		Lng:      req.Longitude,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "updated"})
}

// SetAvailability handles POST /v1/drivers/:id/availability
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.SetAvailability(c.Request.Context(), c.Param("id"), req.Available); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"available": req.Available})
}

// Nearby handles GET /v1/drivers/nearby?lat=..&lng=..&radius_km=..
func (h *DriverHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}

	radiusKm := 5.0
	if raw := c.Query("radius_km"); raw != "" {
		if r, err := strconv.ParseFloat(raw, 64); err == nil && r > 0 {
			radiusKm = r
		}
	}

	locations, err := h.driverService.NearbyDrivers(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyDriverResponse, 0, len(locations))
	for _, loc := range locations {
		response = append(response, NearbyDriverResponse{
			DriverID:  loc.DriverID,
			Latitude:  loc.Lat,
			Longitude: loc.Lng,
		})
	}
	respondJSON(c, http.StatusOK, response)
}
