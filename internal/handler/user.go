package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	FCMToken             string `json:"fcm_token,omitempty"`
	DefaultPaymentMethod string `json:"default_payment_method,omitempty"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	DefaultPaymentMethod string  `json:"default_payment_method,omitempty"`
	TotalRides           int     `json:"total_rides"`
	TotalSpent           float64 `json:"total_spent"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                   u.ID,
		Name:                 u.Name,
		Phone:                u.Phone,
		DefaultPaymentMethod: u.DefaultPaymentMethod,
		TotalRides:           u.TotalRides,
		TotalSpent:           u.TotalSpent,
	}
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	// Check if user already exists
	existing, err := h.userRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "User already registered",
			"user":    toUserResponse(existing),
		})
		return
	}

	// Create new user
	now := time.Now()
	user := &domain.User{
		ID:                   uuid.New().String(),
		Name:                 req.Name,
		Phone:                req.Phone,
		FCMToken:             req.FCMToken,
		DefaultPaymentMethod: req.DefaultPaymentMethod,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}
	respondJSON(c, http.StatusOK, response)
}
