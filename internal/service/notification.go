package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/observability"
	"ridehail/internal/repository"
)

// RideNotifier is implemented by anything that wants to hear about ride
// status changes.
type RideNotifier interface {
	RideStatusChanged(ctx context.Context, ride *domain.Ride)
}

// Pusher sends a push notification to a single device token.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

// RealtimePublisher pushes a payload to a connected client.
type RealtimePublisher interface {
	Publish(userID string, payload any) error
}

// NotificationService fans ride status changes out to both parties: a stored
// in-app notification, a push message when a device token is known, and a
// realtime frame when the client is connected.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	driverRepo       repository.DriverRepository
	pusher           Pusher
	realtime         RealtimePublisher
}

// NewNotificationService creates a new NotificationService. pusher and
// realtime may be nil; those channels are then skipped.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	driverRepo repository.DriverRepository,
	pusher Pusher,
	realtime RealtimePublisher,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		driverRepo:       driverRepo,
		pusher:           pusher,
		realtime:         realtime,
	}
}

// RideStatusChanged notifies the passenger, and the driver when one is
// attached to the ride. Delivery failures are logged, never propagated: a
// ride must not fail because a push did.
func (s *NotificationService) RideStatusChanged(ctx context.Context, ride *domain.Ride) {
	if ride.PassengerID == "" {
		log.Printf("ride %s has no passenger, skipping notifications", ride.ID)
		return
	}

	title, body := passengerMessage(ride)
	s.deliver(ctx, ride, ride.PassengerID, title, body, s.passengerToken(ctx, ride.PassengerID))

	if ride.DriverID != "" {
		title, body := driverMessage(ride)
		s.deliver(ctx, ride, ride.DriverID, title, body, s.driverToken(ctx, ride.DriverID))
	}
}

func (s *NotificationService) deliver(ctx context.Context, ride *domain.Ride, userID, title, body, token string) {
	n := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   body,
		RideID:    ride.ID,
		Status:    ride.Status,
		CreatedAt: time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("store notification for %s failed: %v", userID, err)
	}

	if s.pusher != nil && token != "" {
		data := map[string]string{
			"rideId": ride.ID,
			"status": string(ride.Status),
			"type":   "ride_update",
		}
		if err := s.pusher.Push(ctx, token, title, body, data); err != nil {
			log.Printf("push to %s failed: %v", userID, err)
		} else {
			observability.NotificationsSentTotal.WithLabelValues("fcm").Inc()
		}
	}

	if s.realtime != nil {
		payload := map[string]any{
			"type":    "ride_update",
			"rideId":  ride.ID,
			"status":  ride.Status,
			"title":   title,
			"message": body,
		}
		if err := s.realtime.Publish(userID, payload); err == nil {
			observability.NotificationsSentTotal.WithLabelValues("ws").Inc()
		}
	}
}

func (s *NotificationService) passengerToken(ctx context.Context, passengerID string) string {
	user, err := s.userRepo.GetByID(ctx, passengerID)
	if err != nil {
		log.Printf("lookup passenger %s failed: %v", passengerID, err)
		return ""
	}
	return user.FCMToken
}

func (s *NotificationService) driverToken(ctx context.Context, driverID string) string {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		log.Printf("lookup driver %s failed: %v", driverID, err)
		return ""
	}
	return driver.FCMToken
}

func passengerMessage(ride *domain.Ride) (title, body string) {
	switch ride.Status {
	case domain.RideStatusDriverAssigned:
		return "Driver Assigned", fmt.Sprintf("%s is on the way. ETA: %s", ride.DriverName, formatETA(ride.EstimatedPickupTime))
	case domain.RideStatusDriverArrived:
		return "Driver Arrived", fmt.Sprintf("%s has arrived at your pickup location", ride.DriverName)
	case domain.RideStatusInProgress:
		return "Ride Started", "Your ride has started"
	case domain.RideStatusCompleted:
		return "Ride Completed", fmt.Sprintf("Your ride has been completed. Total fare: ₹%.0f", ride.Fare)
	case domain.RideStatusCancelled:
		return "Ride Cancelled", "Your ride has been cancelled"
	case domain.RideStatusNoDrivers:
		return "No Drivers Available", "No drivers are currently available. Please try again later"
	default:
		return "Ride Status Update", fmt.Sprintf("Your ride status has changed to %s", ride.Status)
	}
}

func driverMessage(ride *domain.Ride) (title, body string) {
	switch ride.Status {
	case domain.RideStatusDriverAssigned:
		passenger := ride.PassengerName
		if passenger == "" {
			passenger = "a passenger"
		}
		return "New Ride Assigned", fmt.Sprintf("New ride request from %s", passenger)
	case domain.RideStatusCancelled:
		return "Ride Cancelled", "The ride has been cancelled"
	case domain.RideStatusCompleted:
		return "Ride Completed", fmt.Sprintf("Ride completed. Earnings: ₹%.0f", ride.Fare)
	default:
		return "Ride Status Update", fmt.Sprintf("Ride status has changed to %s", ride.Status)
	}
}

func formatETA(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("3:04 PM")
}
