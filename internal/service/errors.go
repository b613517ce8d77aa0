package service

import "errors"

var (
	// ErrNoDriverAvailable is returned when no driver can be matched.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrRideNotInRequestedState is returned when trying to match a ride not in requested state.
	ErrRideNotInRequestedState = errors.New("ride not in requested state")

	// ErrMatchingInProgress is returned when another matching attempt holds the ride lock.
	ErrMatchingInProgress = errors.New("matching already in progress for ride")

	// ErrMissingPassengerLocation is returned when a ride has no pickup location to match against.
	ErrMissingPassengerLocation = errors.New("ride has no passenger location")

	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrDriverNotActive is returned when a driver has not finished onboarding.
	ErrDriverNotActive = errors.New("driver not active")

	// ErrDriverNotAssignedToRide is returned when driver is not assigned to the ride.
	ErrDriverNotAssignedToRide = errors.New("driver not assigned to this ride")

	// ErrRideAlreadyCancelled is returned when trying to cancel an already cancelled ride.
	ErrRideAlreadyCancelled = errors.New("ride already cancelled")

	// ErrRideNotCompleted is returned when settlement is attempted before a ride completes.
	ErrRideNotCompleted = errors.New("ride not completed")

	// ErrMissingFareInputs is returned when a completed ride lacks the data needed to price it.
	ErrMissingFareInputs = errors.New("ride missing fare inputs")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
