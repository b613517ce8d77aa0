package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount         int32
	UpdateStatusCallCount   int32
	AcquireForRideCallCount int32
	ReleaseCallCount        int32
	AddRatingCallCount      int32

	// Error injection
	CreateError         error
	UpdateStatusError   error
	GetAvailableError   error
	AcquireForRideError error

	// When set, AcquireForRide fails for these driver IDs with ErrNotFound,
	// simulating a lost availability race.
	AcquireRaceLosers map[string]bool
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) GetAvailable(ctx context.Context) ([]*domain.Driver, error) {
	if m.GetAvailableError != nil {
		return nil, m.GetAvailableError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if d.Status == domain.DriverStatusActive && d.IsAvailable {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.CurrentLocation = &loc
	driver.UpdatedAt = at
	return nil
}

func (m *MockDriverRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.IsAvailable = available
	return nil
}

func (m *MockDriverRepository) AcquireForRide(ctx context.Context, driverID, rideID string) error {
	atomic.AddInt32(&m.AcquireForRideCallCount, 1)
	if m.AcquireForRideError != nil {
		return m.AcquireForRideError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcquireRaceLosers[driverID] {
		return repository.ErrNotFound
	}
	driver, ok := m.drivers[driverID]
	if !ok || !driver.IsAvailable {
		return repository.ErrNotFound
	}
	driver.IsAvailable = false
	driver.CurrentRideID = rideID
	return nil
}

func (m *MockDriverRepository) Release(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	driver.IsAvailable = true
	driver.CurrentRideID = ""
	return nil
}

func (m *MockDriverRepository) AddRating(ctx context.Context, driverID string, rating float64) error {
	atomic.AddInt32(&m.AddRatingCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Rating = (driver.Rating*float64(driver.RatingCount) + rating) / float64(driver.RatingCount+1)
	driver.RatingCount++
	return nil
}

func (m *MockDriverRepository) CreditEarnings(ctx context.Context, driverID string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Earnings += amount
	driver.TotalRides++
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount           int32
	UpdateCallCount           int32
	UpdateStatusFromCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRideRepository) GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.PassengerID == passengerID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateStatusFromCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != from {
		return repository.ErrNotFound
	}
	ride.Status = to
	ride.UpdatedAt = time.Now()
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters
	RecordSpendCallCount int32

	// Error injection
	GetByIDError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) RecordSpend(ctx context.Context, userID string, amount float64) error {
	atomic.AddInt32(&m.RecordSpendCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.TotalRides++
	user.TotalSpent += amount
	return nil
}

// GetUser returns user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Error injection
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *n
	m.notifications = append(m.notifications, &copy)
	return nil
}

func (m *MockNotificationRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			copy := *n
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// ForUser returns stored notifications for a user (for test assertions).
func (m *MockNotificationRepository) ForUser(userID string) []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK LOCATION UPDATE REPOSITORY
// ──────────────────────────────────────────────

// MockLocationUpdateRepository is a mock implementation of LocationUpdateRepository.
type MockLocationUpdateRepository struct {
	mu      sync.RWMutex
	updates []*domain.LocationUpdate
}

// NewMockLocationUpdateRepository creates a new mock heartbeat repository.
func NewMockLocationUpdateRepository() *MockLocationUpdateRepository {
	return &MockLocationUpdateRepository{}
}

func (m *MockLocationUpdateRepository) Create(ctx context.Context, u *domain.LocationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *u
	m.updates = append(m.updates, &copy)
	return nil
}

// CountUpdates returns the number of stored heartbeats.
func (m *MockLocationUpdateRepository) CountUpdates() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.updates)
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION REPOSITORY
// ──────────────────────────────────────────────

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction // keyed by ride ID

	// Counters
	CreateCallCount int32
}

// NewMockTransactionRepository creates a new mock transaction repository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

// AddTransaction stores a transaction (for test setup).
func (m *MockTransactionRepository) AddTransaction(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.RideID] = txn
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *txn
	m.transactions[txn.RideID] = &copy
	return nil
}

func (m *MockTransactionRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.transactions[rideID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *txn
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK RETENTION REPOSITORY
// ──────────────────────────────────────────────

// MockRetentionRepository is a mock implementation of RetentionRepository.
type MockRetentionRepository struct {
	mu sync.Mutex

	// Remaining rows the mock pretends to hold; ArchiveRidesBefore drains
	// this in batches into ArchivedRides.
	ArchivableRides int
	ArchivedRides   int

	HeartbeatRows    int
	NotificationRows int

	Stats        *domain.MonthlyReport
	SavedReports []*domain.MonthlyReport

	// Counters
	ArchiveCallCount int32

	// Error injection
	ArchiveError error
	StatsError   error
}

// NewMockRetentionRepository creates a new mock retention repository.
func NewMockRetentionRepository() *MockRetentionRepository {
	return &MockRetentionRepository{}
}

func (m *MockRetentionRepository) ArchiveRidesBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	atomic.AddInt32(&m.ArchiveCallCount, 1)
	if m.ArchiveError != nil {
		return 0, m.ArchiveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.ArchivableRides
	if n > limit {
		n = limit
	}
	m.ArchivableRides -= n
	m.ArchivedRides += n
	return n, nil
}

func (m *MockRetentionRepository) DeleteLocationUpdatesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.HeartbeatRows
	m.HeartbeatRows = 0
	return n, nil
}

func (m *MockRetentionRepository) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.NotificationRows
	m.NotificationRows = 0
	return n, nil
}

func (m *MockRetentionRepository) MonthlyStats(ctx context.Context, month time.Time) (*domain.MonthlyReport, error) {
	if m.StatsError != nil {
		return nil, m.StatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Stats != nil {
		copy := *m.Stats
		return &copy, nil
	}
	return &domain.MonthlyReport{Year: month.Year(), Month: int(month.Month())}, nil
}

func (m *MockRetentionRepository) SaveMonthlyReport(ctx context.Context, report *domain.MonthlyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *report
	m.SavedReports = append(m.SavedReports, &copy)
	return nil
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner runs the transactional function straight against the backing
// mocks. The mock repositories never half-apply a failed operation, so
// rollback has nothing to undo.
type MockTxRunner struct {
	RideRepo   *MockRideRepository
	DriverRepo *MockDriverRepository

	// Counters
	InTxCallCount int32

	// Error injection
	BeginError error
}

// NewMockTxRunner creates a new mock transaction runner.
func NewMockTxRunner(rideRepo *MockRideRepository, driverRepo *MockDriverRepository) *MockTxRunner {
	return &MockTxRunner{RideRepo: rideRepo, DriverRepo: driverRepo}
}

func (m *MockTxRunner) InTx(ctx context.Context, fn func(rides repository.RideRepository, drivers repository.DriverRepository) error) error {
	atomic.AddInt32(&m.InTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.RideRepo, m.DriverRepo)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStore.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.DriverLocation

	// Counters
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
	CountNearbyError       error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.DriverLocation, 0),
	}
}

// SetLocations sets all locations (for test setup).
func (m *MockLocationStore) SetLocations(locations []redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = locations
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Update existing or add new.
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all locations (mock doesn't do real geo filtering).
	result := make([]redis.DriverLocation, len(m.locations))
	copy(result, m.locations)
	return result, nil
}

func (m *MockLocationStore) CountNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) (int, error) {
	if m.CountNearbyError != nil {
		return 0, m.CountNearbyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.locations), nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount     int32
	ReleaseCallCount     int32
	AcquireRideCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure     bool
	ForceRideAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) acquire(key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	return m.acquire("lock:driver:"+driverID, ttl), nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:driver:"+driverID)
	return nil
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireRideCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceRideAcquireFailure {
		return false, nil
	}
	return m.acquire("lock:ride:"+rideID, ttl), nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:ride:"+rideID)
	return nil
}

// IsLocked checks if a driver is locked (for test assertions).
func (m *MockLockStore) IsLocked(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:driver:"+driverID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK PSP (Payment Service Provider)
// ──────────────────────────────────────────────

// FakePSP is a controllable payment provider.
type FakePSP struct {
	mu sync.Mutex

	// Error injection
	ChargeError error

	// Counters
	ChargeCallCount int32

	// Last charge details for assertions
	LastAmountMinor   int64
	LastCurrency      string
	LastPaymentMethod string
}

// NewFakePSP creates a new fake PSP.
func NewFakePSP() *FakePSP {
	return &FakePSP{}
}

func (m *FakePSP) Charge(ctx context.Context, amountMinor int64, currency, paymentMethod string) (string, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastAmountMinor = amountMinor
	m.LastCurrency = currency
	m.LastPaymentMethod = paymentMethod
	if m.ChargeError != nil {
		return "", m.ChargeError
	}
	return fmt.Sprintf("fake_%d", atomic.LoadInt32(&m.ChargeCallCount)), nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER / PUBLISHER
// ──────────────────────────────────────────────

// MockNotifier records ride status change notifications.
type MockNotifier struct {
	mu    sync.Mutex
	rides []*domain.Ride
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) RideStatusChanged(ctx context.Context, ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides = append(m.rides, &copy)
}

// Notifications returns recorded notifications.
func (m *MockNotifier) Notifications() []*domain.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Ride(nil), m.rides...)
}

// MockPublisher records published ride request events.
type MockPublisher struct {
	mu      sync.Mutex
	RideIDs []string

	// Error injection
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishRideRequested(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return m.PublishError
	}
	m.RideIDs = append(m.RideIDs, rideID)
	return nil
}

// MockPusher records push notifications.
type MockPusher struct {
	mu     sync.Mutex
	Pushes []PushedMessage

	// Error injection
	PushError error
}

// PushedMessage is one recorded push.
type PushedMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// NewMockPusher creates a new mock pusher.
func NewMockPusher() *MockPusher {
	return &MockPusher{}
}

func (m *MockPusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PushError != nil {
		return m.PushError
	}
	m.Pushes = append(m.Pushes, PushedMessage{Token: token, Title: title, Body: body, Data: data})
	return nil
}

// Pushed returns a snapshot of the recorded pushes.
func (m *MockPusher) Pushed() []PushedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PushedMessage, len(m.Pushes))
	copy(out, m.Pushes)
	return out
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
	ErrMockDeclined     = errors.New("mock: card declined")
)
