package tests

import (
	"context"
	"sync"
	"sync/atomic"

	"hail/internal/domain"
	"hail/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideTxRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.RideRequest

	// Counters for verification
	CreateCallCount          int32
	UpdateCallCount          int32
	VehicleLocationCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.RideRequest),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.RideRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.RideRequest) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
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

func (m *MockRideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RideRequest, error) {
	// Locking is provided by the MockTxManager serializing transactions.
	return m.GetByID(ctx, id)
}

func (m *MockRideRepository) GetOpen(ctx context.Context) ([]*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideRequest, 0)
	for _, r := range m.rides {
		if r.Status.Open() {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) GetByUser(ctx context.Context, userID string) ([]*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideRequest, 0)
	for _, r := range m.rides {
		if r.RiderID == userID || r.AssignedDriverID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.RideRequest) error {
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

func (m *MockRideRepository) UpdateVehicleLocation(ctx context.Context, id string, lat, lng float64) error {
	atomic.AddInt32(&m.VehicleLocationCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.VehicleLat = lat
	ride.VehicleLng = lng
	return nil
}

// ──────────────────────────────────────────────
// MOCK BID REPOSITORY
// ──────────────────────────────────────────────

// MockBidRepository is a mock implementation of BidRepository.
type MockBidRepository struct {
	mu   sync.RWMutex
	bids map[string]*domain.RideBid

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockBidRepository creates a new mock bid repository.
func NewMockBidRepository() *MockBidRepository {
	return &MockBidRepository{
		bids: make(map[string]*domain.RideBid),
	}
}

// AddBid adds a bid to the mock repository.
func (m *MockBidRepository) AddBid(bid *domain.RideBid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bids[bid.ID] = bid
}

// GetBid returns the stored bid for test assertions.
func (m *MockBidRepository) GetBid(id string) *domain.RideBid {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bids[id]
}

// CountBids returns the number of stored bids.
func (m *MockBidRepository) CountBids() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bids)
}

func (m *MockBidRepository) Create(ctx context.Context, bid *domain.RideBid) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *bid
	m.bids[bid.ID] = &copy
	return nil
}

func (m *MockBidRepository) GetByID(ctx context.Context, id string) (*domain.RideBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bid, ok := m.bids[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *bid
	return &copy, nil
}

func (m *MockBidRepository) GetByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.RideBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bids {
		if b.RideID == rideID && b.DriverID == driverID {
			copy := *b
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockBidRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.RideBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideBid, 0)
	for _, b := range m.bids {
		if b.RideID == rideID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBidRepository) Update(ctx context.Context, bid *domain.RideBid) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bids[bid.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *bid
	m.bids[bid.ID] = &copy
	return nil
}

func (m *MockBidRepository) RejectOthers(ctx context.Context, rideID, keepBidID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rejected := make([]string, 0)
	for _, b := range m.bids {
		if b.RideID == rideID && b.ID != keepBidID && b.Status != domain.BidStatusRejected {
			b.Status = domain.BidStatusRejected
			rejected = append(rejected, b.DriverID)
		}
	}
	return rejected, nil
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
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
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
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

func (m *MockUserRepository) SetOnline(ctx context.Context, id string, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Online = online
	return nil
}

// ──────────────────────────────────────────────
// MOCK BILL REPOSITORY
// ──────────────────────────────────────────────

// MockBillRepository is a mock implementation of BillRepository.
type MockBillRepository struct {
	mu     sync.RWMutex
	byRide map[string]*domain.Bill

	// Error injection
	CreateError error
}

// NewMockBillRepository creates a new mock bill repository.
func NewMockBillRepository() *MockBillRepository {
	return &MockBillRepository{
		byRide: make(map[string]*domain.Bill),
	}
}

// CountBills returns the number of stored bills.
func (m *MockBillRepository) CountBills() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byRide)
}

func (m *MockBillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byRide[bill.RideID]; ok {
		return repository.ErrConflict
	}
	copy := *bill
	m.byRide[bill.RideID] = &copy
	return nil
}

func (m *MockBillRepository) GetByRide(ctx context.Context, rideID string) (*domain.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bill, ok := m.byRide[rideID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *bill
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION MANAGER
// ──────────────────────────────────────────────

// mockTxRepos hands the shared mocks out as transaction-scoped repos.
type mockTxRepos struct {
	rides *MockRideRepository
	bids  *MockBidRepository
}

func (r *mockTxRepos) Rides() repository.RideTxRepository { return r.rides }
func (r *mockTxRepos) Bids() repository.BidRepository     { return r.bids }

// MockTxManager serializes transactions with a mutex, mimicking the row
// lock that GetByIDForUpdate takes in the real store. Writes are applied
// immediately; tests that exercise rollback inject errors before the
// first write instead.
type MockTxManager struct {
	mu    sync.Mutex
	repos *mockTxRepos

	InTxCallCount int32
}

// NewMockTxManager creates a transaction manager over the given mocks.
func NewMockTxManager(rides *MockRideRepository, bids *MockBidRepository) *MockTxManager {
	return &MockTxManager{
		repos: &mockTxRepos{rides: rides, bids: bids},
	}
}

func (m *MockTxManager) InTx(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	atomic.AddInt32(&m.InTxCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.repos)
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// SentEvent is one recorded fan-out delivery.
type SentEvent struct {
	Kind    string // "user", "ride" or "drivers"
	Target  string
	Event   string
	Payload map[string]any
}

// MockNotifier records fan-out calls for assertions.
type MockNotifier struct {
	mu     sync.Mutex
	events []SentEvent
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) ToUser(ctx context.Context, userID, event string, payload map[string]any) {
	m.record(SentEvent{Kind: "user", Target: userID, Event: event, Payload: payload})
}

func (m *MockNotifier) ToRide(ctx context.Context, rideID, event string, payload map[string]any) {
	m.record(SentEvent{Kind: "ride", Target: rideID, Event: event, Payload: payload})
}

func (m *MockNotifier) ToOnlineDrivers(ctx context.Context, event string, payload map[string]any) {
	m.record(SentEvent{Kind: "drivers", Event: event, Payload: payload})
}

func (m *MockNotifier) record(e SentEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns all recorded deliveries of the named event.
func (m *MockNotifier) Events(event string) []SentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]SentEvent, 0)
	for _, e := range m.events {
		if e.Event == event {
			result = append(result, e)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// STUB OTP GENERATOR
// ──────────────────────────────────────────────

// StubOTP always generates the same code.
type StubOTP struct {
	Code string
}

func (g *StubOTP) Generate() (string, error) {
	return g.Code, nil
}
