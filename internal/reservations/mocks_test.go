package reservations

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu          sync.Mutex
	Published   []PublishedEvent
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type PublishedEvent struct {
	Topic   string
	Payload []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedEvent{Topic: topic, Payload: msg})
	return nil
}

// MockTableRepo is a mock implementation of TableRepo for testing
type MockTableRepo struct {
	mu     sync.RWMutex
	tables map[uuid.UUID]*Table
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{
		tables: make(map[uuid.UUID]*Table),
	}
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return table, nil
}

func (m *MockTableRepo) GetByNumber(ctx context.Context, number int) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.Number == number {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockTableRepo) List(ctx context.Context) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result, nil
}

// MockReservationRepo is a mock implementation of ReservationRepo for testing
type MockReservationRepo struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]*Reservation
	CreateFunc   func(ctx context.Context, reservation *Reservation) error
	GetFunc      func(ctx context.Context, id uuid.UUID) (*Reservation, error)
	SaveFunc     func(ctx context.Context, reservation *Reservation) error
	DeleteFunc   func(ctx context.Context, id uuid.UUID) error
}

func NewMockReservationRepo() *MockReservationRepo {
	return &MockReservationRepo{
		reservations: make(map[uuid.UUID]*Reservation),
	}
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *reservation
	m.reservations[reservation.ID] = &copied
	return nil
}

func (m *MockReservationRepo) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	copied := *reservation
	return &copied, nil
}

func (m *MockReservationRepo) ListByPhone(ctx context.Context, phone string) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.Phone == phone {
			copied := *r
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockReservationRepo) Save(ctx context.Context, reservation *Reservation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[reservation.ID]; !ok {
		return ErrNotFound
	}
	copied := *reservation
	m.reservations[reservation.ID] = &copied
	return nil
}

func (m *MockReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[id]; !ok {
		return ErrNotFound
	}
	delete(m.reservations, id)
	return nil
}

// MockAllocationRepo keeps table claims in memory with the same conflict
// semantics the store enforces with its unique index.
type MockAllocationRepo struct {
	mu     sync.Mutex
	claims map[string]uuid.UUID
}

func NewMockAllocationRepo() *MockAllocationRepo {
	return &MockAllocationRepo{
		claims: make(map[string]uuid.UUID),
	}
}

func claimKey(date, timeSlot, tableID string) string {
	return fmt.Sprintf("%s|%s|%s", date, timeSlot, tableID)
}

func (m *MockAllocationRepo) Reserve(ctx context.Context, orderID uuid.UUID, date, timeSlot string, tableIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tableID := range tableIDs {
		if holder, ok := m.claims[claimKey(date, timeSlot, tableID)]; ok && holder != orderID {
			return ErrTableConflict
		}
	}
	for _, tableID := range tableIDs {
		m.claims[claimKey(date, timeSlot, tableID)] = orderID
	}
	return nil
}

func (m *MockAllocationRepo) Rebind(ctx context.Context, orderID uuid.UUID, date, timeSlot string, tableIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tableID := range tableIDs {
		if holder, ok := m.claims[claimKey(date, timeSlot, tableID)]; ok && holder != orderID {
			return ErrTableConflict
		}
	}

	for key, holder := range m.claims {
		if holder == orderID {
			delete(m.claims, key)
		}
	}
	for _, tableID := range tableIDs {
		m.claims[claimKey(date, timeSlot, tableID)] = orderID
	}
	return nil
}

func (m *MockAllocationRepo) Release(ctx context.Context, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, holder := range m.claims {
		if holder == orderID {
			delete(m.claims, key)
		}
	}
	return nil
}

func (m *MockAllocationRepo) ReservedTableIDs(ctx context.Context, date, timeSlot string, exclude uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := fmt.Sprintf("%s|%s|", date, timeSlot)
	var result []string
	for key, holder := range m.claims {
		if holder == exclude {
			continue
		}
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			result = append(result, key[len(prefix):])
		}
	}
	sort.Strings(result)
	return result, nil
}
