package accounts

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tavolaclub/tavola/internal/reservations"
	"github.com/tavolaclub/tavola/internal/takeaway"
)

// MockUserRepo is a mock implementation of UserRepo for testing
type MockUserRepo struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*User
	CreateFunc func(ctx context.Context, user *User) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*User, error)
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{
		users: make(map[uuid.UUID]*User),
	}
}

func (m *MockUserRepo) Create(ctx context.Context, user *User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrUserExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepo) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepo) Save(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// MockReservationRepo covers just what the order history needs.
type MockReservationRepo struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]*reservations.Reservation
}

func NewMockReservationRepo() *MockReservationRepo {
	return &MockReservationRepo{
		reservations: make(map[uuid.UUID]*reservations.Reservation),
	}
}

func (m *MockReservationRepo) Create(ctx context.Context, r *reservations.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *r
	m.reservations[r.ID] = &copied
	return nil
}

func (m *MockReservationRepo) Get(ctx context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *MockReservationRepo) ListByPhone(ctx context.Context, phone string) ([]*reservations.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*reservations.Reservation
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

func (m *MockReservationRepo) Save(ctx context.Context, r *reservations.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *r
	m.reservations[r.ID] = &copied
	return nil
}

func (m *MockReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reservations, id)
	return nil
}

// MockOrderRepo covers just what the order history needs.
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*takeaway.Order
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*takeaway.Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, o *takeaway.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*takeaway.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (m *MockOrderRepo) List(ctx context.Context) ([]*takeaway.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*takeaway.Order
	for _, o := range m.orders {
		copied := *o
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockOrderRepo) ListByPhone(ctx context.Context, phone string) ([]*takeaway.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*takeaway.Order
	for _, o := range m.orders {
		if o.Phone == phone {
			copied := *o
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}
