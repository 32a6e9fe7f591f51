package curation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mkoziy/genome/curation/internal/models"
)

// memStore is an in-memory Storage with failure injection.
type memStore struct {
	mu       sync.Mutex
	entities map[Ref]models.Entity
	calls    map[string]int

	// fail, when set, is consulted before every call; a non-nil result is returned as the call's error.
	fail func(op string, kind models.Kind) error
}

func newMemStore() *memStore {
	return &memStore{entities: make(map[Ref]models.Entity), calls: make(map[string]int)}
}

func (m *memStore) put(e models.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[Ref{Kind: e.EntityKind(), ID: e.EntityID()}] = e
}

func (m *memStore) get(kind models.Kind, id string) models.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entities[Ref{Kind: kind, ID: id}]
}

func (m *memStore) count(op string, kind models.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op+":"+string(kind)]
}

func (m *memStore) before(op string, kind models.Kind) error {
	m.mu.Lock()
	m.calls[op+":"+string(kind)]++
	fail := m.fail
	m.mu.Unlock()
	if fail != nil {
		return fail(op, kind)
	}
	return nil
}

func (m *memStore) Resolve(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	if err := m.before("resolve", kind); err != nil {
		return nil, err
	}
	if e := m.get(kind, id); e != nil {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) Create(ctx context.Context, kind models.Kind, e models.Entity) (models.Entity, error) {
	if err := m.before("create", kind); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	switch v := e.(type) {
	case *models.VariantScore:
		v.UUID = id
	case *models.Individual:
		v.UUID = id
	case *models.Family:
		v.UUID = id
	case *models.Variant:
		v.UUID = id
	}
	m.put(e)
	return e, nil
}

func (m *memStore) Update(ctx context.Context, kind models.Kind, id string, e models.Entity) (models.Entity, error) {
	if err := m.before("update", kind); err != nil {
		return nil, err
	}
	if m.get(kind, id) == nil {
		return nil, ErrNotFound
	}
	m.put(e)
	return e, nil
}

func (m *memStore) Tombstone(ctx context.Context, kind models.Kind, id string) error {
	if err := m.before("tombstone", kind); err != nil {
		return err
	}
	e := m.get(kind, id)
	if e == nil {
		return ErrNotFound
	}
	if sc, ok := e.(*models.VariantScore); ok {
		m.mu.Lock()
		sc.Status = models.StatusDeleted
		m.mu.Unlock()
	}
	return nil
}

// MockStorage is a testify mock of Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Resolve(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	args := m.Called(ctx, kind, id)
	e, _ := args.Get(0).(models.Entity)
	return e, args.Error(1)
}

func (m *MockStorage) Create(ctx context.Context, kind models.Kind, e models.Entity) (models.Entity, error) {
	args := m.Called(ctx, kind, e)
	out, _ := args.Get(0).(models.Entity)
	return out, args.Error(1)
}

func (m *MockStorage) Update(ctx context.Context, kind models.Kind, id string, e models.Entity) (models.Entity, error) {
	args := m.Called(ctx, kind, id, e)
	out, _ := args.Get(0).(models.Entity)
	return out, args.Error(1)
}

func (m *MockStorage) Tombstone(ctx context.Context, kind models.Kind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}
