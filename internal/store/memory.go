package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fixlab/api-core/internal/models"
)

// MemoryStore is a mutex-guarded in-process PrincipalStore with secondary
// indexes on email and API key hash.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*models.Principal
	byEmail   map[string]uuid.UUID
	byKeyHash map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[uuid.UUID]*models.Principal),
		byEmail:   make(map[string]uuid.UUID),
		byKeyHash: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Create(ctx context.Context, p *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(p.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrDuplicateEmail
	}
	if _, exists := s.byKeyHash[p.APIKeyHash]; exists {
		return ErrDuplicateKeyHash
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	stored := *p
	s.byID[p.ID] = &stored
	s.byEmail[email] = p.ID
	s.byKeyHash[p.APIKeyHash] = p.ID

	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyOf(s.byID[parsed]), nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}

	return s.copyOf(s.byID[id]), nil
}

func (s *MemoryStore) FindByKeyHash(ctx context.Context, hash string) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKeyHash[hash]
	if !ok {
		return nil, nil
	}

	return s.copyOf(s.byID[id]), nil
}

func (s *MemoryStore) IncrementRequests(ctx context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return 0, nil
	}

	p.RequestsUsed++
	return p.RequestsUsed, nil
}

func (s *MemoryStore) ResetUsage(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reset int64
	for _, p := range s.byID {
		p.RequestsUsed = 0
		t := now
		p.LastResetAt = &t
		reset++
	}

	return reset, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	principals := make([]models.Principal, 0, len(s.byID))
	for _, p := range s.byID {
		principals = append(principals, *p)
	}

	return principals, nil
}

// copyOf returns a snapshot so callers never share the stored record.
func (s *MemoryStore) copyOf(p *models.Principal) *models.Principal {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
