package ticketing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rakhadjo/travelo/internal/models"
)

// MemoryStore is the in-process reference implementation of TicketStore. It
// backs tests and single-node deployments; multi-node setups use the postgres
// or redis stores.
type MemoryStore struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*models.Ticket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[uuid.UUID]*models.Ticket)}
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (s *MemoryStore) Create(ctx context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.ID]; ok {
		return ErrTicketExists
	}
	copied := *ticket
	s.tickets[ticket.ID] = &copied
	return nil
}

func (s *MemoryStore) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next models.TicketStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return false, ErrTicketNotFound
	}
	if ticket.Status != expected {
		return false, nil
	}
	ticket.Status = next
	return true, nil
}
