package ticketing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rakhadjo/travelo/internal/models"
)

var (
	// ErrTicketNotFound means no ticket exists under the given ID.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrTicketExists means Create was called with an ID already in use.
	ErrTicketExists = errors.New("ticket already exists")
	// ErrStoreUnavailable wraps transient store failures. Callers retry with
	// backoff; it is never reported to the end user as "ticket invalid".
	ErrStoreUnavailable = errors.New("ticket store unavailable")
)

// TicketStore is the authoritative record of ticket status. The validator
// consults it on every call; redemption state is never cached across calls.
type TicketStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	Create(ctx context.Context, ticket *models.Ticket) error
	// CompareAndSwapStatus atomically moves the ticket from expected to next
	// and reports whether the swap happened. A false return with nil error
	// means the ticket was not in the expected status.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next models.TicketStatus) (bool, error)
}
