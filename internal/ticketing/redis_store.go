package ticketing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rakhadjo/travelo/internal/models"
)

// Status transitions go through Lua so the read-check-write is a single
// atomic step on the server.
const createTicketScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "data", ARGV[1], "status", ARGV[2])
return 1
`

const swapStatusScript = `
local status = redis.call("HGET", KEYS[1], "status")
if status == false then
  return -1
end
if status ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "status", ARGV[2])
return 1
`

// RedisStore keeps each ticket in a hash under "ticket:{id}": a JSON snapshot
// in "data" plus the live "status" field the swap script works on.
type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func ticketKey(id uuid.UUID) string {
	return fmt.Sprintf("ticket:%s", id.String())
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	fields, err := s.rdb.HGetAll(ctx, ticketKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrTicketNotFound
	}

	var ticket models.Ticket
	if err := json.Unmarshal([]byte(fields["data"]), &ticket); err != nil {
		return nil, fmt.Errorf("%w: corrupt ticket record: %v", ErrStoreUnavailable, err)
	}
	ticket.Status = models.TicketStatus(fields["status"])
	return &ticket, nil
}

func (s *RedisStore) Create(ctx context.Context, ticket *models.Ticket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	created, err := s.rdb.Eval(ctx, createTicketScript, []string{ticketKey(ticket.ID)}, string(data), string(ticket.Status)).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if created == 0 {
		return ErrTicketExists
	}
	return nil
}

func (s *RedisStore) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next models.TicketStatus) (bool, error) {
	swapped, err := s.rdb.Eval(ctx, swapStatusScript, []string{ticketKey(id)}, string(expected), string(next)).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if swapped == -1 {
		return false, ErrTicketNotFound
	}
	return swapped == 1, nil
}
