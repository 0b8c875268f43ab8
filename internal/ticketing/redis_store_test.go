package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakhadjo/travelo/internal/models"
)

func setupRedisStore(t *testing.T) (*RedisStore, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	return NewRedisStore(db), mock
}

func TestRedisStore_Create(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	data, err := json.Marshal(ticket)
	require.NoError(t, err)
	mock.ExpectEval(createTicketScript, []string{ticketKey(ticket.ID)}, string(data), "active").SetVal(int64(1))

	assert.NoError(t, store.Create(context.Background(), ticket))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Create_Duplicate(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	data, err := json.Marshal(ticket)
	require.NoError(t, err)
	mock.ExpectEval(createTicketScript, []string{ticketKey(ticket.ID)}, string(data), "active").SetVal(int64(0))

	assert.ErrorIs(t, store.Create(context.Background(), ticket), ErrTicketExists)
}

func TestRedisStore_Get(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	data, err := json.Marshal(ticket)
	require.NoError(t, err)
	mock.ExpectHGetAll(ticketKey(ticket.ID)).SetVal(map[string]string{
		"data":   string(data),
		"status": "used",
	})

	got, err := store.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
	// The live status field wins over the stored snapshot.
	assert.Equal(t, models.TicketStatusUsed, got.Status)
}

func TestRedisStore_Get_NotFound(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	mock.ExpectHGetAll(ticketKey(ticket.ID)).SetVal(map[string]string{})

	_, err := store.Get(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestRedisStore_Get_Unavailable(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	mock.ExpectHGetAll(ticketKey(ticket.ID)).SetErr(errors.New("connection refused"))

	_, err := store.Get(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRedisStore_CompareAndSwapStatus(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	mock.ExpectEval(swapStatusScript, []string{ticketKey(ticket.ID)}, "active", "used").SetVal(int64(1))

	swapped, err := store.CompareAndSwapStatus(context.Background(), ticket.ID, models.TicketStatusActive, models.TicketStatusUsed)
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_CompareAndSwapStatus_WrongStatus(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	mock.ExpectEval(swapStatusScript, []string{ticketKey(ticket.ID)}, "active", "used").SetVal(int64(0))

	swapped, err := store.CompareAndSwapStatus(context.Background(), ticket.ID, models.TicketStatusActive, models.TicketStatusUsed)
	require.NoError(t, err)
	assert.False(t, swapped)
}

func TestRedisStore_CompareAndSwapStatus_NotFound(t *testing.T) {
	store, mock := setupRedisStore(t)
	ticket := activeTicket()

	mock.ExpectEval(swapStatusScript, []string{ticketKey(ticket.ID)}, "active", "used").SetVal(int64(-1))

	_, err := store.CompareAndSwapStatus(context.Background(), ticket.ID, models.TicketStatusActive, models.TicketStatusUsed)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
