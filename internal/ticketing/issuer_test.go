package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakhadjo/travelo/internal/models"
)

var testIssueTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testBooking() *models.Booking {
	return &models.Booking{
		ID:        uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
		UserID:    uuid.MustParse("99999999-8888-7777-6666-555555555555"),
		Reference: "TRV-2024-000123",
		Items: []models.BookingItem{
			{
				ListingID:    uuid.New(),
				ListingTitle: "Borobudur Sunrise Tour",
				ListingType:  "tour",
				StartDate:    time.Date(2024, 7, 1, 4, 30, 0, 0, time.UTC),
				EndDate:      time.Date(2024, 7, 1, 11, 0, 0, 0, time.UTC),
				Quantity:     2,
				UnitPrice:    decimal.NewFromInt(350000),
			},
			{
				ListingID:    uuid.New(),
				ListingTitle: "Ubud Jungle Villa",
				ListingType:  "stay",
				StartDate:    time.Date(2024, 7, 2, 14, 0, 0, 0, time.UTC),
				EndDate:      time.Date(2024, 7, 5, 12, 0, 0, 0, time.UTC),
				Quantity:     1,
				UnitPrice:    decimal.NewFromInt(1200000),
			},
		},
		TotalAmount: decimal.NewFromInt(1900000),
		Currency:    "IDR",
	}
}

func newTestIssuer(t *testing.T, store TicketStore) *Issuer {
	t.Helper()
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	issuer := NewIssuer(signer, store, 0)
	issuer.now = func() time.Time { return testIssueTime }
	return issuer
}

func TestIssuer_Issue(t *testing.T) {
	store := NewMemoryStore()
	issuer := newTestIssuer(t, store)
	booking := testBooking()

	ticket, err := issuer.Issue(context.Background(), booking, "Putri Larasati", "putri@example.com", "Java Wonders")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ticket.ID)
	assert.Equal(t, booking.ID, ticket.BookingID)
	assert.Equal(t, booking.Reference, ticket.BookingReference)
	assert.Equal(t, booking.UserID, ticket.UserID)
	assert.Equal(t, "Putri Larasati", ticket.UserName)
	assert.Equal(t, "putri@example.com", ticket.UserEmail)
	assert.Equal(t, "Java Wonders", ticket.VendorName)
	assert.Equal(t, "Borobudur Sunrise Tour", ticket.ListingTitle)
	assert.Equal(t, "tour", ticket.ListingType)
	assert.Equal(t, 2, ticket.Quantity)
	assert.True(t, ticket.UnitPrice.Equal(decimal.NewFromInt(350000)))
	assert.True(t, ticket.TotalAmount.Equal(decimal.NewFromInt(1900000)))
	assert.Equal(t, "IDR", ticket.Currency)
	assert.Equal(t, models.TicketStatusActive, ticket.Status)
	assert.Equal(t, testIssueTime, ticket.IssuedAt)
	assert.Equal(t, testIssueTime.AddDate(1, 0, 0), ticket.ExpiresAt)
	assert.NotEmpty(t, ticket.QRCodeImage)

	stored, err := store.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusActive, stored.Status)
}

func TestIssuer_Issue_PayloadMatchesTicket(t *testing.T) {
	issuer := newTestIssuer(t, NewMemoryStore())
	booking := testBooking()

	ticket, err := issuer.Issue(context.Background(), booking, "Putri Larasati", "putri@example.com", "Java Wonders")
	require.NoError(t, err)

	payload, err := ParsePayload(ticket.QRCodeData)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, payload.TicketID)
	assert.Equal(t, booking.ID, payload.BookingID)
	assert.Equal(t, booking.Reference, payload.BookingReference)
	assert.Equal(t, booking.UserID, payload.UserID)
	assert.Equal(t, ticket.ListingTitle, payload.ListingTitle)
	assert.Equal(t, ticket.IssuedAt, payload.IssuedAt)
	assert.Equal(t, ticket.ValidationHash, payload.Hash)
}

func TestIssuer_Issue_EmptyBooking(t *testing.T) {
	issuer := newTestIssuer(t, NewMemoryStore())
	booking := testBooking()
	booking.Items = nil

	ticket, err := issuer.Issue(context.Background(), booking, "Putri Larasati", "putri@example.com", "Java Wonders")
	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, ErrEmptyBooking)
}

func TestIssuer_Issue_SnapshotIsFrozen(t *testing.T) {
	issuer := newTestIssuer(t, NewMemoryStore())
	booking := testBooking()

	ticket, err := issuer.Issue(context.Background(), booking, "Putri Larasati", "putri@example.com", "Java Wonders")
	require.NoError(t, err)

	booking.Reference = "TRV-2024-999999"
	booking.Items[0].ListingTitle = "Renamed Tour"

	assert.Equal(t, "TRV-2024-000123", ticket.BookingReference)
	assert.Equal(t, "Borobudur Sunrise Tour", ticket.ListingTitle)
}

func TestIssuer_IssueAll(t *testing.T) {
	store := NewMemoryStore()
	issuer := newTestIssuer(t, store)
	booking := testBooking()

	tickets, err := issuer.IssueAll(context.Background(), booking, "Putri Larasati", "putri@example.com", "Java Wonders")
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	assert.NotEqual(t, tickets[0].ID, tickets[1].ID)
	assert.Equal(t, "Borobudur Sunrise Tour", tickets[0].ListingTitle)
	assert.Equal(t, "Ubud Jungle Villa", tickets[1].ListingTitle)

	for _, ticket := range tickets {
		_, err := store.Get(context.Background(), ticket.ID)
		assert.NoError(t, err)
	}
}

func TestIssuer_IssueAll_EmptyBooking(t *testing.T) {
	issuer := newTestIssuer(t, NewMemoryStore())
	booking := testBooking()
	booking.Items = []models.BookingItem{}

	tickets, err := issuer.IssueAll(context.Background(), booking, "Putri Larasati", "putri@example.com", "Java Wonders")
	assert.Nil(t, tickets)
	assert.ErrorIs(t, err, ErrEmptyBooking)
}

func TestIssuer_Issue_StoreFailureAbortsIssuance(t *testing.T) {
	issuer := newTestIssuer(t, &unavailableStore{})
	booking := testBooking()

	ticket, err := issuer.Issue(context.Background(), booking, "Putri Larasati", "putri@example.com", "Java Wonders")
	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

// unavailableStore simulates a store outage on every call.
type unavailableStore struct{}

func (s *unavailableStore) Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	return nil, ErrStoreUnavailable
}

func (s *unavailableStore) Create(ctx context.Context, ticket *models.Ticket) error {
	return ErrStoreUnavailable
}

func (s *unavailableStore) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, expected, next models.TicketStatus) (bool, error) {
	return false, ErrStoreUnavailable
}
