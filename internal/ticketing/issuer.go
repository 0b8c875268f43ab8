package ticketing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rakhadjo/travelo/internal/models"
)

var ErrEmptyBooking = errors.New("booking has no items")

// expiryOf derives the void instant from the issuance instant. The default
// window is one calendar year, so a ticket issued on 2024-01-01 expires on
// 2025-01-01 regardless of leap days.
func expiryOf(issuedAt time.Time, validity time.Duration) time.Time {
	if validity <= 0 {
		return issuedAt.AddDate(1, 0, 0)
	}
	return issuedAt.Add(validity)
}

// Issuer mints tickets for confirmed bookings. Issuance is atomic: either a
// fully-formed ticket is persisted and returned, or nothing is stored.
type Issuer struct {
	signer   *Signer
	store    TicketStore
	validity time.Duration // zero means one calendar year
	now      func() time.Time
}

func NewIssuer(signer *Signer, store TicketStore, validity time.Duration) *Issuer {
	return &Issuer{
		signer:   signer,
		store:    store,
		validity: validity,
		now:      time.Now,
	}
}

// Issue mints a ticket for the first line item of the booking. Bookings with
// more than one item can use IssueAll instead.
func (i *Issuer) Issue(ctx context.Context, booking *models.Booking, userName, userEmail, vendorName string) (*models.Ticket, error) {
	if len(booking.Items) == 0 {
		return nil, ErrEmptyBooking
	}
	return i.issueItem(ctx, booking, &booking.Items[0], userName, userEmail, vendorName)
}

// IssueAll mints one ticket per line item. Each ticket write is independently
// atomic; on failure the tickets created so far are returned alongside the
// error so the caller can reconcile.
func (i *Issuer) IssueAll(ctx context.Context, booking *models.Booking, userName, userEmail, vendorName string) ([]*models.Ticket, error) {
	if len(booking.Items) == 0 {
		return nil, ErrEmptyBooking
	}

	tickets := make([]*models.Ticket, 0, len(booking.Items))
	for idx := range booking.Items {
		ticket, err := i.issueItem(ctx, booking, &booking.Items[idx], userName, userEmail, vendorName)
		if err != nil {
			return tickets, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (i *Issuer) issueItem(ctx context.Context, booking *models.Booking, item *models.BookingItem, userName, userEmail, vendorName string) (*models.Ticket, error) {
	// Truncated to whole seconds so the signed instant round-trips exactly
	// through the payload string.
	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := expiryOf(issuedAt, i.validity)

	hash := i.signer.SignAt(booking.ID.String(), booking.UserID.String(), issuedAt)

	ticket := &models.Ticket{
		ID:               uuid.New(),
		BookingID:        booking.ID,
		BookingReference: booking.Reference,
		UserID:           booking.UserID,
		UserName:         userName,
		UserEmail:        userEmail,
		ListingTitle:     item.ListingTitle,
		ListingType:      item.ListingType,
		VendorName:       vendorName,
		StartDate:        item.StartDate,
		EndDate:          item.EndDate,
		Quantity:         item.Quantity,
		UnitPrice:        item.UnitPrice,
		TotalAmount:      booking.TotalAmount,
		Currency:         booking.Currency,
		IssuedAt:         issuedAt,
		ExpiresAt:        expiresAt,
		Status:           models.TicketStatusActive,
		ValidationHash:   hash,
	}

	payload := Payload{
		TicketID:         ticket.ID,
		BookingID:        booking.ID,
		BookingReference: booking.Reference,
		UserID:           booking.UserID,
		ListingTitle:     item.ListingTitle,
		StartDate:        item.StartDate,
		EndDate:          item.EndDate,
		IssuedAt:         issuedAt,
		Hash:             hash,
	}
	ticket.QRCodeData = payload.Encode()

	image, err := EncodeQR(ticket.QRCodeData)
	if err != nil {
		return nil, err
	}
	ticket.QRCodeImage = image

	if err := i.store.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}
