package ticketing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rakhadjo/travelo/internal/models"
)

// Reason classifies the outcome of a validation attempt. Rejections are
// expected business outcomes returned as values, never errors.
type Reason string

const (
	ReasonValid            Reason = "valid"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonExpired          Reason = "expired"
	ReasonUnknownTicket    Reason = "unknown_ticket"
	ReasonCancelled        Reason = "cancelled"
	ReasonAlreadyUsed      Reason = "already_used"
)

// Request carries exactly the fields recoverable from a decoded QR payload
// plus the signature it carries. IssuedAt stays a raw string: the signature is
// verified over the presented bytes, not a re-formatted parse of them.
type Request struct {
	TicketID       uuid.UUID `json:"ticket_id"`
	ValidationHash string    `json:"validation_hash"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	IssuedAt       string    `json:"issued_at"`
}

type Result struct {
	Valid   bool   `json:"valid"`
	Reason  Reason `json:"-"`
	Message string `json:"message"`
}

func reject(reason Reason, message string) Result {
	return Result{Valid: false, Reason: reason, Message: message}
}

// Validator is the admission gate: authenticity, freshness, then at-most-once
// redemption against the store.
type Validator struct {
	signer   *Signer
	store    TicketStore
	validity time.Duration // zero means one calendar year
	now      func() time.Time
}

func NewValidator(signer *Signer, store TicketStore, validity time.Duration) *Validator {
	return &Validator{
		signer:   signer,
		store:    store,
		validity: validity,
		now:      time.Now,
	}
}

// Validate judges a presented ticket. Rejections come back as a Result; a
// non-nil error means the store could not be consulted and the caller should
// retry, not turn the scan away as invalid.
func (v *Validator) Validate(ctx context.Context, req Request) (Result, error) {
	if !v.signer.Verify(req.BookingID, req.UserID, req.IssuedAt, req.ValidationHash) {
		return reject(ReasonInvalidSignature, "Ticket signature is invalid."), nil
	}

	// The issuer only ever signs canonical instants, so a verified tuple with
	// an unparseable instant is not one we minted.
	issuedAt, err := time.Parse(TimeFormat, req.IssuedAt)
	if err != nil {
		return reject(ReasonInvalidSignature, "Ticket signature is invalid."), nil
	}

	// Expiry derives from the signed issuance instant. A client-supplied
	// expiresAt would be forgeable.
	if !v.now().Before(expiryOf(issuedAt, v.validity)) {
		return reject(ReasonExpired, "Ticket has expired."), nil
	}

	ticket, err := v.store.Get(ctx, req.TicketID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return reject(ReasonUnknownTicket, "Ticket is not recognized."), nil
		}
		return Result{}, err
	}

	switch ticket.Status {
	case models.TicketStatusCancelled:
		return reject(ReasonCancelled, "Ticket has been cancelled."), nil
	case models.TicketStatusUsed:
		return reject(ReasonAlreadyUsed, "Ticket has already been used."), nil
	case models.TicketStatusExpired:
		return reject(ReasonExpired, "Ticket has expired."), nil
	}

	swapped, err := v.store.CompareAndSwapStatus(ctx, req.TicketID, models.TicketStatusActive, models.TicketStatusUsed)
	if err != nil {
		return Result{}, err
	}
	if !swapped {
		// Lost the race to a concurrent scan or an out-of-band cancellation.
		// Re-read so the rejection names the actual terminal state.
		current, err := v.store.Get(ctx, req.TicketID)
		if err == nil && current.Status == models.TicketStatusCancelled {
			return reject(ReasonCancelled, "Ticket has been cancelled."), nil
		}
		return reject(ReasonAlreadyUsed, "Ticket has already been used."), nil
	}

	return Result{Valid: true, Reason: ReasonValid, Message: "Ticket validated successfully."}, nil
}

// ValidatePayload is Validate for a raw decoded QR string.
func (v *Validator) ValidatePayload(ctx context.Context, data string) (Result, error) {
	payload, err := ParsePayload(data)
	if err != nil {
		return reject(ReasonInvalidSignature, "QR payload is malformed."), nil
	}
	return v.Validate(ctx, Request{
		TicketID:       payload.TicketID,
		ValidationHash: payload.Hash,
		BookingID:      payload.BookingID.String(),
		UserID:         payload.UserID.String(),
		IssuedAt:       payload.IssuedAt.UTC().Format(TimeFormat),
	})
}
