package ticketing

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// maxPayloadBytes keeps the canonical payload well inside what a version-40
// QR code holds at medium error correction (2331 bytes in byte mode).
const maxPayloadBytes = 1024

const qrImageSize = 256

// Payload is the fixed-order, minimal set of fields that is both signed and
// encoded into the QR image. Free-text fields are percent-escaped so the
// separator characters stay unambiguous.
type Payload struct {
	TicketID         uuid.UUID
	BookingID        uuid.UUID
	BookingReference string
	UserID           uuid.UUID
	ListingTitle     string
	StartDate        time.Time
	EndDate          time.Time
	IssuedAt         time.Time
	Hash             string
}

func (p Payload) Encode() string {
	return fmt.Sprintf("ticket:%s;booking:%s;ref:%s;user:%s;title:%s;start:%s;end:%s;issued:%s;signature:%s",
		p.TicketID.String(),
		p.BookingID.String(),
		url.QueryEscape(p.BookingReference),
		p.UserID.String(),
		url.QueryEscape(p.ListingTitle),
		p.StartDate.UTC().Format(TimeFormat),
		p.EndDate.UTC().Format(TimeFormat),
		p.IssuedAt.UTC().Format(TimeFormat),
		p.Hash,
	)
}

var payloadKeys = []string{"ticket", "booking", "ref", "user", "title", "start", "end", "issued", "signature"}

// ParsePayload is the inverse of Encode. The scanning device hands the decoded
// QR string back to us; everything else about decoding is its problem.
func ParsePayload(data string) (Payload, error) {
	parts := strings.Split(data, ";")
	if len(parts) != len(payloadKeys) {
		return Payload{}, fmt.Errorf("invalid payload: expected %d fields, got %d", len(payloadKeys), len(parts))
	}

	values := make(map[string]string, len(payloadKeys))
	for i, part := range parts {
		prefix := payloadKeys[i] + ":"
		if !strings.HasPrefix(part, prefix) {
			return Payload{}, fmt.Errorf("invalid payload: missing %q field", payloadKeys[i])
		}
		values[payloadKeys[i]] = strings.TrimPrefix(part, prefix)
	}

	ticketID, err := uuid.Parse(values["ticket"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid ticket ID in payload: %v", err)
	}
	bookingID, err := uuid.Parse(values["booking"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid booking ID in payload: %v", err)
	}
	userID, err := uuid.Parse(values["user"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid user ID in payload: %v", err)
	}
	ref, err := url.QueryUnescape(values["ref"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid booking reference in payload: %v", err)
	}
	title, err := url.QueryUnescape(values["title"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid listing title in payload: %v", err)
	}
	start, err := time.Parse(TimeFormat, values["start"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid start date in payload: %v", err)
	}
	end, err := time.Parse(TimeFormat, values["end"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid end date in payload: %v", err)
	}
	issued, err := time.Parse(TimeFormat, values["issued"])
	if err != nil {
		return Payload{}, fmt.Errorf("invalid issuance date in payload: %v", err)
	}

	return Payload{
		TicketID:         ticketID,
		BookingID:        bookingID,
		BookingReference: ref,
		UserID:           userID,
		ListingTitle:     title,
		StartDate:        start,
		EndDate:          end,
		IssuedAt:         issued,
		Hash:             values["signature"],
	}, nil
}

// EncodeQR renders the canonical payload into a PNG QR image.
func EncodeQR(data string) ([]byte, error) {
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("payload of %d bytes exceeds QR capacity limit of %d", len(data), maxPayloadBytes)
	}
	return qrcode.Encode(data, qrcode.Medium, qrImageSize)
}
