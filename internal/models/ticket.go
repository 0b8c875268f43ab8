package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusExpired   TicketStatus = "expired"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket is the proof-of-booking credential minted once a booking is
// confirmed. Everything except Status is frozen at issuance; later edits to
// the booking or the user never change an issued ticket.
type Ticket struct {
	gorm.Model
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID        uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	BookingReference string    `gorm:"not null" json:"booking_reference"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName         string    `gorm:"not null" json:"user_name"`
	UserEmail        string    `gorm:"not null" json:"user_email"`

	ListingTitle string          `gorm:"not null" json:"listing_title"`
	ListingType  string          `gorm:"not null" json:"listing_type"`
	VendorName   string          `gorm:"not null" json:"vendor_name"`
	StartDate    time.Time       `gorm:"not null" json:"start_date"`
	EndDate      time.Time       `gorm:"not null" json:"end_date"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric" json:"unit_price"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric" json:"total_amount"`
	Currency     string          `gorm:"not null" json:"currency"`

	QRCodeData     string       `gorm:"not null" json:"qr_code_data"`
	QRCodeImage    []byte       `gorm:"type:bytea" json:"qr_code_image,omitempty"`
	IssuedAt       time.Time    `gorm:"not null" json:"issued_at"`
	ExpiresAt      time.Time    `gorm:"not null" json:"expires_at"`
	Status         TicketStatus `gorm:"not null;default:'active'" json:"status"`
	ValidationHash string       `gorm:"not null" json:"validation_hash"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
