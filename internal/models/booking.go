package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is produced by the booking subsystem and consumed read-only here.
// A confirmed booking always carries at least one item.
type Booking struct {
	ID          uuid.UUID       `json:"id" binding:"required"`
	UserID      uuid.UUID       `json:"user_id" binding:"required"`
	Reference   string          `json:"reference" binding:"required"`
	Items       []BookingItem   `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency" binding:"required"`
}

type BookingItem struct {
	ListingID    uuid.UUID       `json:"listing_id"`
	ListingTitle string          `json:"listing_title"`
	ListingType  string          `json:"listing_type"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}
