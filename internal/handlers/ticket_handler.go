package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rakhadjo/travelo/internal/helpers"
	"github.com/rakhadjo/travelo/internal/middleware"
	"github.com/rakhadjo/travelo/internal/models"
	"github.com/rakhadjo/travelo/internal/monitoring"
	"github.com/rakhadjo/travelo/internal/ticketing"
)

type IssueTicketRequest struct {
	Booking    models.Booking `json:"booking" binding:"required"`
	UserName   string         `json:"user_name" binding:"required"`
	UserEmail  string         `json:"user_email" binding:"required,email"`
	VendorName string         `json:"vendor_name" binding:"required"`
}

type ValidateTicketRequest struct {
	QRData string `json:"qr_data"`

	TicketID       string `json:"ticket_id"`
	ValidationHash string `json:"validation_hash"`
	BookingID      string `json:"booking_id"`
	UserID         string `json:"user_id"`
	IssuedAt       string `json:"issued_at"`
}

// IssueTicket mints the ticket(s) for a confirmed booking. The booking
// subsystem posts the booking snapshot here once payment has settled.
func IssueTicket(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
		return
	}

	var req IssueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if req.Booking.ID != bookingID {
		helpers.RespondWithError(c, http.StatusBadRequest, "Booking ID in path does not match request body.")
		return
	}

	issuer := middleware.GetIssuer(c)
	if issuer == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticket issuer not configured.")
		return
	}

	if c.Query("all") == "true" {
		tickets, err := issuer.IssueAll(c.Request.Context(), &req.Booking, req.UserName, req.UserEmail, req.VendorName)
		if err != nil {
			monitoring.RecordIssued(len(tickets))
			respondIssueError(c, err)
			return
		}
		monitoring.RecordIssued(len(tickets))
		c.JSON(http.StatusCreated, gin.H{
			"message": "Tickets issued successfully.",
			"tickets": tickets,
		})
		return
	}

	ticket, err := issuer.Issue(c.Request.Context(), &req.Booking, req.UserName, req.UserEmail, req.VendorName)
	if err != nil {
		respondIssueError(c, err)
		return
	}
	monitoring.RecordIssued(1)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket issued successfully.",
		"ticket":  ticket,
	})
}

func respondIssueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ticketing.ErrEmptyBooking):
		helpers.RespondWithError(c, http.StatusBadRequest, "Booking has no items to ticket.")
	case errors.Is(err, ticketing.ErrTicketExists):
		helpers.RespondWithError(c, http.StatusConflict, "Ticket already exists.")
	case errors.Is(err, ticketing.ErrStoreUnavailable):
		monitoring.RecordStoreFailure()
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Ticket store unavailable, please retry.")
	default:
		logrus.WithError(err).Error("ticket issuance failed")
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to issue ticket.")
	}
}

func GetTicket(c *gin.Context) {
	ticket, ok := fetchOwnedTicket(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GetTicketQR serves the rendered QR image for printing or display.
func GetTicketQR(c *gin.Context) {
	ticket, ok := fetchOwnedTicket(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "image/png", ticket.QRCodeImage)
}

func fetchOwnedTicket(c *gin.Context) (*models.Ticket, bool) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return nil, false
	}

	store := middleware.GetTicketStore(c)
	if store == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticket store not configured.")
		return nil, false
	}

	ticket, err := store.Get(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, ticketing.ErrTicketNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return nil, false
		}
		monitoring.RecordStoreFailure()
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Ticket store unavailable, please retry.")
		return nil, false
	}

	userID, _ := c.Get("user_id")
	role, _ := c.Get("role")
	if ticket.UserID != userID && role != "admin" && role != "vendor" {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this ticket.")
		return nil, false
	}
	return ticket, true
}

// ValidateTicket judges a scanned ticket. Rejections are 200 responses with
// valid=false; a store outage is 503 and must never read as "ticket invalid".
func ValidateTicket(c *gin.Context) {
	var req ValidateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	validator := middleware.GetValidator(c)
	if validator == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticket validator not configured.")
		return
	}

	var result ticketing.Result
	var err error
	if req.QRData != "" {
		result, err = validator.ValidatePayload(c.Request.Context(), req.QRData)
	} else {
		ticketID, parseErr := uuid.Parse(req.TicketID)
		if parseErr != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
			return
		}
		result, err = validator.Validate(c.Request.Context(), ticketing.Request{
			TicketID:       ticketID,
			ValidationHash: req.ValidationHash,
			BookingID:      req.BookingID,
			UserID:         req.UserID,
			IssuedAt:       req.IssuedAt,
		})
	}
	if err != nil {
		monitoring.RecordStoreFailure()
		logrus.WithError(err).Warn("ticket validation hit store failure")
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Ticket store unavailable, please retry.")
		return
	}

	monitoring.RecordValidation(string(result.Reason))
	c.JSON(http.StatusOK, gin.H{
		"valid":   result.Valid,
		"message": result.Message,
	})
}

// CancelTicket voids a ticket after the underlying booking was cancelled.
// Called by the booking subsystem, vendors or admins, not by travelers.
func CancelTicket(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "vendor" {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to cancel tickets.")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	store := middleware.GetTicketStore(c)
	if store == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticket store not configured.")
		return
	}

	swapped, err := store.CompareAndSwapStatus(c.Request.Context(), ticketID, models.TicketStatusActive, models.TicketStatusCancelled)
	if err != nil {
		if errors.Is(err, ticketing.ErrTicketNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		monitoring.RecordStoreFailure()
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Ticket store unavailable, please retry.")
		return
	}
	if !swapped {
		helpers.RespondWithError(c, http.StatusConflict, "Ticket is not active and cannot be cancelled.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket cancelled successfully."})
}
