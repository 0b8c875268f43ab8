package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/rakhadjo/travelo/internal/ticketing"
)

// TicketingMiddleware makes the issuance/validation collaborators available
// to handlers the same way the database connection is.
func TicketingMiddleware(issuer *ticketing.Issuer, validator *ticketing.Validator, store ticketing.TicketStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("ticket_issuer", issuer)
		c.Set("ticket_validator", validator)
		c.Set("ticket_store", store)
		c.Next()
	}
}

func GetIssuer(c *gin.Context) *ticketing.Issuer {
	issuer, exists := c.Get("ticket_issuer")
	if !exists {
		return nil
	}
	return issuer.(*ticketing.Issuer)
}

func GetValidator(c *gin.Context) *ticketing.Validator {
	validator, exists := c.Get("ticket_validator")
	if !exists {
		return nil
	}
	return validator.(*ticketing.Validator)
}

func GetTicketStore(c *gin.Context) ticketing.TicketStore {
	store, exists := c.Get("ticket_store")
	if !exists {
		return nil
	}
	return store.(ticketing.TicketStore)
}
