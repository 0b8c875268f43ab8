package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rakhadjo/travelo/config"
	"github.com/rakhadjo/travelo/internal/handlers"
	"github.com/rakhadjo/travelo/internal/middleware"
	"github.com/rakhadjo/travelo/internal/ticketing"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	ticketCfg, err := config.LoadTicketingConfig()
	if err != nil {
		return fmt.Errorf("failed to load ticketing config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	signer, err := ticketing.NewSigner(ticketCfg.Secret)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %v", err)
	}

	store, err := buildStore(ticketCfg, db)
	if err != nil {
		return err
	}
	logrus.WithField("backend", ticketCfg.StoreBackend).Info("ticket store ready")

	issuer := ticketing.NewIssuer(signer, store, ticketCfg.ValidityWindow)
	validator := ticketing.NewValidator(signer, store, ticketCfg.ValidityWindow)

	r := gin.Default()

	setupRoutes(r, db, issuer, validator, store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logrus.WithField("port", port).Info("starting server")
	return r.Run(":" + port)
}

func buildStore(ticketCfg *config.TicketingConfig, db *gorm.DB) (ticketing.TicketStore, error) {
	switch ticketCfg.StoreBackend {
	case "postgres":
		return ticketing.NewGormStore(db), nil
	case "redis":
		return ticketing.NewRedisStore(config.InitRedis(config.LoadRedisConfig())), nil
	case "memory":
		return ticketing.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown ticket store backend %q", ticketCfg.StoreBackend)
	}
}

func setupRoutes(r *gin.Engine, db *gorm.DB, issuer *ticketing.Issuer, validator *ticketing.Validator, store ticketing.TicketStore) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.TicketingMiddleware(issuer, validator, store))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware(os.Getenv("JWT_SECRET")))
	{
		protected.POST("/bookings/:bookingId/tickets", handlers.IssueTicket)

		tickets := protected.Group("/tickets")
		{
			tickets.GET("/:id", handlers.GetTicket)
			tickets.GET("/:id/qr", handlers.GetTicketQR)
			tickets.POST("/validate", handlers.ValidateTicket)
			tickets.POST("/:id/cancel", handlers.CancelTicket)
		}
	}
}
