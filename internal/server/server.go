package server

import (
	"fmt"
	"net/http"
	"time"

	"carmine/internal/config"
	"carmine/internal/database"
	"carmine/internal/listingapi"
	"carmine/internal/logger"
	custommiddleware "carmine/internal/middleware"
	"carmine/internal/payment"
	"carmine/internal/repository"
	"carmine/internal/service"
	"carmine/internal/session"
	"carmine/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers into a router. The
// redis client may be nil when sessions are kept in memory; rate limiting is
// then disabled.
func NewServer(cfg *config.Config, log *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	s := &Server{
		config: cfg,
		logger: log,
		db:     db,
		redis:  redisClient,
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	cfg, log := s.config, s.logger

	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger.Component(log, "http")))
	router.Use(custommiddleware.ErrorHandlingMiddleware(log))
	router.Use(custommiddleware.ValidationMiddleware(log))

	// Session storage
	store := s.sessionStore()
	sessions := session.NewManager(store, cfg.Session)
	refreshTokens := session.NewRefreshTokenStore(store)

	if s.redis != nil {
		router.Use(custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit",
			Identify:          custommiddleware.ClientIdentifier(cfg.JWT.Secret, sessions, cfg.Session),
		}, logger.Component(log, "ratelimit")))
	} else {
		log.Warn("Rate limiting disabled, no redis client configured")
	}

	router.Get("/health", s.health)

	// Initialize repositories
	userRepo := repository.NewUserRepository(s.db.DB())
	purchaseRepo := repository.NewPurchaseRepository(s.db.DB())
	contactRepo := repository.NewContactRepository(s.db.DB())

	// External collaborators
	listings := listingapi.NewClient(cfg.Listings, logger.Component(log, "listings"))
	gateway := payment.NewGateway(cfg.Payment, logger.Component(log, "payment"))

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokens, cfg.JWT)
	marketplaceService := service.NewMarketplaceService(listings, sessions, logger.Component(log, "marketplace"))
	checkoutService := service.NewCheckoutService(purchaseRepo, gateway, logger.Component(log, "checkout"))
	purchaseService := service.NewPurchaseService(purchaseRepo)
	contactService := service.NewContactService(contactRepo)

	// Create auth and session middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, log)
	optionalAuthMiddleware := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, log)
	sessionMiddleware := custommiddleware.SessionMiddleware(sessions, cfg.Session, logger.Component(log, "session"))

	// Register routes
	transport.NewUserHandler(userService, sessions, cfg.Session, log).
		RegisterRoutes(router, authMiddleware, sessionMiddleware)
	transport.NewMarketplaceHandler(marketplaceService, log).
		RegisterRoutes(router, sessionMiddleware)
	transport.NewCheckoutHandler(checkoutService, log).
		RegisterRoutes(router, optionalAuthMiddleware)
	transport.NewPurchaseHandler(purchaseService, log).
		RegisterRoutes(router, authMiddleware)
	transport.NewContactHandler(contactService, log).
		RegisterRoutes(router, authMiddleware)

	return router
}

func (s *Server) sessionStore() session.Store {
	if s.config.Session.Store == "memory" || s.redis == nil {
		s.logger.Info("Using in-memory session store")
		return session.NewMemoryStore()
	}
	return session.NewRedisStore(s.redis)
}

// health reports database and redis status. Any dependency down makes the
// whole service unavailable.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{"status": "ok"}

	dbHealth := s.db.Health()
	body["database"] = dbHealth
	if dbHealth["status"] != "up" {
		status = http.StatusServiceUnavailable
	}

	if s.redis != nil {
		redisHealth := database.RedisHealth(r.Context(), s.redis)
		body["redis"] = redisHealth
		if redisHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
	}

	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	custommiddleware.RespondWithJSON(w, status, body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

