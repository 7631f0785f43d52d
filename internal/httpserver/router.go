package httpserver

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront-orders/internal/domain"
	"storefront-orders/internal/orders"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SessionStore interface {
	Current() domain.Session
	Login(ctx context.Context, user domain.User, token string) error
	Logout(ctx context.Context)
}

type ListController interface {
	LoadOrdersFor(ctx context.Context, s domain.Session) orders.ListView
	Retry(ctx context.Context) orders.ListView
}

type DetailController interface {
	LoadOrder(ctx context.Context, s domain.Session, orderID string) orders.DetailView
	Retry(ctx context.Context) orders.DetailView
	OrderID() string
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Session        SessionStore
	Orders         ListController
	Order          DetailController
	Credentials    Pinger
	AllowedOrigins []string
}

// buildRouter wires routes for the storefront view API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.AllowedOrigins) > 0 {
		corsCfg := cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if err := corsCfg.Validate(); err != nil {
			return nil, err
		}
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Credentials))

	h := &handlers{deps: deps, logger: logger}
	router.GET("/session", h.getSession)
	router.POST("/session/login", h.login)
	router.POST("/session/logout", h.logout)

	router.GET("/orders", h.listOrders)
	router.POST("/orders/retry", h.retryOrders)
	router.GET("/orders/:id", h.getOrder)
	router.POST("/orders/:id/retry", h.retryOrder)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
