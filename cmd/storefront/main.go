package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-orders/internal/config"
	"storefront-orders/internal/db"
	"storefront-orders/internal/format"
	"storefront-orders/internal/httpserver"
	"storefront-orders/internal/orders"
	"storefront-orders/internal/repository/credential"
	orderrepo "storefront-orders/internal/repository/order"
	productrepo "storefront-orders/internal/repository/product"
	userrepo "storefront-orders/internal/repository/user"
	"storefront-orders/internal/session"
	gqlsource "storefront-orders/internal/source/graphql"
	pgsource "storefront-orders/internal/source/postgres"
)

func main() {
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	var dbpool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		dbpool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer dbpool.Close()
	}

	creds, closeCreds, err := openCredentials(ctx, cfg, dbpool)
	if err != nil {
		logger.Fatalf("open credential store: %v", err)
	}
	defer closeCreds()

	sessionOpts := []session.Option{session.WithLogger(logger), session.WithTTL(cfg.SessionTTL)}
	if cfg.JWTSecret != "" {
		sessionOpts = append(sessionOpts, session.WithResolver(session.NewJWTIdentity(cfg.JWTSecret, cfg.JWTIssuer, nil)))
	}
	store := session.New(creds, sessionOpts...)
	restored := store.Hydrate(ctx)
	logger.Printf("session hydrated authenticated=%t identity=%t", restored.IsAuthenticated, restored.HasIdentity())

	formatter, err := format.New(cfg.Locale, cfg.Currency, cfg.Timezone)
	if err != nil {
		logger.Fatalf("init formatter: %v", err)
	}

	source := buildSource(cfg, dbpool, logger)
	listController := orders.NewListController(source, formatter, logger)
	detailController := orders.NewDetailController(source, formatter, orders.OwnershipPolicy{
		AllowUnresolvedOwner: cfg.AllowUnresolvedOwner,
	}, logger)
	defer listController.Watch(store)()
	defer detailController.Watch(store)()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Session:        store,
		Orders:         listController,
		Order:          detailController,
		Credentials:    creds,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s order_source=%s", cfg.HTTPAddr, cfg.OrderSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func openCredentials(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (credential.Repository, func(), error) {
	switch cfg.CredentialBackend {
	case config.BackendPostgres:
		return credential.NewPostgres(pool), func() {}, nil
	case config.BackendMemory:
		return credential.NewMemory(nil), func() {}, nil
	default:
		store, err := credential.OpenSQLite(ctx, cfg.CredentialPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

func buildSource(cfg config.Config, pool *pgxpool.Pool, logger *log.Logger) orders.Source {
	if cfg.OrderSource == config.SourcePostgres {
		return pgsource.New(
			orderrepo.NewPostgres(pool, logger),
			productrepo.NewPostgres(pool, logger),
			userrepo.NewPostgres(pool, logger),
			logger,
		)
	}
	return gqlsource.New(gqlsource.Endpoints{
		Orders:   cfg.OrderServiceURL,
		Users:    cfg.UserServiceURL,
		Products: cfg.ProductServiceURL,
	}, &http.Client{Timeout: cfg.RemoteTimeout}, logger)
}
