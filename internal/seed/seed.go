package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront-orders/internal/domain"
	orderrepo "storefront-orders/internal/repository/order"
	productrepo "storefront-orders/internal/repository/product"
	userrepo "storefront-orders/internal/repository/user"
)

type orderSeed struct {
	Date           time.Time
	Status         domain.OrderStatus
	ShipmentStatus string
	ShipmentID     string
	Items          []itemSeed
}

type itemSeed struct {
	ProductID string
	Quantity  int
}

var products = []domain.Product{
	{ID: "1", Name: "Kopi Arabika Gayo", Description: "Biji kopi sangrai 250 g", Price: decimal.NewFromInt(50000)},
	{ID: "2", Name: "Teh Melati", Description: "Teh hijau dengan melati, 100 g", Price: decimal.NewFromInt(35000)},
	{ID: "3", Name: "French Press", Description: "Kaca borosilikat 600 ml", Price: decimal.NewFromInt(100000)},
}

var users = []domain.User{
	{Name: "Ani Lestari", Email: "ani@example.test"},
	{Name: "Budi Santoso", Email: "budi@example.test"},
}

// Each user gets these orders; statuses cover every badge including one the
// storefront does not know.
var orders = []orderSeed{
	{
		Date:           time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC),
		Status:         domain.StatusInTransit,
		ShipmentStatus: "Dikirim dari Jakarta",
		ShipmentID:     "SHP-1001",
		Items:          []itemSeed{{ProductID: "1", Quantity: 2}, {ProductID: "3", Quantity: 1}},
	},
	{
		Date:   time.Date(2026, 10, 10, 12, 0, 0, 0, time.UTC),
		Status: domain.StatusPlaced,
		Items:  []itemSeed{{ProductID: "2", Quantity: 3}},
	},
	{
		Date:           time.Date(2026, 9, 1, 9, 15, 0, 0, time.UTC),
		Status:         domain.StatusCompleted,
		ShipmentStatus: "Diterima",
		ShipmentID:     "SHP-0901",
		Items:          []itemSeed{{ProductID: "1", Quantity: 1}},
	},
	{
		Date:   time.Date(2026, 8, 20, 16, 45, 0, 0, time.UTC),
		Status: "Dibatalkan",
		Items:  []itemSeed{{ProductID: "4", Quantity: 1}},
	},
}

// Apply inserts demo data for manual testing. Running it twice leaves the
// data unchanged.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	productRepo := productrepo.NewPostgres(pool, logger)
	userRepo := userrepo.NewPostgres(pool, logger)
	orderRepo := orderrepo.NewPostgres(pool, logger)

	prices := make(map[string]domain.Amount, len(products))
	for _, p := range products {
		if _, err := productRepo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
		prices[p.ID] = p.Price
	}

	for _, u := range users {
		owner, err := ensureUser(ctx, userRepo, u)
		if err != nil {
			return fmt.Errorf("ensure user %s: %w", u.Email, err)
		}
		existing, err := orderRepo.ListByUser(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("list orders for %s: %w", owner.ID, err)
		}
		if len(existing) > 0 {
			logger.Printf("seed: user=%s already has %d orders", owner.ID, len(existing))
			continue
		}
		for _, o := range orders {
			in := orderrepo.CreateOrderInput{
				UserID:         owner.ID,
				OrderDate:      o.Date,
				Status:         o.Status,
				ShipmentStatus: o.ShipmentStatus,
				ShipmentID:     o.ShipmentID,
			}
			for _, it := range o.Items {
				// Unknown products keep a price so the line still renders.
				price, ok := prices[it.ProductID]
				if !ok {
					price = decimal.NewFromInt(25000)
				}
				in.Items = append(in.Items, orderrepo.CreateItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: price})
			}
			if _, err := orderRepo.Create(ctx, in); err != nil {
				return fmt.Errorf("create order for %s: %w", owner.ID, err)
			}
		}
	}
	return nil
}

func ensureUser(ctx context.Context, repo userrepo.Repository, u domain.User) (*domain.User, error) {
	created, err := repo.Create(ctx, u)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		return repo.GetByEmail(ctx, u.Email)
	}
	return nil, err
}
