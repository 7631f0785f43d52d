// Package postgres reads orders straight from the order database and joins
// product and owner summaries from their own tables.
package postgres

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-orders/internal/domain"
)

type orderRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type productRepo interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Source merges the three data owners into order aggregates. It ignores the
// session token; database credentials gate access instead.
type Source struct {
	orders   orderRepo
	products productRepo
	users    userRepo
	logger   *log.Logger
}

func New(orders orderRepo, products productRepo, users userRepo, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Source{orders: orders, products: products, users: users, logger: logger}
}

func (s *Source) OrdersByUser(ctx context.Context, _ string, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachProducts(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Source) Order(ctx context.Context, _ string, orderID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{*o}
	if err := s.attachProducts(ctx, orders); err != nil {
		return nil, err
	}
	res := orders[0]
	if res.OwnerUserID != "" {
		owner, err := s.users.GetByID(ctx, res.OwnerUserID)
		switch {
		case err == nil:
			res.Owner = &domain.UserSummary{Name: owner.Name, Email: owner.Email}
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Printf("source: owner missing order=%s user=%s", res.ID, res.OwnerUserID)
		default:
			return nil, err
		}
	}
	return &res, nil
}

func (s *Source) attachProducts(ctx context.Context, orders []domain.Order) error {
	seen := make(map[string]struct{})
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; ok {
				continue
			}
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range orders {
		for j := range orders[i].Items {
			if p, ok := products[orders[i].Items[j].ProductID]; ok {
				orders[i].Items[j].Product = p.Summary()
			}
		}
	}
	return nil
}
