// Package graphql reads orders from the storefront's GraphQL services.
package graphql

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	gql "github.com/machinebox/graphql"

	"storefront-orders/internal/domain"
)

const (
	ordersByUserQuery = `query GetOrdersByUser($userId: ID!) {
  ordersByUser(userId: $userId) {
    order_id
    user_id
    order_date
    total_amount
    status
    shipment_status
    shipment_id
    items {
      order_item_id
      product_id
      quantity
      price
      product {
        product_id
        name
      }
    }
  }
}`

	orderQuery = `query GetOrder($id: ID!) {
  order(id: $id) {
    order_id
    user_id
    order_date
    total_amount
    status
    shipment_status
    shipment_id
    user {
      name
      email
    }
    items {
      order_item_id
      product_id
      quantity
      price
      product {
        product_id
        name
        description
      }
    }
  }
}`

	productQuery = `query GetProduct($id: ID!) {
  product(id: $id) {
    product_id
    name
    description
  }
}`

	userQuery = `query GetUser($id: ID!) {
  user(id: $id) {
    name
    email
  }
}`
)

// Endpoints are the GraphQL URLs of the data owners. Users and Products are
// optional and only fill in summaries the order service left out.
type Endpoints struct {
	Orders   string
	Users    string
	Products string
}

// Error is a failed query. Message is the backend's own text.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

type Source struct {
	orders   *gql.Client
	users    *gql.Client
	products *gql.Client
	logger   *log.Logger
}

func New(endpoints Endpoints, httpClient *http.Client, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	s := &Source{
		orders: newClient(endpoints.Orders, httpClient),
		logger: logger,
	}
	if endpoints.Users != "" {
		s.users = newClient(endpoints.Users, httpClient)
	}
	if endpoints.Products != "" {
		s.products = newClient(endpoints.Products, httpClient)
	}
	return s
}

func newClient(url string, httpClient *http.Client) *gql.Client {
	return gql.NewClient(url, gql.WithHTTPClient(httpClient))
}

func (s *Source) OrdersByUser(ctx context.Context, token, userID string) ([]domain.Order, error) {
	var resp struct {
		OrdersByUser []wireOrder `json:"ordersByUser"`
	}
	if err := s.run(ctx, s.orders, token, ordersByUserQuery, map[string]any{"userId": userID}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(resp.OrdersByUser))
	for _, w := range resp.OrdersByUser {
		o, err := w.toDomain()
		if err != nil {
			return nil, &Error{Message: err.Error(), Err: err}
		}
		out = append(out, o)
	}
	s.enrichProducts(ctx, token, out)
	return out, nil
}

func (s *Source) Order(ctx context.Context, token, orderID string) (*domain.Order, error) {
	var resp struct {
		Order *wireOrder `json:"order"`
	}
	if err := s.run(ctx, s.orders, token, orderQuery, map[string]any{"id": orderID}, &resp); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, domain.ErrNotFound
	}
	o, err := resp.Order.toDomain()
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	orders := []domain.Order{o}
	s.enrichProducts(ctx, token, orders)
	res := &orders[0]
	if s.users != nil && res.Owner == nil && res.OwnerUserID != "" {
		res.Owner = s.user(ctx, token, res.OwnerUserID)
	}
	return res, nil
}

// enrichProducts fills in missing product summaries from the product
// service, one lookup per distinct id. Failures leave the summary empty.
// Owners are only looked up for a single order since lists never show them.
func (s *Source) enrichProducts(ctx context.Context, token string, orders []domain.Order) {
	if s.products == nil {
		return
	}
	products := make(map[string]*domain.ProductSummary)
	for i := range orders {
		for j := range orders[i].Items {
			it := &orders[i].Items[j]
			if it.Product != nil || it.ProductID == "" {
				continue
			}
			p, seen := products[it.ProductID]
			if !seen {
				p = s.product(ctx, token, it.ProductID)
				products[it.ProductID] = p
			}
			it.Product = p
		}
	}
}

func (s *Source) product(ctx context.Context, token, id string) *domain.ProductSummary {
	var resp struct {
		Product *wireProduct `json:"product"`
	}
	if err := s.run(ctx, s.products, token, productQuery, map[string]any{"id": id}, &resp); err != nil {
		s.logger.Printf("source: product lookup id=%s error=%v", id, err)
		return nil
	}
	if resp.Product == nil {
		return nil
	}
	return resp.Product.toDomain()
}

func (s *Source) user(ctx context.Context, token, id string) *domain.UserSummary {
	var resp struct {
		User *wireUser `json:"user"`
	}
	if err := s.run(ctx, s.users, token, userQuery, map[string]any{"id": id}, &resp); err != nil {
		s.logger.Printf("source: user lookup id=%s error=%v", id, err)
		return nil
	}
	if resp.User == nil {
		return nil
	}
	return &domain.UserSummary{Name: resp.User.Name, Email: resp.User.Email}
}

func (s *Source) run(ctx context.Context, client *gql.Client, token, query string, vars map[string]any, resp any) error {
	req := gql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if err := client.Run(ctx, req, resp); err != nil {
		// The client prefixes backend messages with its own name.
		return &Error{Message: strings.TrimPrefix(err.Error(), "graphql: "), Err: err}
	}
	return nil
}
