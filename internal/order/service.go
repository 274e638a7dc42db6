package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrForbidden  = errors.New("forbidden")  // 403
)

type Service struct {
	Repo *GormRepo
}

// CheckoutRequest carries the delivery details for a checkout. The customer
// fields are an optional alternate contact; the registered buyer remains the
// primary one on the order.
type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
}

// Checkout turns the buyer's cart into an order. Names and prices are copied
// into the snapshot at this moment and never revised afterwards.
func (s *Service) Checkout(ctx context.Context, buyer *models.User, req CheckoutRequest) (*models.Order, error) {
	if buyer == nil {
		return nil, fmt.Errorf("%w: checkout requires a signed-in buyer", ErrValidation)
	}
	if req.DeliveryAddress == "" {
		return nil, fmt.Errorf("%w: delivery_address required", ErrValidation)
	}

	items, err := s.Repo.CartItems(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	var snapshot models.Snapshot
	var total float64
	currency := models.DefaultCurrency
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d no longer available", ErrValidation, it.ProductID)
		}
		snapshot = append(snapshot, models.LineItem{
			Name:     p.Name,
			Quantity: it.Quantity,
			Price:    p.Price,
		})
		total += p.Price * float64(it.Quantity)
		if p.Currency != "" {
			currency = p.Currency
		}
	}

	o := &models.Order{
		Reference:       uuid.NewString(),
		DeliveryAddress: req.DeliveryAddress,
		TotalAmount:     total,
		Currency:        currency,
		Products:        snapshot,
		Status:          models.OrderPending,
		UserName:        buyer.Name,
		UserEmail:       buyer.Email,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
	}

	if err := s.Repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	if err := s.Repo.ClearCart(ctx, buyer.ID); err != nil {
		return nil, err
	}

	return o, nil
}

// Row is one order prepared for the admin listing.
type Row struct {
	Order     models.Order      `json:"order"`
	Contact   Contact           `json:"contact"`
	LineItems []models.LineItem `json:"line_items"`
}

func (s *Service) ListOrders(ctx context.Context, ident models.Identity) ([]Row, error) {
	if !ident.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	orders, err := s.Repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(orders))
	for i := range orders {
		rows = append(rows, Row{
			Order:     orders[i],
			Contact:   ContactOf(&orders[i]),
			LineItems: ProjectLineItems(orders[i].Products),
		})
	}
	return rows, nil
}

func (s *Service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return o, err
}

// Accept moves one order from pending to accepted. Accepting an already
// accepted order succeeds and changes nothing; the transition is one-way.
func (s *Service) Accept(ctx context.Context, ident models.Identity, id uint) error {
	if !ident.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	err := s.Repo.SetStatus(ctx, id, models.OrderAccepted)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return err
}

// Delete removes one order outright, from either state.
func (s *Service) Delete(ctx context.Context, ident models.Identity, id uint) error {
	if !ident.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	err := s.Repo.DeleteOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return err
}
