package order

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.User{}, &models.Order{}, &models.CartItem{},
	))

	return &Service{Repo: &GormRepo{DB: db}}
}

func admin() models.Identity {
	return models.Identity{UserID: 1, Role: models.TypeAdmin}
}

func seedOrder(t *testing.T, svc *Service, o models.Order) models.Order {
	t.Helper()
	if o.Reference == "" {
		o.Reference = "ref-" + o.Status
	}
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	require.NoError(t, svc.Repo.DB.Create(&o).Error)
	return o
}

func TestAcceptOrder_IsIdempotent(t *testing.T) {
	svc := newTestService(t)
	o := seedOrder(t, svc, models.Order{DeliveryAddress: "12 Galle Rd", Reference: "r1"})

	ctx := context.Background()
	require.NoError(t, svc.Accept(ctx, admin(), o.ID))

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, got.Status)

	// second accept succeeds and changes nothing
	require.NoError(t, svc.Accept(ctx, admin(), o.ID))
	got, err = svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, got.Status)
}

func TestAcceptOrder_NotFound(t *testing.T) {
	svc := newTestService(t)
	err := svc.Accept(context.Background(), admin(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptOrder_NonAdminForbidden(t *testing.T) {
	svc := newTestService(t)
	o := seedOrder(t, svc, models.Order{DeliveryAddress: "12 Galle Rd", Reference: "r1"})

	err := svc.Accept(context.Background(), models.Identity{UserID: 9, Role: models.TypeUser}, o.ID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.Status)
}

func TestDeleteOrder_SecondDeleteNotFound(t *testing.T) {
	svc := newTestService(t)
	o := seedOrder(t, svc, models.Order{DeliveryAddress: "12 Galle Rd", Reference: "r1"})

	ctx := context.Background()
	require.NoError(t, svc.Delete(ctx, admin(), o.ID))
	require.ErrorIs(t, svc.Delete(ctx, admin(), o.ID), ErrNotFound)
}

func TestDeleteOrder_FromAcceptedState(t *testing.T) {
	svc := newTestService(t)
	o := seedOrder(t, svc, models.Order{DeliveryAddress: "12 Galle Rd", Reference: "r1", Status: models.OrderAccepted})

	require.NoError(t, svc.Delete(context.Background(), admin(), o.ID))
}

func TestCheckout_BuildsImmutableSnapshot(t *testing.T) {
	svc := newTestService(t)
	db := svc.Repo.DB
	ctx := context.Background()

	buyer := models.User{Name: "Nimal", Email: "nimal@example.com", PasswordHash: "x", Type: models.TypeUser}
	require.NoError(t, db.Create(&buyer).Error)

	laptop := models.Product{Name: "Legion 5", Category: "Laptops", Price: 420000, Currency: "LKR"}
	mouse := models.Product{Name: "MX Master", Category: "Accessories", Price: 32000, Currency: "LKR"}
	require.NoError(t, db.Create(&laptop).Error)
	require.NoError(t, db.Create(&mouse).Error)

	require.NoError(t, db.Create(&models.CartItem{UserID: buyer.ID, ProductID: laptop.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: buyer.ID, ProductID: mouse.ID, Quantity: 2}).Error)

	o, err := svc.Checkout(ctx, &buyer, CheckoutRequest{DeliveryAddress: "12 Galle Rd, Colombo"})
	require.NoError(t, err)
	require.NotEmpty(t, o.Reference)
	assert.Equal(t, "nimal@example.com", o.UserEmail)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, 420000.0+2*32000.0, o.TotalAmount)

	// cart emptied
	var left int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&left).Error)
	assert.EqualValues(t, 0, left)

	// later product edits and deletions leave the snapshot alone
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", laptop.ID).Update("price", 999999).Error)
	require.NoError(t, db.Delete(&models.Product{}, mouse.ID).Error)

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	items := ProjectLineItems(got.Products)
	require.Len(t, items, 2)
	assert.Equal(t, "Legion 5", items[0].Name)
	assert.Equal(t, 420000.0, items[0].Price)
	assert.Equal(t, "MX Master", items[1].Name)
	assert.EqualValues(t, 2, items[1].Quantity)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newTestService(t)
	buyer := models.User{Name: "Nimal", Email: "nimal@example.com", PasswordHash: "x"}
	require.NoError(t, svc.Repo.DB.Create(&buyer).Error)

	_, err := svc.Checkout(context.Background(), &buyer, CheckoutRequest{DeliveryAddress: "12 Galle Rd"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCheckout_MissingAddress(t *testing.T) {
	svc := newTestService(t)
	buyer := models.User{Name: "Nimal", Email: "nimal@example.com", PasswordHash: "x"}
	require.NoError(t, svc.Repo.DB.Create(&buyer).Error)

	_, err := svc.Checkout(context.Background(), &buyer, CheckoutRequest{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestListOrders_ProjectsRows(t *testing.T) {
	svc := newTestService(t)

	// a row imported from the old system: serialized text snapshot, guest contact
	legacy := models.Order{
		Reference:       "legacy-1",
		CustomerName:    "Walk-in Guest",
		CustomerEmail:   "guest@example.com",
		DeliveryAddress: "45 Kandy Rd",
		Status:          models.OrderPending,
	}
	require.NoError(t, svc.Repo.DB.Create(&legacy).Error)
	require.NoError(t, svc.Repo.DB.Model(&models.Order{}).
		Where("id = ?", legacy.ID).
		Update("products", `[{"quantity":1}]`).Error)

	rows, err := svc.ListOrders(context.Background(), admin())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.True(t, rows[0].Contact.Guest)
	assert.Equal(t, "Walk-in Guest", rows[0].Contact.Name)
	require.Len(t, rows[0].LineItems, 1)
	assert.Equal(t, UnknownProduct, rows[0].LineItems[0].Name)
	assert.EqualValues(t, 1, rows[0].LineItems[0].Quantity)
}

func TestListOrders_NonAdminForbidden(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ListOrders(context.Background(), models.Identity{Role: models.TypeUser})
	require.ErrorIs(t, err, ErrForbidden)
}
