//go:build integration
// +build integration

package repository

import (
	"errors"
	"testing"

	"github.com/themizzi/shopflow/internal/models"
	"github.com/themizzi/shopflow/internal/repository/testutil"
)

func newTestOrder(t *testing.T, county string, townID int) *models.Order {
	t.Helper()
	product, _ := models.DefaultCatalog().Find("1")
	order, err := models.NewOrder("shopper@example.com", product, models.OrderForm{
		Phone:        "0000000000",
		County:       county,
		TownID:       townID,
		Address:      "Test Address",
		DeliveryType: models.DeliveryCourier,
		PaymentType:  models.PaymentCash,
	})
	if err != nil {
		t.Fatalf("NewOrder() error = %v", err)
	}
	return order
}

func TestOrderRepository_CreateOrder_Integration(t *testing.T) {
	db := testutil.OpenTestDB(t)

	repo := NewOrderRepositoryWithDB(db)

	tests := []struct {
		name    string
		order   *models.Order
		wantErr bool
	}{
		{
			name:  "pending order",
			order: newTestOrder(t, "AB", 101),
		},
		{
			name: "placed order",
			order: func() *models.Order {
				o := newTestOrder(t, "CJ", 302)
				o.Place()
				return o
			}(),
		},
		{
			name: "duplicate reference",
			order: func() *models.Order {
				o := newTestOrder(t, "B", 201)
				o.Reference = "EVO-DUPLICATE"
				if err := repo.CreateOrder(o); err != nil {
					t.Fatalf("seed order: %v", err)
				}
				dup := newTestOrder(t, "B", 202)
				dup.Reference = o.Reference
				return dup
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateOrder(tt.order)

			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if tt.order.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set")
			}

			retrieved, err := repo.GetOrderByReference(tt.order.Reference)
			if err != nil {
				t.Fatalf("Failed to retrieve created order: %v", err)
			}
			if retrieved.ID != tt.order.ID {
				t.Errorf("ID mismatch: got %v, want %v", retrieved.ID, tt.order.ID)
			}
			if retrieved.Town != tt.order.Town {
				t.Errorf("Town mismatch: got %v, want %v", retrieved.Town, tt.order.Town)
			}
			if retrieved.Amount != tt.order.Amount {
				t.Errorf("Amount mismatch: got %v, want %v", retrieved.Amount, tt.order.Amount)
			}
			if retrieved.Status != tt.order.Status {
				t.Errorf("Status mismatch: got %v, want %v", retrieved.Status, tt.order.Status)
			}
		})
	}
}

func TestOrderRepository_GetOrderByReference_NotFound_Integration(t *testing.T) {
	db := testutil.OpenTestDB(t)

	repo := NewOrderRepositoryWithDB(db)

	_, err := repo.GetOrderByReference("EVO-MISSING")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("error = %v, want %v", err, ErrOrderNotFound)
	}
}

func TestOrderRepository_UpdateAndList_Integration(t *testing.T) {
	db := testutil.OpenTestDB(t)

	repo := NewOrderRepositoryWithDB(db)

	first := newTestOrder(t, "AB", 101)
	second := newTestOrder(t, "IS", 401)
	for _, o := range []*models.Order{first, second} {
		if err := repo.CreateOrder(o); err != nil {
			t.Fatalf("CreateOrder() error = %v", err)
		}
	}

	if err := repo.UpdateOrderStatus(first.Reference, string(models.OrderStatusCancelled)); err != nil {
		t.Fatalf("UpdateOrderStatus() error = %v", err)
	}
	if err := repo.UpdateOrderStatus("EVO-MISSING", string(models.OrderStatusPlaced)); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("UpdateOrderStatus() on missing order error = %v", err)
	}

	orders, err := repo.ListOrders()
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("ListOrders() returned %d orders, want 2", len(orders))
	}

	statuses := map[string]models.OrderStatus{}
	for _, o := range orders {
		statuses[o.Reference] = o.Status
	}
	if statuses[first.Reference] != models.OrderStatusCancelled {
		t.Errorf("first order status = %v, want cancelled", statuses[first.Reference])
	}
	if statuses[second.Reference] != models.OrderStatusPending {
		t.Errorf("second order status = %v, want pending", statuses[second.Reference])
	}
}
