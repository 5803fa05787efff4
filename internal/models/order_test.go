package models

import (
	"errors"
	"strings"
	"testing"
)

func validForm() OrderForm {
	return OrderForm{
		Phone:        "0000000000",
		County:       "AB",
		TownID:       101,
		Address:      "Test Address",
		DeliveryType: DeliveryCourier,
		PaymentType:  PaymentCash,
	}
}

func testProduct() Product {
	return Product{ID: "1", Name: "Cablu USB-C", Price: 2999, Currency: "RON"}
}

func TestNewOrder(t *testing.T) {
	tests := []struct {
		name    string
		account string
		product func(*Product)
		form    func(*OrderForm)
		wantErr error
	}{
		{
			name:    "valid order",
			account: "shopper@example.com",
		},
		{
			name:    "phone with separators",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.Phone = "+40 721-000-000" },
		},
		{
			name:    "missing account",
			account: "",
			wantErr: ErrMissingAccount,
		},
		{
			name:    "free product",
			account: "shopper@example.com",
			product: func(p *Product) { p.Price = 0 },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "short phone",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.Phone = "0721" },
			wantErr: ErrInvalidPhone,
		},
		{
			name:    "phone with letters",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.Phone = "07210000OO" },
			wantErr: ErrInvalidPhone,
		},
		{
			name:    "unknown county",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.County = "XX" },
			wantErr: ErrUnknownCounty,
		},
		{
			name:    "town from another county",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.TownID = 301 },
			wantErr: ErrUnknownTown,
		},
		{
			name:    "blank address",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.Address = "   " },
			wantErr: ErrMissingAddress,
		},
		{
			name:    "unknown delivery",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.DeliveryType = "drone" },
			wantErr: ErrInvalidDelivery,
		},
		{
			name:    "no payment",
			account: "shopper@example.com",
			form:    func(f *OrderForm) { f.PaymentType = "" },
			wantErr: ErrInvalidPayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := testProduct()
			if tt.product != nil {
				tt.product(&product)
			}
			form := validForm()
			if tt.form != nil {
				tt.form(&form)
			}

			order, err := NewOrder(tt.account, product, form)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewOrder() error = %v, wantErr %v", err, tt.wantErr)
				}
				if order != nil {
					t.Error("Expected order to be nil when error occurs")
				}
				return
			}

			if err != nil {
				t.Fatalf("NewOrder() unexpected error = %v", err)
			}
			if order.ID == "" {
				t.Error("Order ID should not be empty")
			}
			if !strings.HasPrefix(order.Reference, "EVO-") {
				t.Errorf("Reference should start with EVO-, got %s", order.Reference)
			}
			if order.Status != OrderStatusPending {
				t.Errorf("Status = %v, want %v", order.Status, OrderStatusPending)
			}
			if order.Town != "Alba Iulia" {
				t.Errorf("Town = %q, want Alba Iulia", order.Town)
			}
			if order.Amount != product.Price || order.Currency != "RON" {
				t.Errorf("Amount = %d %s, want %d RON", order.Amount, order.Currency, product.Price)
			}
			if order.CreatedAt.IsZero() || order.UpdatedAt.IsZero() {
				t.Error("Timestamps should be set")
			}
		})
	}
}

func TestNewOrder_UniqueReferences(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		order, err := NewOrder("shopper@example.com", testProduct(), validForm())
		if err != nil {
			t.Fatalf("NewOrder() error = %v", err)
		}
		if seen[order.Reference] {
			t.Fatalf("duplicate reference %s", order.Reference)
		}
		seen[order.Reference] = true
	}
}

func TestOrder_StatusTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       OrderStatus
		transition func(*Order) error
		want       OrderStatus
		wantErr    bool
	}{
		{name: "place pending", from: OrderStatusPending, transition: (*Order).Place, want: OrderStatusPlaced},
		{name: "place twice", from: OrderStatusPlaced, transition: (*Order).Place, want: OrderStatusPlaced, wantErr: true},
		{name: "place cancelled", from: OrderStatusCancelled, transition: (*Order).Place, want: OrderStatusCancelled, wantErr: true},
		{name: "cancel pending", from: OrderStatusPending, transition: (*Order).Cancel, want: OrderStatusCancelled},
		{name: "cancel placed", from: OrderStatusPlaced, transition: (*Order).Cancel, want: OrderStatusCancelled},
		{name: "cancel twice", from: OrderStatusCancelled, transition: (*Order).Cancel, want: OrderStatusCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.from}
			err := tt.transition(order)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatusTransition) {
					t.Errorf("error = %v, want %v", err, ErrInvalidStatusTransition)
				}
			} else if err != nil {
				t.Errorf("unexpected error = %v", err)
			}
			if order.Status != tt.want {
				t.Errorf("Status = %v, want %v", order.Status, tt.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{2999, "29,99 RON"},
		{100, "1,00 RON"},
		{5, "0,05 RON"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.amount, "RON"); got != tt.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestCatalogAndCounties(t *testing.T) {
	catalog := DefaultCatalog()
	if _, ok := catalog.Find("1"); !ok {
		t.Error("product 1 should be listed")
	}
	if _, ok := catalog.Find("404"); ok {
		t.Error("product 404 should not be listed")
	}

	county, ok := FindCounty("CJ")
	if !ok {
		t.Fatal("county CJ should be served")
	}
	if town, ok := county.Town(302); !ok || town.Name != "Turda" {
		t.Errorf("Town(302) = %v, %v", town, ok)
	}
	if _, ok := county.Town(101); ok {
		t.Error("town 101 belongs to Alba")
	}
}
