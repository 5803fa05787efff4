package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents valid order states
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Delivery and payment options offered at checkout
const (
	DeliveryCourier = "courier"
	DeliveryPickup  = "pickup"
	PaymentCash     = "cash"
	PaymentCard     = "card"
)

// OrderForm holds the values submitted from the checkout form
type OrderForm struct {
	Phone        string
	County       string
	TownID       int
	Address      string
	DeliveryType string
	PaymentType  string
}

// Order represents a customer order with business logic
type Order struct {
	ID           string
	Reference    string
	AccountEmail string
	ProductID    string
	ProductName  string
	Amount       int64
	Currency     string
	Phone        string
	County       string
	Town         string
	Address      string
	DeliveryType string
	PaymentType  string
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Domain errors
var (
	ErrMissingAccount          = errors.New("order needs a logged in account")
	ErrInvalidAmount           = errors.New("order amount must be positive")
	ErrInvalidPhone            = errors.New("phone number must have between 10 and 15 digits")
	ErrUnknownCounty           = errors.New("county is not served")
	ErrUnknownTown             = errors.New("town does not belong to the county")
	ErrMissingAddress          = errors.New("address cannot be empty")
	ErrInvalidDelivery         = errors.New("delivery type is not offered")
	ErrInvalidPayment          = errors.New("payment type is not offered")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// NewOrder creates a pending order for one product with validation
func NewOrder(account string, product Product, form OrderForm) (*Order, error) {
	if account == "" {
		return nil, ErrMissingAccount
	}
	if product.Price <= 0 {
		return nil, ErrInvalidAmount
	}
	town, err := validateOrderForm(form)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id := uuid.New()
	return &Order{
		ID:           id.String(),
		Reference:    "EVO-" + strings.ToUpper(id.String()[:8]),
		AccountEmail: account,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Amount:       product.Price,
		Currency:     product.Currency,
		Phone:        form.Phone,
		County:       form.County,
		Town:         town.Name,
		Address:      strings.TrimSpace(form.Address),
		DeliveryType: form.DeliveryType,
		PaymentType:  form.PaymentType,
		Status:       OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// validateOrderForm checks the checkout form and returns the chosen town
func validateOrderForm(form OrderForm) (Town, error) {
	digits := 0
	for _, r := range form.Phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '+' || r == '-':
		default:
			return Town{}, ErrInvalidPhone
		}
	}
	if digits < 10 || digits > 15 {
		return Town{}, ErrInvalidPhone
	}

	county, ok := FindCounty(form.County)
	if !ok {
		return Town{}, ErrUnknownCounty
	}
	town, ok := county.Town(form.TownID)
	if !ok {
		return Town{}, ErrUnknownTown
	}
	if strings.TrimSpace(form.Address) == "" {
		return Town{}, ErrMissingAddress
	}
	if form.DeliveryType != DeliveryCourier && form.DeliveryType != DeliveryPickup {
		return Town{}, ErrInvalidDelivery
	}
	if form.PaymentType != PaymentCash && form.PaymentType != PaymentCard {
		return Town{}, ErrInvalidPayment
	}
	return town, nil
}

// Place marks the order as placed
func (o *Order) Place() error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: cannot place order with status %s", ErrInvalidStatusTransition, o.Status)
	}
	o.Status = OrderStatusPlaced
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel marks the order as cancelled
func (o *Order) Cancel() error {
	if o.Status == OrderStatusCancelled {
		return fmt.Errorf("%w: order is already cancelled", ErrInvalidStatusTransition)
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// IsPlaced returns true if the order was placed
func (o *Order) IsPlaced() bool {
	return o.Status == OrderStatusPlaced
}

// GetFormattedAmount returns the amount formatted with currency
func (o *Order) GetFormattedAmount() string {
	return FormatPrice(o.Amount, o.Currency)
}

// FormatPrice formats an amount in minor units
func FormatPrice(amount int64, currency string) string {
	return fmt.Sprintf("%d,%02d %s", amount/100, amount%100, currency)
}
