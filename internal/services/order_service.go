package services

import (
	"fmt"

	"github.com/themizzi/shopflow/internal/models"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	CreateOrder(order *models.Order) error
	GetOrderByReference(reference string) (*models.Order, error)
	ListOrders() ([]*models.Order, error)
	UpdateOrderStatus(reference, status string) error
}

// OrderService handles order business logic
type OrderService interface {
	PlaceOrder(account string, product models.Product, form models.OrderForm) (*models.Order, error)
	GetOrderByReference(reference string) (*models.Order, error)
	ListOrders() ([]*models.Order, error)
	CancelOrder(reference string) error
}

// OrderServiceImpl implements OrderService
type OrderServiceImpl struct {
	orderRepo OrderRepository
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo OrderRepository) OrderService {
	return &OrderServiceImpl{
		orderRepo: orderRepo,
	}
}

// PlaceOrder validates the checkout form and stores a placed order
func (s *OrderServiceImpl) PlaceOrder(account string, product models.Product, form models.OrderForm) (*models.Order, error) {
	order, err := models.NewOrder(account, product, form)
	if err != nil {
		return nil, fmt.Errorf("invalid order: %w", err)
	}
	if err := order.Place(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// GetOrderByReference retrieves an order by its reference
func (s *OrderServiceImpl) GetOrderByReference(reference string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByReference(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListOrders returns every stored order
func (s *OrderServiceImpl) ListOrders() ([]*models.Order, error) {
	orders, err := s.orderRepo.ListOrders()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// CancelOrder cancels a stored order
func (s *OrderServiceImpl) CancelOrder(reference string) error {
	order, err := s.orderRepo.GetOrderByReference(reference)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	if err := s.orderRepo.UpdateOrderStatus(reference, string(order.Status)); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}
