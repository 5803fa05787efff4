package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/models"
	"github.com/themizzi/shopflow/internal/services"
)

// OrderHandler places the order submitted from the checkout form
type OrderHandler struct {
	layout   *Layout
	sessions *services.SessionStore
	catalog  models.Catalog
	orders   services.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(layout *Layout, sessions *services.SessionStore, catalog models.Catalog, orders services.OrderService) *OrderHandler {
	return &OrderHandler{
		layout:   layout,
		sessions: sessions,
		catalog:  catalog,
		orders:   orders,
	}
}

// ServeHTTP handles the POST /order request
func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.layout.session(r)
	if !ok {
		http.Redirect(w, r, "/client/auth", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := orderForm(r.PostForm)

	items := cartItems(h.catalog, sess.Cart)
	if len(items) == 0 {
		redirectToFailure(w, r, "EmptyCart")
		return
	}

	var placed []string
	for _, item := range items {
		order, err := h.orders.PlaceOrder(sess.Email, item, form)
		if err != nil {
			logrus.WithError(err).WithField("email", sess.Email).Warn("Order rejected")
			redirectToFailure(w, r, failureReason(err))
			return
		}
		placed = append(placed, order.Reference)
		logrus.WithFields(logrus.Fields{
			"reference": order.Reference,
			"product":   order.ProductName,
			"town":      order.Town,
		}).Info("Order placed")
	}

	if err := h.sessions.CompleteOrder(sess.Token, placed[len(placed)-1]); err != nil {
		logrus.WithError(err).Error("Error completing order")
	}
	http.Redirect(w, r, "/success", http.StatusSeeOther)
}

// orderForm reads the checkout form's fields
func orderForm(values url.Values) models.OrderForm {
	townID, _ := strconv.Atoi(values.Get("PartnerAddress[CityId]"))
	return models.OrderForm{
		Phone:        values.Get("Client[Phone]"),
		County:       values.Get("PartnerAddress[county]"),
		TownID:       townID,
		Address:      values.Get("PartnerAddress[Address]"),
		DeliveryType: values.Get("SalesOrder[DeliveryTypeId]"),
		PaymentType:  values.Get("SalesOrder[PaymentTypeId]"),
	}
}

// failureReason maps an order validation error to the failure page's reason code
func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidPhone):
		return "InvalidPhone"
	case errors.Is(err, models.ErrUnknownCounty), errors.Is(err, models.ErrUnknownTown):
		return "InvalidLocation"
	case errors.Is(err, models.ErrMissingAddress):
		return "MissingAddress"
	case errors.Is(err, models.ErrInvalidDelivery), errors.Is(err, models.ErrInvalidPayment):
		return "InvalidOptions"
	default:
		return "Error"
	}
}

func redirectToFailure(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, "/order/failed?reason="+url.QueryEscape(reason), http.StatusSeeOther)
}
