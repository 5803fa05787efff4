package handlers

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/models"
	"github.com/themizzi/shopflow/internal/services"
)

// ConfirmationHandler handles the order success page
type ConfirmationHandler struct {
	template *template.Template
	layout   *Layout
	orders   services.OrderService
}

// ConfirmationData represents the data for the success template
type ConfirmationData struct {
	Header Header
	Order  *models.Order
}

// NewConfirmationHandler creates a new confirmation handler
func NewConfirmationHandler(templates fs.FS, layout *Layout, orders services.OrderService) (*ConfirmationHandler, error) {
	tmpl, err := parsePage(templates, "success.html")
	if err != nil {
		return nil, err
	}

	return &ConfirmationHandler{
		template: tmpl,
		layout:   layout,
		orders:   orders,
	}, nil
}

// ServeHTTP handles the GET /success request. The page shows the session's
// most recent order; without one the visitor is sent back to the shop.
func (h *ConfirmationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.layout.session(r)
	if !ok || sess.LastOrder == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	order, err := h.orders.GetOrderByReference(sess.LastOrder)
	if err != nil {
		logrus.WithError(err).WithField("reference", sess.LastOrder).Error("Error loading order")
		http.Error(w, "Failed to load order", http.StatusInternalServerError)
		return
	}

	render(w, http.StatusOK, h.template, ConfirmationData{
		Header: h.layout.header(r),
		Order:  order,
	})
}
