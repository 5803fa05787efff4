package handlers

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/models"
	"github.com/themizzi/shopflow/internal/services"
)

// AccountHandler shows the logged in customer's details and orders
type AccountHandler struct {
	template *template.Template
	layout   *Layout
	orders   services.OrderService
}

// AccountData represents the data passed to the account template
type AccountData struct {
	Header Header
	Orders []*models.Order
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(templates fs.FS, layout *Layout, orders services.OrderService) (*AccountHandler, error) {
	tmpl, err := parsePage(templates, "account.html")
	if err != nil {
		return nil, err
	}

	return &AccountHandler{
		template: tmpl,
		layout:   layout,
		orders:   orders,
	}, nil
}

// ServeHTTP handles the GET /client/details request
func (h *AccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.layout.session(r)
	if !ok {
		http.Redirect(w, r, "/client/auth", http.StatusSeeOther)
		return
	}

	all, err := h.orders.ListOrders()
	if err != nil {
		logrus.WithError(err).Error("Error listing orders")
		http.Error(w, "Failed to load orders", http.StatusInternalServerError)
		return
	}
	var mine []*models.Order
	for _, o := range all {
		if o.AccountEmail == sess.Email {
			mine = append(mine, o)
		}
	}

	render(w, http.StatusOK, h.template, AccountData{
		Header: h.layout.header(r),
		Orders: mine,
	})
}
