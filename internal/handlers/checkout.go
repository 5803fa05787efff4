package handlers

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/themizzi/shopflow/internal/models"
)

// CheckoutHandler handles the cart and checkout form page
type CheckoutHandler struct {
	template *template.Template
	layout   *Layout
	catalog  models.Catalog
}

// CheckoutData represents the data passed to the checkout template
type CheckoutData struct {
	Header   Header
	Items    []models.Product
	Total    string
	Counties []models.County
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(templates fs.FS, layout *Layout, catalog models.Catalog) (*CheckoutHandler, error) {
	tmpl, err := parsePage(templates, "checkout.html")
	if err != nil {
		return nil, err
	}

	return &CheckoutHandler{
		template: tmpl,
		layout:   layout,
		catalog:  catalog,
	}, nil
}

// ServeHTTP handles the GET /cart request
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.layout.session(r)
	if !ok {
		http.Redirect(w, r, "/client/auth", http.StatusSeeOther)
		return
	}
	items := cartItems(h.catalog, sess.Cart)
	if len(items) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var total int64
	for _, p := range items {
		total += p.Price
	}

	render(w, http.StatusOK, h.template, CheckoutData{
		Header:   h.layout.header(r),
		Items:    items,
		Total:    models.FormatPrice(total, items[0].Currency),
		Counties: models.Counties,
	})
}

// cartItems resolves product IDs, skipping any no longer listed
func cartItems(catalog models.Catalog, ids []string) []models.Product {
	var items []models.Product
	for _, id := range ids {
		if p, ok := catalog.Find(id); ok {
			items = append(items, p)
		}
	}
	return items
}
