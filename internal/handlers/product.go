package handlers

import (
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/themizzi/shopflow/internal/models"
)

// ProductHandler handles the product page requests
type ProductHandler struct {
	template    *template.Template
	layout      *Layout
	catalog     models.Catalog
	cartDelayMs int64
}

// ProductData represents the data passed to the product template
type ProductData struct {
	Header      Header
	Product     models.Product
	CartDelayMs int64
}

// NewProductHandler creates a new ProductHandler. The add-to-cart control
// appears cartDelay after the page loads.
func NewProductHandler(templates fs.FS, layout *Layout, catalog models.Catalog, cartDelay time.Duration) (*ProductHandler, error) {
	tmpl, err := parsePage(templates, "product.html")
	if err != nil {
		return nil, err
	}

	return &ProductHandler{
		template:    tmpl,
		layout:      layout,
		catalog:     catalog,
		cartDelayMs: cartDelay.Milliseconds(),
	}, nil
}

// ServeHTTP handles the GET /product/{id} request
func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/product/")
	product, ok := h.catalog.Find(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	render(w, http.StatusOK, h.template, ProductData{
		Header:      h.layout.header(r),
		Product:     product,
		CartDelayMs: h.cartDelayMs,
	})
}
