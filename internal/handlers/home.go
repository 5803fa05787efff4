package handlers

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/themizzi/shopflow/internal/models"
)

// HomeHandler renders the product listing
type HomeHandler struct {
	template *template.Template
	layout   *Layout
	catalog  models.Catalog
}

// HomeData represents the data passed to the home template
type HomeData struct {
	Header   Header
	Products models.Catalog
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(templates fs.FS, layout *Layout, catalog models.Catalog) (*HomeHandler, error) {
	tmpl, err := parsePage(templates, "home.html")
	if err != nil {
		return nil, err
	}

	return &HomeHandler{
		template: tmpl,
		layout:   layout,
		catalog:  catalog,
	}, nil
}

// ServeHTTP handles the GET / request
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	render(w, http.StatusOK, h.template, HomeData{
		Header:   h.layout.header(r),
		Products: h.catalog,
	})
}
