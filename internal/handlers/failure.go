package handlers

import (
	"html/template"
	"io/fs"
	"net/http"
)

// FailureHandler handles the order failure page
type FailureHandler struct {
	template *template.Template
	layout   *Layout
}

// NewFailureHandler creates a new failure handler
func NewFailureHandler(templates fs.FS, layout *Layout) (*FailureHandler, error) {
	tmpl, err := parsePage(templates, "failure.html")
	if err != nil {
		return nil, err
	}

	return &FailureHandler{
		template: tmpl,
		layout:   layout,
	}, nil
}

// FailureData represents the data for the failure template
type FailureData struct {
	Header  Header
	Reason  string
	Message string
}

// ServeHTTP handles the failure page request
func (h *FailureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reason := r.URL.Query().Get("reason")
	render(w, http.StatusOK, h.template, FailureData{
		Header:  h.layout.header(r),
		Reason:  reason,
		Message: getFailureMessage(reason),
	})
}

// getFailureMessage returns a user-friendly message based on the failure reason
func getFailureMessage(reason string) string {
	switch reason {
	case "InvalidPhone":
		return "Numarul de telefon trebuie sa aiba intre 10 si 15 cifre."
	case "InvalidLocation":
		return "Alege judetul si localitatea de livrare."
	case "MissingAddress":
		return "Completeaza adresa de livrare."
	case "InvalidOptions":
		return "Alege modalitatea de livrare si de plata."
	case "EmptyCart":
		return "Cosul tau este gol."
	default:
		return "Comanda nu a putut fi procesata. Te rugam sa incerci din nou."
	}
}
