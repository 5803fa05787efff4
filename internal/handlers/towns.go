package handlers

import (
	"net/http"
	"time"

	"github.com/themizzi/shopflow/internal/models"
)

// TownsHandler lists a county's towns. Answers are delayed to reproduce the
// dependent dropdown filling in after the county is chosen.
type TownsHandler struct {
	delay time.Duration
}

// NewTownsHandler creates a new towns handler
func NewTownsHandler(delay time.Duration) *TownsHandler {
	return &TownsHandler{delay: delay}
}

// ServeHTTP handles the GET /api/towns?county= request
func (h *TownsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	county, ok := models.FindCounty(r.URL.Query().Get("county"))
	if !ok {
		sendErrorResponse(w, "Unknown county", http.StatusBadRequest)
		return
	}

	if h.delay > 0 {
		t := time.NewTimer(h.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-r.Context().Done():
			return
		}
	}

	sendJSON(w, county.Towns)
}
