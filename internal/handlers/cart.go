package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/models"
	"github.com/themizzi/shopflow/internal/services"
)

// CartHandler adds products to the session's cart
type CartHandler struct {
	layout   *Layout
	sessions *services.SessionStore
	catalog  models.Catalog
}

// CartResponse is returned after a product is added
type CartResponse struct {
	ProductID string `json:"productId"`
	CartSize  int    `json:"cartSize"`
}

// NewCartHandler creates a new cart handler
func NewCartHandler(layout *Layout, sessions *services.SessionStore, catalog models.Catalog) *CartHandler {
	return &CartHandler{
		layout:   layout,
		sessions: sessions,
		catalog:  catalog,
	}
}

// ServeHTTP handles the POST /cart/add request
func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.layout.session(r)
	if !ok {
		sendErrorResponse(w, "Login required", http.StatusUnauthorized)
		return
	}

	productID := r.FormValue("product_id")
	if _, ok := h.catalog.Find(productID); !ok {
		sendErrorResponse(w, "Unknown product", http.StatusNotFound)
		return
	}

	size, err := h.sessions.AddToCart(sess.Token, productID)
	if errors.Is(err, services.ErrUnknownSession) {
		sendErrorResponse(w, "Login required", http.StatusUnauthorized)
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Error adding to cart")
		sendErrorResponse(w, "Failed to add product", http.StatusInternalServerError)
		return
	}

	logrus.WithFields(logrus.Fields{"product_id": productID, "cart_size": size}).Info("Product added to cart")
	sendJSON(w, CartResponse{ProductID: productID, CartSize: size})
}
