package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/shopflow/internal/models"
	"github.com/themizzi/shopflow/internal/repository"
	"github.com/themizzi/shopflow/internal/services"
)

const (
	testEmail    = "shopper@example.com"
	testPassword = "JUnit5"
)

// testSite wires every handler against in-memory stores
type testSite struct {
	sessions *services.SessionStore
	repo     *repository.MemoryOrderRepository
	orders   services.OrderService
	catalog  models.Catalog
	layout   *Layout

	home         *HomeHandler
	product      *ProductHandler
	login        *LoginHandler
	account      *AccountHandler
	cart         *CartHandler
	checkout     *CheckoutHandler
	towns        *TownsHandler
	order        *OrderHandler
	confirmation *ConfirmationHandler
	failure      *FailureHandler
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	s := &testSite{
		sessions: services.NewSessionStore(services.Account{Email: testEmail, Password: testPassword}),
		repo:     repository.NewMemoryOrderRepository(),
		catalog:  models.DefaultCatalog(),
	}
	s.orders = services.NewOrderService(s.repo)
	s.layout = NewLayout(s.sessions, time.Second)

	var err error
	s.home, err = NewHomeHandler(Templates, s.layout, s.catalog)
	require.NoError(t, err)
	s.product, err = NewProductHandler(Templates, s.layout, s.catalog, 300*time.Millisecond)
	require.NoError(t, err)
	s.login, err = NewLoginHandler(Templates, s.layout, s.sessions)
	require.NoError(t, err)
	s.account, err = NewAccountHandler(Templates, s.layout, s.orders)
	require.NoError(t, err)
	s.checkout, err = NewCheckoutHandler(Templates, s.layout, s.catalog)
	require.NoError(t, err)
	s.confirmation, err = NewConfirmationHandler(Templates, s.layout, s.orders)
	require.NoError(t, err)
	s.failure, err = NewFailureHandler(Templates, s.layout)
	require.NoError(t, err)
	s.cart = NewCartHandler(s.layout, s.sessions, s.catalog)
	s.towns = NewTownsHandler(0)
	s.order = NewOrderHandler(s.layout, s.sessions, s.catalog, s.orders)
	return s
}

// loggedIn opens a session and returns its cookie
func (s *testSite) loggedIn(t *testing.T, cart ...string) *http.Cookie {
	t.Helper()
	token, err := s.sessions.Login(testEmail, testPassword)
	require.NoError(t, err)
	for _, id := range cart {
		_, err := s.sessions.AddToCart(token, id)
		require.NoError(t, err)
	}
	return &http.Cookie{Name: SessionCookie, Value: token}
}

func serve(h http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}
