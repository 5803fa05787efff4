package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/services"
)

// Templates holds the storefront's page templates
//
//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var static embed.FS

// Static serves the storefront's stylesheet and product images
func Static() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// parsePage parses the shared layout together with one page template
func parsePage(fsys fs.FS, page string) (*template.Template, error) {
	tmpl, err := template.ParseFS(fsys, "templates/layout.html", "templates/"+page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
	}
	return tmpl, nil
}

// Header is the data every page's layout needs
type Header struct {
	LoggedIn            bool
	Email               string
	CartSize            int
	ShowCookieBanner    bool
	ShowNotification    bool
	NotificationDelayMs int64
}

// Layout builds the per-request Header from the session cookie and the
// interstitial cookies set in the browser.
type Layout struct {
	sessions          *services.SessionStore
	notificationDelay time.Duration
}

// NewLayout creates a layout reading sessions from store
func NewLayout(store *services.SessionStore, notificationDelay time.Duration) *Layout {
	return &Layout{sessions: store, notificationDelay: notificationDelay}
}

// Cookies set by the storefront and its pages
const (
	SessionCookie      = "shopflow_session"
	CookieConsent      = "gdpr_consent"
	NotificationDenied = "push_denied"
)

func (l *Layout) header(r *http.Request) Header {
	h := Header{
		ShowCookieBanner:    !hasCookie(r, CookieConsent),
		ShowNotification:    !hasCookie(r, NotificationDenied),
		NotificationDelayMs: l.notificationDelay.Milliseconds(),
	}
	if sess, ok := l.session(r); ok {
		h.LoggedIn = true
		h.Email = sess.Email
		h.CartSize = len(sess.Cart)
	}
	return h
}

func (l *Layout) session(r *http.Request) (services.Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return services.Session{}, false
	}
	return l.sessions.Get(c.Value)
}

func hasCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}

// render executes the layout with data
func render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logrus.WithError(err).Error("Error rendering template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
