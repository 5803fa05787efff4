package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/services"
)

// LoginHandler renders the login form and opens sessions
type LoginHandler struct {
	template *template.Template
	layout   *Layout
	sessions *services.SessionStore
}

// LoginData represents the data passed to the login template
type LoginData struct {
	Header Header
	Email  string
	Error  string
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(templates fs.FS, layout *Layout, sessions *services.SessionStore) (*LoginHandler, error) {
	tmpl, err := parsePage(templates, "login.html")
	if err != nil {
		return nil, err
	}

	return &LoginHandler{
		template: tmpl,
		layout:   layout,
		sessions: sessions,
	}, nil
}

// ServeHTTP handles GET and POST /client/auth
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		render(w, http.StatusOK, h.template, LoginData{Header: h.layout.header(r)})
	case http.MethodPost:
		h.login(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LoginHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("LoginClientForm[Email]")

	token, err := h.sessions.Login(email, r.PostForm.Get("LoginClientForm[Password]"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		logrus.WithField("email", email).Warn("Rejected login")
		render(w, http.StatusUnauthorized, h.template, LoginData{
			Header: h.layout.header(r),
			Email:  email,
			Error:  "Adresa de email sau parola sunt gresite.",
		})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Error opening session")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logrus.WithField("email", email).Info("Customer logged in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler closes the current session
type LogoutHandler struct {
	sessions *services.SessionStore
}

// NewLogoutHandler creates a new logout handler
func NewLogoutHandler(sessions *services.SessionStore) *LogoutHandler {
	return &LogoutHandler{sessions: sessions}
}

// ServeHTTP handles POST /client/logout
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		h.sessions.Logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// sendJSON sends v as a JSON response
func sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Error encoding response")
	}
}
