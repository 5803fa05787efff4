package services

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownSession     = errors.New("session not found")
)

// Account is the single customer account the storefront accepts
type Account struct {
	Email    string
	Password string
}

// Session is a logged in customer's state
type Session struct {
	Token string
	Email string
	// Cart holds product IDs in the order they were added.
	Cart []string
	// LastOrder is the reference of the most recent order placed in this session.
	LastOrder string
}

// SessionStore keeps logged in sessions in memory, keyed by cookie token
type SessionStore struct {
	mu       sync.Mutex
	account  Account
	sessions map[string]*Session
}

// NewSessionStore creates a store that authenticates against account
func NewSessionStore(account Account) *SessionStore {
	return &SessionStore{
		account:  account,
		sessions: make(map[string]*Session),
	}
}

// Login checks the credentials and opens a session
func (s *SessionStore) Login(email, password string) (string, error) {
	emailOK := strings.EqualFold(strings.TrimSpace(email), s.account.Email)
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.account.Password)) == 1
	if !emailOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = &Session{Token: token, Email: s.account.Email}
	s.mu.Unlock()
	return token, nil
}

// Get returns a copy of the session for token
func (s *SessionStore) Get(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, false
	}
	out := *sess
	out.Cart = append([]string(nil), sess.Cart...)
	return out, true
}

// AddToCart appends a product to the session's cart and returns the cart size
func (s *SessionStore) AddToCart(token, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, ErrUnknownSession
	}
	sess.Cart = append(sess.Cart, productID)
	return len(sess.Cart), nil
}

// CompleteOrder empties the cart and remembers the placed order
func (s *SessionStore) CompleteOrder(token, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return ErrUnknownSession
	}
	sess.Cart = nil
	sess.LastOrder = reference
	return nil
}

// Logout closes the session
func (s *SessionStore) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
