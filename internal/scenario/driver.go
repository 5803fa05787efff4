// Package scenario drives the login and checkout flow against a shop.
//
// The flow is linear: each phase takes the Run produced by the previous one,
// acts on its browser session and advances its State. Nothing is retried
// except through the bounded poll waits; the first error ends the run.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/browser"
	"github.com/themizzi/shopflow/internal/config"
)

// ErrNoSession is returned by phases that run before the session is started
var ErrNoSession = errors.New("no browser session")

// Launcher opens a browser session
type Launcher func(ctx context.Context) (browser.Session, error)

// Driver executes the scenario phases with one configuration
type Driver struct {
	cfg    config.Scenario
	launch Launcher
	clock  browser.Clock
	log    logrus.FieldLogger
}

// Option customises a Driver
type Option func(*Driver)

// WithClock sets the clock used by waits and timings
func WithClock(c browser.Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) { d.log = l }
}

// NewDriver creates a driver for cfg that opens sessions with launch
func NewDriver(cfg config.Scenario, launch Launcher, opts ...Option) *Driver {
	d := &Driver{cfg: cfg, launch: launch, clock: browser.RealClock()}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.log = l
	}
	return d
}

// Run is the state passed from phase to phase
type Run struct {
	ID      string
	Session browser.Session
	State   State

	AccountEnabled bool
	// SubmitLocated records that the order submission control was found. It is never activated.
	SubmitLocated bool
	FinalURL      string
}

// NewRun returns an unauthenticated run without a session
func (d *Driver) NewRun() *Run {
	return &Run{ID: uuid.NewString(), State: StateUnauthenticated}
}

// StartSession opens the browser and loads the shop's home page
func (d *Driver) StartSession(ctx context.Context, r *Run) error {
	if r.Session != nil {
		return errors.New("session already started")
	}
	s, err := d.launch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	r.Session = s

	if err := s.Navigate(ctx, d.cfg.BaseURL); err != nil {
		return err
	}
	d.log.WithFields(logrus.Fields{"run_id": r.ID, "url": d.cfg.BaseURL}).Info("Session started")
	return nil
}

// DismissInterstitials denies the push notification prompt and accepts cookies
func (d *Driver) DismissInterstitials(ctx context.Context, r *Run) error {
	if err := d.ready(r, StateUnauthenticated); err != nil {
		return err
	}

	interstitials := []struct {
		name string
		sel  browser.Selector
	}{
		{"notification prompt", d.cfg.Selectors.NotificationDeny},
		{"cookie banner", d.cfg.Selectors.CookieAccept},
	}
	for _, it := range interstitials {
		log := d.log.WithFields(logrus.Fields{"interstitial": it.name, "selector": it.sel.String()})

		el, err := d.waitVisible(ctx, r, it.sel, d.cfg.Interstitials.Timeout)
		if errors.Is(err, browser.ErrTimeout) && d.cfg.Interstitials.Policy == config.InterstitialsOptional {
			log.Warn("Interstitial not shown, continuing")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to dismiss %s: %w", it.name, err)
		}
		if err := el.Click(ctx); err != nil {
			return fmt.Errorf("failed to dismiss %s: %w", it.name, err)
		}
		log.Info("Interstitial dismissed")
	}
	return nil
}

// OpenLogin opens the account menu and follows the login link
func (d *Driver) OpenLogin(ctx context.Context, r *Run) error {
	if err := d.ready(r, StateUnauthenticated); err != nil {
		return err
	}

	header, err := d.find(ctx, r, d.cfg.Selectors.AccountHeader)
	if err != nil {
		return err
	}
	if err := header.Click(ctx); err != nil {
		return err
	}

	link, err := d.find(ctx, r, d.cfg.Selectors.LoginLink)
	if err != nil {
		return err
	}
	return link.DoubleClick(ctx)
}

// Authenticate submits the credentials and checks the account link is enabled
func (d *Driver) Authenticate(ctx context.Context, r *Run) error {
	if err := d.ready(r, StateUnauthenticated); err != nil {
		return err
	}
	sel := d.cfg.Selectors

	if err := d.fill(ctx, r, sel.Email, d.cfg.Credentials.Email); err != nil {
		return err
	}
	if err := d.fill(ctx, r, sel.Password, d.cfg.Credentials.Password); err != nil {
		return err
	}
	submit, err := d.find(ctx, r, sel.LoginSubmit)
	if err != nil {
		return err
	}
	if err := submit.Click(ctx); err != nil {
		return err
	}

	account, err := d.find(ctx, r, sel.AccountLink)
	if err != nil {
		return fmt.Errorf("account link missing after login: %w", err)
	}
	enabled, err := account.IsEnabled(ctx)
	if err != nil {
		return err
	}
	r.AccountEnabled = enabled
	if !enabled {
		return &AssertionError{
			Step:     "authenticate",
			Message:  "account link is not enabled after login",
			Expected: true,
			Actual:   false,
		}
	}

	d.log.WithField("run_id", r.ID).Info("Authenticated")
	return r.State.Transition(StateAuthenticated)
}

// AddItemToCart opens the first product and adds it to the cart
func (d *Driver) AddItemToCart(ctx context.Context, r *Run) error {
	if err := d.ready(r, StateAuthenticated); err != nil {
		return err
	}
	sel := d.cfg.Selectors

	tile, err := d.find(ctx, r, sel.ProductTile)
	if err != nil {
		return err
	}
	// the tile may be covered by overlays, so it is activated from script
	if _, err := tile.Evaluate(ctx, browser.ClickScript); err != nil {
		return err
	}

	for _, s := range []browser.Selector{sel.AddToCart, sel.ViewCart} {
		el, err := d.waitVisible(ctx, r, s, d.cfg.Wait.Timeout)
		if err != nil {
			return err
		}
		if err := el.Click(ctx); err != nil {
			return err
		}
	}

	d.log.WithField("run_id", r.ID).Info("Item added to cart")
	return r.State.Transition(StateCartPopulated)
}

// PlaceOrder fills the checkout form. The submission control is located
// but never activated, so no real order is ever placed.
func (d *Driver) PlaceOrder(ctx context.Context, r *Run) error {
	if err := d.ready(r, StateCartPopulated); err != nil {
		return err
	}
	sel := d.cfg.Selectors

	if err := d.fill(ctx, r, sel.Phone, d.cfg.Order.Phone); err != nil {
		return err
	}

	county, err := d.find(ctx, r, sel.County)
	if err != nil {
		return err
	}
	if err := county.Select(ctx); err != nil {
		return err
	}

	// towns are loaded once a county is chosen
	town, err := d.waitVisible(ctx, r, sel.Town, d.cfg.Wait.Timeout)
	if err != nil {
		return err
	}
	if err := town.Select(ctx); err != nil {
		return err
	}

	if err := d.fill(ctx, r, sel.Address, d.cfg.Order.Address); err != nil {
		return err
	}

	for _, s := range []browser.Selector{sel.Delivery, sel.Payment} {
		el, err := d.find(ctx, r, s)
		if err != nil {
			return err
		}
		if _, err := el.Evaluate(ctx, browser.ClickScript); err != nil {
			return err
		}
	}

	if _, err := d.find(ctx, r, sel.SubmitOrder); err != nil {
		return err
	}
	r.SubmitLocated = true
	d.log.WithFields(logrus.Fields{
		"run_id":   r.ID,
		"selector": sel.SubmitOrder.String(),
	}).Warn("Order submission control located but not activated")

	return r.State.Transition(StateCheckoutFormFilled)
}

// VerifyOutcome checks the browser landed on the order success page
func (d *Driver) VerifyOutcome(ctx context.Context, r *Run) error {
	if err := d.ready(r, StateCheckoutFormFilled); err != nil {
		return err
	}
	current, err := r.Session.CurrentURL(ctx)
	if err != nil {
		return err
	}
	r.FinalURL = current
	if err := r.State.Transition(StateOrderNotSubmitted); err != nil {
		return err
	}

	expected := d.cfg.SuccessURL()
	if current != expected {
		return &AssertionError{
			Step:     "verify outcome",
			Message:  "Your order was not placed.",
			Expected: expected,
			Actual:   current,
		}
	}
	return nil
}

func (d *Driver) ready(r *Run, want State) error {
	if r.Session == nil {
		return ErrNoSession
	}
	return r.State.Require(want)
}

func (d *Driver) find(ctx context.Context, r *Run, sel browser.Selector) (browser.Element, error) {
	if r.Session == nil {
		return nil, ErrNoSession
	}
	return r.Session.Find(ctx, sel)
}

func (d *Driver) fill(ctx context.Context, r *Run, sel browser.Selector, text string) error {
	el, err := d.find(ctx, r, sel)
	if err != nil {
		return err
	}
	if err := el.Clear(ctx); err != nil {
		return err
	}
	return el.Type(ctx, text)
}

func (d *Driver) waitVisible(ctx context.Context, r *Run, sel browser.Selector, timeout time.Duration) (browser.Element, error) {
	w := d.cfg.WaitFor(timeout)
	w.Clock = d.clock
	w.Logger = d.log.WithField("run_id", r.ID)
	return w.UntilVisible(ctx, r.Session, sel)
}
