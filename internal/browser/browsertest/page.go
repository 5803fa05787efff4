// Package browsertest provides a scripted in-memory browser.Session for tests.
//
// Elements are registered by selector and can be made to attach or become
// visible after a delay measured on a manual Clock, fail lookups a number of
// times, or react to clicks and selections by revealing other elements or
// navigating. Every interaction is recorded.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/themizzi/shopflow/internal/browser"
)

// Interaction kinds recorded by Page
const (
	KindClick       = "click"
	KindDoubleClick = "dblclick"
	KindClear       = "clear"
	KindType        = "type"
	KindSelect      = "select"
	KindEvaluate    = "evaluate"
)

// Interaction is one recorded call on an element
type Interaction struct {
	Kind     string
	Selector browser.Selector
	Text     string
	At       time.Time
}

// Page is a simulated browser page implementing browser.Session
type Page struct {
	mu         sync.Mutex
	clock      *Clock
	url        string
	generation int
	closed     bool
	nodes      map[browser.Selector]*Node
	history    []Interaction
	visits     []string
}

var _ browser.Session = (*Page)(nil)

// NewPage creates an empty page at url
func NewPage(clock *Clock, url string) *Page {
	return &Page{
		clock: clock,
		url:   url,
		nodes: make(map[browser.Selector]*Node),
	}
}

// Node is the simulated DOM node behind a selector
type Node struct {
	page       *Page
	sel        browser.Selector
	attachAt   time.Time
	visibleAt  time.Time
	hidden     bool
	disabled   bool
	removed    bool
	lookupErrs []error
	value      string
	onClick    []func(*Page)
	onSelect   []func(*Page)
}

// Element returns the node for sel, creating an attached, visible and
// enabled one if it does not exist.
func (p *Page) Element(sel browser.Selector) *Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[sel]
	if !ok || n.removed {
		now := p.clock.Now()
		n = &Node{page: p, sel: sel, attachAt: now, visibleAt: now}
		p.nodes[sel] = n
	}
	return n
}

// GoTo changes the location and invalidates every located element
func (p *Page) GoTo(url string) {
	p.mu.Lock()
	p.url = url
	p.generation++
	p.mu.Unlock()
}

// Interactions returns a copy of the recorded calls
func (p *Page) Interactions() []Interaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Interaction(nil), p.history...)
}

// Activated reports whether sel was clicked, double-clicked, selected or
// clicked from script.
func (p *Page) Activated(sel browser.Selector) bool {
	for _, in := range p.Interactions() {
		if in.Selector != sel {
			continue
		}
		switch in.Kind {
		case KindClick, KindDoubleClick, KindSelect:
			return true
		case KindEvaluate:
			if in.Text == browser.ClickScript {
				return true
			}
		}
	}
	return false
}

// ActivatedAt returns when sel was first activated
func (p *Page) ActivatedAt(sel browser.Selector) (time.Time, bool) {
	for _, in := range p.Interactions() {
		if in.Selector == sel && in.Kind != KindClear && in.Kind != KindType {
			return in.At, true
		}
	}
	return time.Time{}, false
}

// Value returns the text typed into sel
func (p *Page) Value(sel browser.Selector) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.nodes[sel]; ok {
		return n.value
	}
	return ""
}

// Visits returns every URL passed to Navigate
func (p *Page) Visits() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visits...)
}

// Closed reports whether Close was called
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Navigate implements browser.Session
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.visits = append(p.visits, url)
	p.mu.Unlock()
	p.GoTo(url)
	return nil
}

// Find implements browser.Session
func (p *Page) Find(ctx context.Context, sel browser.Selector) (browser.Element, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.nodes[sel]
	if !ok || n.removed {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, sel)
	}
	if len(n.lookupErrs) > 0 {
		err := n.lookupErrs[0]
		n.lookupErrs = n.lookupErrs[1:]
		return nil, err
	}
	if p.clock.Now().Before(n.attachAt) {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, sel)
	}
	return &element{node: n, generation: p.generation}, nil
}

// CurrentURL implements browser.Session
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	if err := p.check(ctx); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

// Close implements browser.Session
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *Page) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrSessionClosed
	}
	return nil
}

func (p *Page) record(kind string, sel browser.Selector, text string) {
	p.history = append(p.history, Interaction{Kind: kind, Selector: sel, Text: text, At: p.clock.Now()})
}

// AttachAfter keeps the node out of the DOM until d has passed
func (n *Node) AttachAfter(d time.Duration) *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.attachAt = n.page.clock.Now().Add(d)
	if n.visibleAt.Before(n.attachAt) {
		n.visibleAt = n.attachAt
	}
	return n
}

// ShowAfter keeps the attached node invisible until d has passed
func (n *Node) ShowAfter(d time.Duration) *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.hidden = false
	n.visibleAt = n.page.clock.Now().Add(d)
	return n
}

// Hide makes the node invisible until Show or ShowAfter is called
func (n *Node) Hide() *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.hidden = true
	return n
}

// Show makes the node visible now
func (n *Node) Show() *Node {
	return n.ShowAfter(0)
}

// Disable marks the node as disabled
func (n *Node) Disable() *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.disabled = true
	return n
}

// Remove detaches the node; handles to it go stale
func (n *Node) Remove() *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.removed = true
	return n
}

// FailLookups makes the next Find calls for the node return errs in order
func (n *Node) FailLookups(errs ...error) *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.lookupErrs = append(n.lookupErrs, errs...)
	return n
}

// OnClick registers a reaction to pointer or script clicks
func (n *Node) OnClick(fn func(*Page)) *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.onClick = append(n.onClick, fn)
	return n
}

// OnSelect registers a reaction to the node being selected
func (n *Node) OnSelect(fn func(*Page)) *Node {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.onSelect = append(n.onSelect, fn)
	return n
}

type element struct {
	node       *Node
	generation int
}

func (e *element) Selector() browser.Selector { return e.node.sel }

// begin checks the handle is still usable and records the interaction.
func (e *element) begin(ctx context.Context, kind, text string, needVisible bool) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := e.node.page
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, browser.ErrSessionClosed
	}
	if e.generation != p.generation || e.node.removed || p.nodes[e.node.sel] != e.node {
		return nil, fmt.Errorf("%w: %s", browser.ErrStaleElement, e.node.sel)
	}
	if needVisible && !e.node.visibleLocked(p.clock.Now()) {
		return nil, fmt.Errorf("%w: %s is not visible", browser.ErrNotInteractable, e.node.sel)
	}
	if needVisible && e.node.disabled {
		return nil, fmt.Errorf("%w: %s is disabled", browser.ErrNotInteractable, e.node.sel)
	}
	if kind != "" {
		p.record(kind, e.node.sel, text)
	}
	return p, nil
}

func (n *Node) visibleLocked(now time.Time) bool {
	return !n.hidden && !now.Before(n.visibleAt) && !now.Before(n.attachAt)
}

func (e *element) react(p *Page, fns func() []func(*Page)) {
	p.mu.Lock()
	reactions := append(([]func(*Page))(nil), fns()...)
	p.mu.Unlock()
	for _, fn := range reactions {
		fn(p)
	}
}

func (e *element) Click(ctx context.Context) error {
	p, err := e.begin(ctx, KindClick, "", true)
	if err != nil {
		return err
	}
	e.react(p, func() []func(*Page) { return e.node.onClick })
	return nil
}

func (e *element) DoubleClick(ctx context.Context) error {
	p, err := e.begin(ctx, KindDoubleClick, "", true)
	if err != nil {
		return err
	}
	e.react(p, func() []func(*Page) { return e.node.onClick })
	return nil
}

func (e *element) Clear(ctx context.Context) error {
	p, err := e.begin(ctx, KindClear, "", true)
	if err != nil {
		return err
	}
	p.mu.Lock()
	e.node.value = ""
	p.mu.Unlock()
	return nil
}

func (e *element) Type(ctx context.Context, text string) error {
	p, err := e.begin(ctx, KindType, text, true)
	if err != nil {
		return err
	}
	p.mu.Lock()
	e.node.value += text
	p.mu.Unlock()
	return nil
}

func (e *element) Select(ctx context.Context) error {
	p, err := e.begin(ctx, KindSelect, "", false)
	if err != nil {
		return err
	}
	e.react(p, func() []func(*Page) { return e.node.onSelect })
	return nil
}

func (e *element) Evaluate(ctx context.Context, script string) (any, error) {
	p, err := e.begin(ctx, KindEvaluate, script, false)
	if err != nil {
		return nil, err
	}
	if script == browser.ClickScript {
		e.react(p, func() []func(*Page) { return e.node.onClick })
	}
	return nil, nil
}

func (e *element) IsVisible(ctx context.Context) (bool, error) {
	p, err := e.begin(ctx, "", "", false)
	if err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return e.node.visibleLocked(p.clock.Now()), nil
}

func (e *element) IsEnabled(ctx context.Context) (bool, error) {
	p, err := e.begin(ctx, "", "", false)
	if err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return !e.node.disabled, nil
}
