package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// By names the strategy used to locate an element
type By string

// Locator strategies
const (
	ByID    By = "id"
	ByXPath By = "xpath"
	ByName  By = "name"
	ByCSS   By = "css"
)

// Selector identifies an element on the page, e.g. id=Client_Phone or xpath=//a[@class='cart']
type Selector struct {
	By    By
	Value string
}

// ID returns a selector matching the element with the given id attribute
func ID(id string) Selector { return Selector{By: ByID, Value: id} }

// XPath returns a selector matching a structural path expression
func XPath(expr string) Selector { return Selector{By: ByXPath, Value: expr} }

// Name returns a selector matching the element with the given name attribute
func Name(name string) Selector { return Selector{By: ByName, Value: name} }

// CSS returns a selector matching a CSS expression
func CSS(expr string) Selector { return Selector{By: ByCSS, Value: expr} }

// ParseSelector parses the by=value text form. A bare path starting with "/"
// or "(" is taken as XPath.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("selector cannot be empty")
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(") {
		return XPath(s), nil
	}

	by, value, ok := strings.Cut(s, "=")
	if !ok {
		return Selector{}, fmt.Errorf("selector %q must have the form by=value", s)
	}
	if value == "" {
		return Selector{}, fmt.Errorf("selector %q has an empty value", s)
	}

	switch By(by) {
	case ByID, ByXPath, ByName, ByCSS:
		return Selector{By: By(by), Value: value}, nil
	default:
		return Selector{}, fmt.Errorf("selector %q uses unknown strategy %q", s, by)
	}
}

// MustParseSelector is like ParseSelector but panics on error
func MustParseSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func (s Selector) String() string {
	if s.IsZero() {
		return ""
	}
	return string(s.By) + "=" + s.Value
}

// IsZero reports whether the selector is unset
func (s Selector) IsZero() bool {
	return s.By == "" && s.Value == ""
}

// MarshalText implements encoding.TextMarshaler
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Selector) UnmarshalText(text []byte) error {
	sel, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

// playwright returns the selector in Playwright's engine syntax
func (s Selector) playwright() string {
	switch s.By {
	case ByName:
		return "[name=" + strconv.Quote(s.Value) + "]"
	default:
		return string(s.By) + "=" + s.Value
	}
}

// Session is a live browser context bound to one site. It is owned by a single
// caller and is not safe for concurrent use.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Find locates an element now. It returns ErrElementNotFound when nothing matches.
	Find(ctx context.Context, sel Selector) (Element, error)
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Element is a handle to a DOM node located at a point in time. It goes stale
// once the page navigates or re-renders the node.
type Element interface {
	Selector() Selector
	Click(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	Clear(ctx context.Context) error
	Type(ctx context.Context, text string) error
	// Select chooses an <option> element and notifies its <select>.
	Select(ctx context.Context) error
	// Evaluate runs a script function with the element as its argument.
	Evaluate(ctx context.Context, script string) (any, error)
	IsVisible(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
}

// ClickScript activates an element from script, bypassing pointer dispatch.
const ClickScript = "el => el.click()"

// selectOptionScript marks an <option> selected and fires the events a user
// selection would.
const selectOptionScript = `el => {
	el.selected = true;
	const sel = el.closest('select');
	if (sel) {
		sel.dispatchEvent(new Event('input', { bubbles: true }));
		sel.dispatchEvent(new Event('change', { bubbles: true }));
	}
}`
