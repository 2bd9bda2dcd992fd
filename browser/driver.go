// Package browser abstracts the browser-automation engine behind a small
// driver interface so the scraper never talks to Chrome directly.
package browser

import "time"

// Element is a handle to a single DOM element on the current page.
type Element interface {
	// Text returns the rendered inner text of the element.
	Text() (string, error)
	// Attr returns the value of an attribute, "" if absent.
	Attr(name string) (string, error)
	// QueryAll finds descendant elements matching the selector.
	QueryAll(selector string) ([]Element, error)
	// LeftPx returns the computed CSS left position in pixels.
	LeftPx() (float64, error)
	// Value returns the current value of a form element.
	Value() (string, error)
	// SetValue sets the element's value and fires a change event.
	SetValue(value string) error
	// Click performs a native mouse click on the element.
	Click() error
	// ClickJS clicks via JavaScript, for elements a native click can't reach.
	ClickJS() error
	// ScrollIntoView scrolls the element into the viewport.
	ScrollIntoView() error
}

// Driver drives one logical browser session. All calls block and carry
// explicit timeouts; the session is owned by a single goroutine.
type Driver interface {
	NavigateTo(url string) error
	Back() error
	Click(selector string, timeout time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) error
	QueryAll(selector string) ([]Element, error)
	CurrentURL() (string, error)
	Title() (string, error)
	// InnerText returns the rendered text of the first element matching scope
	// (typically "body").
	InnerText(scope string) (string, error)
	// HTML returns the outer HTML of the first element matching scope.
	HTML(scope string) (string, error)
	Wait(d time.Duration)
	Close() error
}
