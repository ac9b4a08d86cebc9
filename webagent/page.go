// Package webagent drives a web page through the tool-calling agent.
// The browser itself is an external collaborator behind the Page
// interface; this package ships the page tools and the agent wiring.
package webagent

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrPageAction is the class of selector-resolution and navigation
// failures reported by a Page.
var ErrPageAction = errors.New("page action failed")

// DefaultWaitTimeout bounds wait_for_element.
const DefaultWaitTimeout = 10 * time.Second

// Page is a single browser tab. Implementations resolve CSS selectors
// and must fail with an error wrapping ErrPageAction when a selector
// matches zero or multiple elements.
type Page interface {
	// Navigate loads the given URL.
	Navigate(ctx context.Context, url string) error
	// Click clicks the element matched by the selector.
	Click(ctx context.Context, selector string) error
	// Type fills the matched input or textarea with text.
	Type(ctx context.Context, selector, text string) error
	// GetValue returns the value of the matched input, textarea or select.
	GetValue(ctx context.Context, selector string) (string, error)
	// GetText returns the inner text of the matched element.
	GetText(ctx context.Context, selector string) (string, error)
	// GetTitle returns the document title.
	GetTitle(ctx context.Context) (string, error)
	// GetURL returns the current page URL.
	GetURL(ctx context.Context) (string, error)
	// WaitForSelector blocks until the selector matches an element or
	// the timeout elapses.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// GetContent returns the full HTML content of the page.
	GetContent(ctx context.Context) (string, error)
	// Close releases the page and its browser resources.
	Close() error
}
