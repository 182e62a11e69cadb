package platform

import (
	"context"
	"time"
)

// Surface is the set of page interactions a browser-driven adapter performs
// while authenticating or publishing. The concrete implementation lives in
// pkg/browser; tests substitute fakes.
type Surface interface {
	// Navigate loads the given URL and waits for the document to settle.
	Navigate(ctx context.Context, url string) error

	// Fill sets the value of the input matching selector.
	Fill(selector, value string) error

	// Click clicks the element matching selector.
	Click(selector string) error

	// Press sends a single key press to the element matching selector.
	Press(selector, key string) error

	// Upload attaches the local file at path to the file input matching
	// selector.
	Upload(selector, path string) error

	// WaitVisible blocks until an element matching selector is visible,
	// or the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// URL returns the page's current URL.
	URL() string
}

// Document adds the read-side operations the extraction pipeline needs on
// top of Surface.
type Document interface {
	Surface

	// Scroll triggers one scroll pass so lazily loaded content can render.
	// With an empty selector the window scrolls to the document bottom;
	// otherwise the matching element (for example a results panel) is
	// scrolled instead.
	Scroll(ctx context.Context, selector string) error

	// Containers returns the elements matching the record-container
	// selector, in document order.
	Containers(selector string) ([]Element, error)
}

// Element is one record container found during extraction.
type Element interface {
	// Text returns the text content of the descendant matching selector,
	// or of the element itself when selector is empty.
	Text(selector string) (string, error)

	// Attr returns the named attribute of the descendant matching
	// selector, or of the element itself when selector is empty.
	Attr(selector, name string) (string, error)
}

// Page is the full contract a live browser page satisfies.
type Page interface {
	Document
}

// Pager provides scoped page acquisition from a live session. The page passed
// to fn is exclusively owned by fn and closed on every return path.
type Pager interface {
	WithPage(ctx context.Context, fn func(Page) error) error
}
