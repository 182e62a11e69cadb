package browser

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/prospect/pkg/platform"
)

// Page adapts a Playwright page to the platform.Page contract adapters and
// the extraction pipeline are written against.
type Page struct {
	pw playwright.Page
}

var _ platform.Page = (*Page)(nil)

// Navigate loads url, waiting for the DOM to be ready. A context deadline, if
// set, bounds the navigation.
func (p *Page) Navigate(ctx context.Context, url string) error {
	opts := playwright.PageGotoOptions{}
	waitUntil := playwright.WaitUntilState("domcontentloaded")
	opts.WaitUntil = &waitUntil
	if deadline, ok := ctx.Deadline(); ok {
		ms := float64(time.Until(deadline).Milliseconds())
		opts.Timeout = &ms
	}

	if _, err := p.pw.Goto(url, opts); err != nil {
		return errors.Wrapf(err, "navigating to %s", url)
	}
	return nil
}

// Fill sets the value of the input matching selector.
func (p *Page) Fill(selector, value string) error {
	if err := p.pw.Fill(selector, value); err != nil {
		return errors.Wrapf(err, "filling %q", selector)
	}
	return nil
}

// Click clicks the element matching selector.
func (p *Page) Click(selector string) error {
	if err := p.pw.Click(selector); err != nil {
		return errors.Wrapf(err, "clicking %q", selector)
	}
	return nil
}

// Upload attaches the local file at path to the file input matching selector.
func (p *Page) Upload(selector, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading upload %s", path)
	}

	file := playwright.InputFile{
		Name:   filepath.Base(path),
		Buffer: data,
	}
	if err := p.pw.SetInputFiles(selector, []playwright.InputFile{file}); err != nil {
		return errors.Wrapf(err, "uploading to %q", selector)
	}
	return nil
}

// WaitVisible blocks until an element matching selector is visible or the
// timeout elapses.
func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	state := playwright.WaitForSelectorState("visible")
	ms := float64(timeout.Milliseconds())
	_, err := p.pw.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   &state,
		Timeout: &ms,
	})
	if err != nil {
		return errors.Wrapf(err, "waiting for %q", selector)
	}
	return nil
}

// Press sends a single key press to the element matching selector.
func (p *Page) Press(selector, key string) error {
	if err := p.pw.Press(selector, key); err != nil {
		return errors.Wrapf(err, "pressing %q on %q", key, selector)
	}
	return nil
}

// Scroll scrolls the window to the document bottom, or the element matching
// selector when one is given, so lazily loaded content starts rendering.
func (p *Page) Scroll(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	if selector == "" {
		_, err = p.pw.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	} else {
		_, err = p.pw.Evaluate("sel => document.querySelector(sel)?.scrollBy(0, 1000)", selector)
	}
	if err != nil {
		return errors.Wrap(err, "scrolling")
	}
	return nil
}

// Containers returns the elements matching selector, in document order.
func (p *Page) Containers(selector string) ([]platform.Element, error) {
	handles, err := p.pw.QuerySelectorAll(selector)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %q", selector)
	}

	out := make([]platform.Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &element{handle: h})
	}
	return out, nil
}

// URL returns the page's current URL.
func (p *Page) URL() string {
	return p.pw.URL()
}

// element adapts a Playwright element handle to platform.Element.
type element struct {
	handle playwright.ElementHandle
}

func (e *element) resolve(selector string) (playwright.ElementHandle, error) {
	if selector == "" {
		return e.handle, nil
	}
	child, err := e.handle.QuerySelector(selector)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %q", selector)
	}
	if child == nil {
		return nil, errors.Newf("no element matches %q", selector)
	}
	return child, nil
}

func (e *element) Text(selector string) (string, error) {
	h, err := e.resolve(selector)
	if err != nil {
		return "", err
	}
	text, err := h.TextContent()
	if err != nil {
		return "", errors.Wrap(err, "reading text")
	}
	return text, nil
}

func (e *element) Attr(selector, name string) (string, error) {
	h, err := e.resolve(selector)
	if err != nil {
		return "", err
	}
	value, err := h.GetAttribute(name)
	if err != nil {
		return "", errors.Wrapf(err, "reading attribute %q", name)
	}
	return value, nil
}
