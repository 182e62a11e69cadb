// Package platformtest provides scripted fakes for the platform.Page and
// platform.Pager contracts so adapter logic can be exercised without a
// browser.
package platformtest

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/prospect/pkg/platform"
)

// Page is a scripted platform.Page. Every operation is recorded in Actions
// as "<op>:<selector-or-url>"; FailOn maps an action string to the error it
// should return.
type Page struct {
	Actions []string
	FailOn  map[string]error

	// LandURL is reported by URL after a successful Navigate. When empty,
	// the navigated URL is reported instead.
	LandURL string

	// Batches scripts Containers: Batches[i] is the container set visible
	// after i scrolls.
	Batches [][]platform.Element

	url     string
	scrolls int
}

var _ platform.Page = (*Page)(nil)

func (p *Page) record(op string, args ...string) error {
	action := op
	for _, a := range args {
		action += ":" + a
	}
	p.Actions = append(p.Actions, action)
	return p.FailOn[action]
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.record("navigate", url); err != nil {
		return err
	}
	p.url = url
	if p.LandURL != "" {
		p.url = p.LandURL
	}
	return nil
}

func (p *Page) Fill(selector, value string) error {
	return p.record("fill", selector)
}

func (p *Page) Click(selector string) error {
	return p.record("click", selector)
}

func (p *Page) Press(selector, key string) error {
	return p.record("press", selector, key)
}

func (p *Page) Upload(selector, path string) error {
	return p.record("upload", selector)
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return p.record("wait", selector)
}

func (p *Page) Scroll(ctx context.Context, selector string) error {
	if err := p.record("scroll"); err != nil {
		return err
	}
	if p.scrolls < len(p.Batches)-1 {
		p.scrolls++
	}
	return nil
}

func (p *Page) Containers(selector string) ([]platform.Element, error) {
	if len(p.Batches) == 0 {
		return nil, nil
	}
	return p.Batches[p.scrolls], nil
}

func (p *Page) URL() string {
	return p.url
}

// Did reports whether an action with the given prefix was recorded.
func (p *Page) Did(prefix string) bool {
	for _, a := range p.Actions {
		if a == prefix || len(a) > len(prefix) && a[:len(prefix)+1] == prefix+":" {
			return true
		}
	}
	return false
}

// Pager hands the scripted page to each operation.
type Pager struct {
	Page *Page
	Err  error
}

var _ platform.Pager = (*Pager)(nil)

func (p *Pager) WithPage(ctx context.Context, fn func(platform.Page) error) error {
	if p.Err != nil {
		return p.Err
	}
	return fn(p.Page)
}

// Element is a canned platform.Element backed by a value map keyed by
// selector (for Text) and "selector@name" (for Attr). A nil Values map makes
// every lookup fail, simulating a detached container.
type Element struct {
	Values map[string]string
}

var _ platform.Element = (*Element)(nil)

func (e *Element) Text(selector string) (string, error) {
	if e.Values == nil {
		return "", fmt.Errorf("element detached")
	}
	return e.Values[selector], nil
}

func (e *Element) Attr(selector, name string) (string, error) {
	if e.Values == nil {
		return "", fmt.Errorf("element detached")
	}
	return e.Values[selector+"@"+name], nil
}
