// Package medium implements the long-form-publisher adapter. It only
// publishes: drafting a story, tagging it and confirming publication as a
// fixed sequence of composer steps.
package medium

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
)

const (
	newStoryURL = "https://medium.com/new-story"

	titleSelector      = `h1[data-default-value="Title"]`
	bodySelector       = `[data-default-value="Tell your story..."]`
	publishSelector    = `button:has-text("Publish")`
	tagInputSelector   = `input[placeholder="Add a tag..."]`
	publishNowSelector = `button:has-text("Publish now")`

	// Medium allows at most five tags per story.
	maxTags = 5
)

// Adapter publishes stories to Medium through a browser session carrying an
// already signed-in profile.
type Adapter struct {
	session platform.Pager
	log     *zap.SugaredLogger
}

// New constructs the adapter.
func New(session platform.Pager, log *zap.SugaredLogger) *Adapter {
	return &Adapter{
		session: session,
		log:     logging.OrNop(log).With("platform", platform.Medium),
	}
}

// Platform returns platform.Medium.
func (a *Adapter) Platform() platform.Platform {
	return platform.Medium
}

// Publish drafts and publishes a story. The payload's title and message
// fields become the story title and body; the tags field is a comma-separated
// list, capped at Medium's five-tag limit. A failing step aborts the
// remaining steps and may leave a draft behind; the draft is not cleaned up.
func (a *Adapter) Publish(ctx context.Context, req platform.PostRequest) (platform.PostResult, error) {
	result := platform.PostResult{Platform: platform.Medium, Timestamp: time.Now().UTC()}

	tags := splitTags(req.Field(platform.FieldTags))

	err := a.session.WithPage(ctx, func(page platform.Page) error {
		steps := []platform.Step{
			{Name: "open editor", Do: func() error { return page.Navigate(ctx, newStoryURL) }},
			{Name: "wait for editor", Do: func() error { return page.WaitVisible(ctx, titleSelector, 15*time.Second) }},
			{Name: "fill title", Do: func() error { return page.Fill(titleSelector, req.Field(platform.FieldTitle)) }},
			{Name: "fill body", Do: func() error { return page.Fill(bodySelector, req.Field(platform.FieldMessage)) }},
			{Name: "open publish dialog", Do: func() error { return page.Click(publishSelector) }},
			{Name: "add tags", Do: func() error { return addTags(page, tags) }},
			{Name: "confirm publish", Do: func() error { return page.Click(publishNowSelector) }},
		}
		return platform.RunSteps(platform.Medium, steps)
	})
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	a.log.Infow("story published", "title", req.Field(platform.FieldTitle))
	result.Success = true
	return result, nil
}

func addTags(page platform.Page, tags []string) error {
	for _, tag := range tags {
		if err := page.Fill(tagInputSelector, tag); err != nil {
			return err
		}
		if err := page.Press(tagInputSelector, "Enter"); err != nil {
			return err
		}
	}
	return nil
}

func splitTags(raw string) []string {
	var out []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
