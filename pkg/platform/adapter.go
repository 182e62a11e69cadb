package platform

import "context"

// Query describes what an extraction run should look for. Platforms interpret
// the fields differently: a people-search phrase, a hashtag, a business type
// plus location, or a group URL in Terms.
type Query struct {
	// Terms is the search phrase, hashtag or target URL.
	Terms string

	// Location optionally narrows the search geographically.
	Location string
}

// Adapter is the minimal contract every platform adapter satisfies. The
// capability interfaces below are discovered by type assertion; not every
// adapter implements every capability.
type Adapter interface {
	// Platform returns the platform this adapter targets.
	Platform() Platform
}

// Authenticator is implemented by adapters that log in through the browser.
// Authenticate navigates to the login surface, submits credentials and waits
// for the platform's authenticated signal under a bounded deadline. Failure
// wraps ErrAuthentication and is terminal for that platform's run.
type Authenticator interface {
	Adapter
	Authenticate(ctx context.Context, page Page) error
}

// Extractor is implemented by adapters that discover leads. The returned
// slice holds at most maxResults well-formed leads; per-record failures are
// skipped, and an error is returned only when the listing page never reached
// a usable state.
type Extractor interface {
	Adapter
	ExtractLeads(ctx context.Context, query Query, maxResults int) ([]Lead, error)
}

// Publisher is implemented by adapters that can post content, whether by
// driving the browser or by calling the platform's HTTP API. Both paths
// normalize into the same PostResult shape.
type Publisher interface {
	Adapter
	Publish(ctx context.Context, req PostRequest) (PostResult, error)
}
