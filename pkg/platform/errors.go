package platform

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for failures the engine dispatches on. Adapters wrap these
// with context via errors.Wrap; callers match with errors.Is.
var (
	// ErrSessionStart indicates the automation runtime could not be
	// launched. Fatal to the whole run.
	ErrSessionStart = errors.New("session start failed")

	// ErrAuthentication indicates bad or missing credentials, or a login
	// that never reached its authenticated signal. Terminal for that
	// platform's run; never retried.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNavigation indicates a page failed to reach a usable state, for
	// example an unexpected redirect to a login wall. Terminal for that
	// platform's extraction.
	ErrNavigation = errors.New("navigation failed")

	// ErrConnectivity indicates a remote endpoint was unreachable. Surfaced
	// as a failed PostResult rather than raised.
	ErrConnectivity = errors.New("endpoint unreachable")
)

// FieldError reports a single record container that could not be mapped to a
// Lead. The extraction pipeline logs these and skips the container; they never
// abort the surrounding extraction.
type FieldError struct {
	Platform Platform
	Field    string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: extracting %q: %v", e.Platform, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PublishStepError reports the failing sub-step of a multi-step publish.
// Earlier sub-steps are not rolled back; if a remote object was already
// created (for example a media container awaiting confirmation), its id is
// carried in PartialID so the caller can see the orphaned state.
type PublishStepError struct {
	Platform Platform
	Step     string
	PartialID string
	Err      error
}

func (e *PublishStepError) Error() string {
	if e.PartialID != "" {
		return fmt.Sprintf("%s: publish step %q failed (partial remote id %s): %v", e.Platform, e.Step, e.PartialID, e.Err)
	}
	return fmt.Sprintf("%s: publish step %q failed: %v", e.Platform, e.Step, e.Err)
}

func (e *PublishStepError) Unwrap() error {
	return e.Err
}
