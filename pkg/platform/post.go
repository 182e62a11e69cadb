package platform

import "time"

// Payload field names shared across adapters. Absent fields are treated as
// empty strings; adapters read only the fields they understand.
const (
	FieldMessage = "message"
	FieldCaption = "caption"
	FieldTitle   = "title"
	FieldTags    = "tags"
	FieldLink    = "link"
	FieldImageURL = "image_url"
)

// PostRequest carries one piece of content destined for one platform. It
// exists only for the duration of a single publish call.
type PostRequest struct {
	// Platform is the target platform.
	Platform Platform

	// Payload maps named fields (message, caption, title, tags) to their
	// content. Adapters treat absent fields as empty.
	Payload map[string]string

	// MediaRef optionally points at a local media file to attach.
	MediaRef string
}

// Field returns the named payload field, or "" when absent.
func (r PostRequest) Field(name string) string {
	return r.Payload[name]
}

// Empty reports whether the request carries no content at all.
func (r PostRequest) Empty() bool {
	for _, v := range r.Payload {
		if v != "" {
			return false
		}
	}
	return r.MediaRef == ""
}

// PostResult is the normalized outcome of one publish call. Immutable once
// produced.
type PostResult struct {
	// Platform is the platform the publish targeted.
	Platform Platform

	// Success reports whether the publish completed.
	Success bool

	// RemoteID is the platform-assigned id of the created post, when the
	// platform reports one.
	RemoteID string

	// Error describes the failure when Success is false.
	Error string

	// Timestamp is when the outcome was recorded.
	Timestamp time.Time
}
