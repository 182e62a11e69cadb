// Package platform defines the shared contract between the automation engine
// and its per-platform adapters: the platform identifiers, the capability
// interfaces (authenticate / extract / publish), the record and posting types
// they exchange, and the error taxonomy the engine dispatches on.
package platform

// Platform identifies one supported external platform.
type Platform string

const (
	// LinkedIn is the professional-network platform.
	LinkedIn Platform = "linkedin"

	// Twitter is the micro-blogging platform.
	Twitter Platform = "twitter"

	// GoogleMaps is the local-business-directory platform.
	GoogleMaps Platform = "google_maps"

	// Medium is the long-form publishing platform.
	Medium Platform = "medium"

	// Facebook is the social-graph platform (pages and groups).
	Facebook Platform = "facebook"

	// Instagram is the media-post platform, published through the same
	// Graph API surface as Facebook.
	Instagram Platform = "instagram"
)

// All returns every supported platform in a fixed order.
func All() []Platform {
	return []Platform{LinkedIn, Twitter, GoogleMaps, Medium, Facebook, Instagram}
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case LinkedIn, Twitter, GoogleMaps, Medium, Facebook, Instagram:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}
