package platform

import "time"

// Lead is a discovered prospective-contact record. Adapters produce Leads
// during extraction; the aggregator assigns MatchScore during keyword
// filtering, after which a Lead is treated as immutable.
type Lead struct {
	// Platform is the platform the lead was discovered on.
	Platform Platform

	// Identity is the lead's name or handle. Required; together with
	// Platform it forms the deduplication key.
	Identity string

	// Attributes holds platform-specific fields such as headline,
	// location, rating or address.
	Attributes map[string]string

	// SourceURL optionally points back at the profile or listing.
	SourceURL string

	// DiscoveredAt is when the lead was extracted.
	DiscoveredAt time.Time

	// MatchScore is the number of distinct keywords matched during
	// filtering. Zero until the filter step runs.
	MatchScore int
}

// Valid reports whether the lead is well-formed: a non-empty identity on a
// supported platform.
func (l Lead) Valid() bool {
	return l.Identity != "" && l.Platform.Valid()
}

// Attr returns the named attribute, or fallback when absent or empty.
func (l Lead) Attr(key, fallback string) string {
	if v, ok := l.Attributes[key]; ok && v != "" {
		return v
	}
	return fallback
}
