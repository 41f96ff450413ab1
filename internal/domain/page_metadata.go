package domain

// PageMetadata is the resolved display data for a bookmarked URL, as it is
// stored in the metadata cache.
type PageMetadata struct {
	Favicon string `json:"favicon"` // Absolute favicon URL or empty
	Title   string `json:"title"`   // Page <title> text or empty
}
