package domain

import "context"

// Collection types reported by Jellyfin for the libraries we build sensors for
const (
	CollectionTVShows = "tvshows"
	CollectionMovies  = "movies"
	CollectionMusic   = "music"
)

// collectionDisplayNames maps a supported collection type to its display name
var collectionDisplayNames = map[string]string{
	CollectionTVShows: "TV Shows",
	CollectionMovies:  "Movies",
	CollectionMusic:   "Music",
}

// IsSupportedCollection reports whether sensors can be built for a collection type
func IsSupportedCollection(collectionType string) bool {
	_, ok := collectionDisplayNames[collectionType]
	return ok
}

// LibraryCategory is a top-level library view on the server.
// When libraries are grouped, GroupedIDs holds every merged view id and ID
// keeps the representative's id.
type LibraryCategory struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	CollectionType string   `json:"collection_type"`
	GroupedIDs     []string `json:"grouped_ids,omitempty"`
}

// IsGrouped returns true if the category merges several library views
func (c LibraryCategory) IsGrouped() bool {
	return len(c.GroupedIDs) > 0
}

// IDs returns the view ids that must be fetched to refresh this category
func (c LibraryCategory) IDs() []string {
	if c.IsGrouped() {
		return c.GroupedIDs
	}
	return []string{c.ID}
}

// DisplayType returns the human name of the collection type ("TV Shows", "Movies", "Music")
func (c LibraryCategory) DisplayType() string {
	if name, ok := collectionDisplayNames[c.CollectionType]; ok {
		return name
	}
	return c.CollectionType
}

// LatestFetcher is the subset of the media server client a sensor needs to refresh.
type LatestFetcher interface {
	// FetchLatest returns the most recently added records below a library view
	FetchLatest(ctx context.Context, parentID string) ([]MediaRecord, error)

	// Status returns the human-readable reachability of the server ("Online" or "<host> cannot be reached")
	Status() string
}

// CategoryLister lists the library views visible to the configured user.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]LibraryCategory, error)
}
