package jellyfin

// ItemsResponse represents a list of items from Jellyfin (e.g. /UserViews)
type ItemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
	StartIndex       int    `json:"StartIndex"`
}

// Item represents a media item or library view from Jellyfin.
// Optional scalars are pointers so absence survives decoding.
type Item struct {
	ID                string            `json:"Id"`
	Name              string            `json:"Name"`
	Type              string            `json:"Type"`
	CollectionType    string            `json:"CollectionType,omitempty"` // For libraries: "movies", "tvshows", "music"
	ParentID          string            `json:"ParentId,omitempty"`
	SeriesName        string            `json:"SeriesName,omitempty"`
	Overview          string            `json:"Overview,omitempty"`
	OfficialRating    string            `json:"OfficialRating,omitempty"`
	DateCreated       string            `json:"DateCreated,omitempty"`
	PremiereDate      string            `json:"PremiereDate,omitempty"`
	ProductionYear    *int              `json:"ProductionYear,omitempty"`
	RunTimeTicks      *int64            `json:"RunTimeTicks,omitempty"` // Duration in 100-nanosecond units
	CommunityRating   *float64          `json:"CommunityRating,omitempty"`
	ChildCount        *int              `json:"ChildCount,omitempty"`        // Seasons for a series
	ParentIndexNumber *int              `json:"ParentIndexNumber,omitempty"` // Season number
	IndexNumber       *int              `json:"IndexNumber,omitempty"`       // Episode number
	Genres            []string          `json:"Genres,omitempty"`
	Studios           []Studio          `json:"Studios,omitempty"`
	Artists           []string          `json:"Artists,omitempty"`
	ProviderIDs       map[string]string `json:"ProviderIds,omitempty"`
	RemoteTrailers    []RemoteTrailer   `json:"RemoteTrailers,omitempty"`
}

// Studio is a studio reference on an item
type Studio struct {
	Name string `json:"Name"`
	ID   string `json:"Id,omitempty"`
}

// RemoteTrailer is an external trailer link
type RemoteTrailer struct {
	URL  string `json:"Url"`
	Name string `json:"Name,omitempty"`
}
