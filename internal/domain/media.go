package domain

import (
	"strings"
	"time"
)

// Item types reported in the Type field of a Jellyfin record
const (
	ItemTypeEpisode    = "Episode"
	ItemTypeSeries     = "Series"
	ItemTypeMovie      = "Movie"
	ItemTypeMusicAlbum = "MusicAlbum"
	ItemTypeAudio      = "Audio"
)

// ImageTypes are the artwork kinds downloaded for every record (and its parent)
var ImageTypes = []string{"Primary", "Backdrop", "Banner", "Logo", "Thumb"}

// ImageKey returns the key under which downloaded bytes for an image type are stored.
// Parent artwork is stored under "<Type>_parent_bytes", own artwork under "<Type>_bytes".
func ImageKey(imageType string, parent bool) string {
	if parent {
		return imageType + "_parent_bytes"
	}
	return imageType + "_bytes"
}

// NamedRef is a {Name, Id} pair as used by Studios
type NamedRef struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Trailer is a remote trailer link
type Trailer struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// MediaRecord is one recently added item (Movie, Series, Episode, MusicAlbum, Audio, ...).
// Optional numeric fields are pointers: nil means the server did not send them.
type MediaRecord struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	SeriesName        string            `json:"series_name,omitempty"`
	Type              string            `json:"type"`
	ParentID          string            `json:"parent_id,omitempty"`
	PremiereDate      string            `json:"premiere_date,omitempty"` // raw ISO-8601 as sent by the server
	DateCreated       string            `json:"date_created,omitempty"`  // raw ISO-8601 as sent by the server
	RunTimeTicks      *int64            `json:"run_time_ticks,omitempty"`
	CommunityRating   *float64          `json:"community_rating,omitempty"`
	ChildCount        *int              `json:"child_count,omitempty"`
	ParentIndexNumber *int              `json:"parent_index_number,omitempty"` // season
	IndexNumber       *int              `json:"index_number,omitempty"`        // episode
	ProductionYear    *int              `json:"production_year,omitempty"`
	Genres            []string          `json:"genres,omitempty"`
	Studios           []NamedRef        `json:"studios,omitempty"`
	Artists           []string          `json:"artists,omitempty"`
	ProviderIDs       map[string]string `json:"provider_ids,omitempty"`
	RemoteTrailers    []Trailer         `json:"remote_trailers,omitempty"`
	Overview          string            `json:"overview,omitempty"`
	OfficialRating    string            `json:"official_rating,omitempty"`

	// Images holds transient downloaded artwork keyed by ImageKey; never persisted
	Images map[string][]byte `json:"-"`
}

// ImageBytes returns the downloaded bytes stored under key, or nil
func (r MediaRecord) ImageBytes(key string) []byte {
	if r.Images == nil {
		return nil
	}
	return r.Images[key]
}

// SetImageBytes attaches downloaded artwork under key
func (r *MediaRecord) SetImageBytes(key string, data []byte) {
	if r.Images == nil {
		r.Images = make(map[string][]byte)
	}
	r.Images[key] = data
}

// ProviderID returns an external id (e.g. "Tvdb") or "" if absent
func (r MediaRecord) ProviderID(name string) string {
	return r.ProviderIDs[name]
}

// FirstTrailerURL returns the first remote trailer link or ""
func (r MediaRecord) FirstTrailerURL() string {
	if len(r.RemoteTrailers) == 0 {
		return ""
	}
	return r.RemoteTrailers[0].URL
}

// CreatedAt parses DateCreated; ok is false when absent or unparseable
func (r MediaRecord) CreatedAt() (time.Time, bool) {
	return ParseServerTime(r.DateCreated)
}

// PremieredAt parses PremiereDate; ok is false when absent or unparseable
func (r MediaRecord) PremieredAt() (time.Time, bool) {
	return ParseServerTime(r.PremiereDate)
}

// serverTimeLayouts are tried in order. Jellyfin emits 7 fractional digits, which
// RFC3339 accepts when parsing; offset-less and date-only values show up on older servers.
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseServerTime parses an ISO-8601 timestamp as emitted by Jellyfin
func ParseServerTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range serverTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
