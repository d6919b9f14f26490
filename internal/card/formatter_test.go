package card

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/artwork"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

// stubImages records each resolve call and returns a descriptive URL
type stubImages struct {
	calls []string
}

func (s *stubImages) Resolve(record domain.MediaRecord, key, upcomingKind, libraryKind, cdnKind string, seq int) string {
	call := fmt.Sprintf("%s/%s/%s/%s/%d", key, upcomingKind, libraryKind, cdnKind, seq)
	s.calls = append(s.calls, call)
	return "img:" + call
}

type stubLinks struct{}

func (stubLinks) DeepLink(itemID string) string {
	return "http://jf:8096/web/index.html#!/details?id=" + itemID
}

func intPtr(v int) *int             { return &v }
func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestFormatter(images ImageResolver, options ...Option) *Formatter {
	options = append([]Option{WithClock(func() time.Time { return fixedNow })}, options...)
	return NewFormatter(images, stubLinks{}, options...)
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		itemType string
		want     Kind
	}{
		{"Episode", KindTVEpisode},
		{"Series", KindTVShow},
		{"Movie", KindMovie},
		{"MusicAlbum", KindMusic},
		{"Audio", KindMusic},
		{"BoxSet", KindOther},
		{"Book", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.itemType, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind([]domain.MediaRecord{{Type: tt.itemType}}))
		})
	}
	assert.Equal(t, KindOther, InferKind(nil))
}

func TestFormat_Empty(t *testing.T) {
	f := newTestFormatter(&stubImages{})
	card := f.Format(nil, KindMovie)
	assert.True(t, card.IsEmpty())
	assert.Nil(t, card.Data())
	assert.Equal(t, domain.Attributes{}, f.Attributes(nil))
}

func TestFormat_Movie(t *testing.T) {
	images := &stubImages{}
	f := newTestFormatter(images)

	records := []domain.MediaRecord{{
		ID:              "m1",
		Name:            "Heat",
		Type:            "Movie",
		PremiereDate:    "1995-12-15T00:00:00.0000000Z",
		RunTimeTicks:    int64Ptr(102_000_000_000),
		CommunityRating: float64Ptr(8.3),
		Genres:          []string{"Action", "Crime"},
		Studios:         []domain.NamedRef{{Name: "Warner Bros."}, {Name: "Regency"}},
		RemoteTrailers:  []domain.Trailer{{URL: "https://yt/heat"}, {URL: "https://yt/other"}},
		Overview:        "A group of thieves.",
	}}

	card := f.Format(records, KindMovie)
	require.NotNil(t, card.Defaults)
	assert.Equal(t, MovieDefault, *card.Defaults)
	require.Len(t, card.Entries, 1)

	entry := card.Entries[0]
	assert.Equal(t, "Heat", entry.Title)
	assert.Equal(t, "Released 1995-12-15", entry.Release)
	assert.Equal(t, "1995-12-15T00:00:00.0000000Z", entry.Airdate)
	assert.Equal(t, domain.RuntimeMinutes(170), entry.Runtime)
	assert.Equal(t, "★ 8.3", entry.Rating)
	assert.Equal(t, []string{"Action", "Crime"}, entry.Genres)
	assert.Equal(t, "Warner Bros.", entry.Studio)
	assert.Empty(t, entry.Number)
	assert.Equal(t, "img:Primary/poster/movie/poster/1", entry.Poster)
	assert.Equal(t, "img:Backdrop/fanart/movie/background/1", entry.Fanart)
	assert.Equal(t, "http://jf:8096/web/index.html#!/details?id=m1", entry.DeepLink)
	assert.Equal(t, "https://yt/heat", entry.Trailer)
	assert.Equal(t, "A group of thieves.", entry.Summary)
}

func TestFormat_TVEpisode(t *testing.T) {
	images := &stubImages{}
	f := newTestFormatter(images)

	records := []domain.MediaRecord{
		{ID: "e1", Name: "Pilot", SeriesName: "Severance", Type: "Episode",
			ParentIndexNumber: intPtr(1), IndexNumber: intPtr(3)},
		{ID: "e2", Name: "Special", SeriesName: "Severance", Type: "Episode",
			ParentIndexNumber: intPtr(2)},
		{ID: "e3", Name: "Loose", SeriesName: "Severance", Type: "Episode"},
	}

	card := f.Format(records, KindTVEpisode)
	assert.Equal(t, TVDefault, *card.Defaults)
	require.Len(t, card.Entries, 3)

	assert.Equal(t, "Severance", card.Entries[0].Title)
	assert.Equal(t, "Pilot", card.Entries[0].Episode)
	assert.Equal(t, "S01E03", card.Entries[0].Number)
	assert.Equal(t, "Season 2 Special", card.Entries[1].Number)
	assert.Empty(t, card.Entries[2].Number)

	assert.Equal(t, "img:Primary_parent/poster/episode/poster/1", card.Entries[0].Poster)
	assert.Equal(t, "img:Primary/fanart/episode/background/1", card.Entries[0].Fanart)
	assert.Equal(t, "img:Primary_parent/poster/episode/poster/3", card.Entries[2].Poster)

	// no premiere date: empty release, airdate from the clock
	assert.Equal(t, "", card.Entries[0].Release)
	assert.Equal(t, fixedNow.Format(time.RFC3339), card.Entries[0].Airdate)
}

func TestFormat_TVShowSeasons(t *testing.T) {
	f := newTestFormatter(&stubImages{})

	records := []domain.MediaRecord{
		{ID: "s1", Name: "One", Type: "Series", ChildCount: intPtr(1)},
		{ID: "s2", Name: "Many", Type: "Series", ChildCount: intPtr(4)},
		{ID: "s3", Name: "Unknown", Type: "Series"},
		{ID: "s4", Name: "Indexed", Type: "Series", ChildCount: intPtr(2),
			ParentIndexNumber: intPtr(2), IndexNumber: intPtr(10)},
	}

	card := f.Format(records, KindTVShow)
	assert.Equal(t, TVAlternate, *card.Defaults)
	assert.Equal(t, "1 season", card.Entries[0].Number)
	assert.Equal(t, "4 seasons", card.Entries[1].Number)
	assert.Empty(t, card.Entries[2].Number)
	assert.Equal(t, "S02E10", card.Entries[3].Number)
	assert.Equal(t, "img:Backdrop/fanart/show/background/2", card.Entries[1].Fanart)
}

func TestFormat_Music(t *testing.T) {
	f := newTestFormatter(&stubImages{})

	records := []domain.MediaRecord{
		{ID: "a1", Name: "Album", Type: "MusicAlbum", ProductionYear: intPtr(1997),
			Artists: []string{"A", "B", "C", "D"}},
		{ID: "a2", Name: "Track", Type: "Audio", ParentIndexNumber: intPtr(1), IndexNumber: intPtr(2),
			PremiereDate: "2001-02-03T00:00:00Z"},
	}

	card := f.Format(records, InferKind(records))
	assert.Equal(t, MusicDefault, *card.Defaults)

	assert.Equal(t, "A, B, C", card.Entries[0].Studio)
	assert.Equal(t, "1997", card.Entries[0].Number)
	assert.Equal(t, "Released 1997", card.Entries[0].Release)

	assert.Equal(t, "S01E02", card.Entries[1].Number)
	assert.Equal(t, "Released 2001-02-03", card.Entries[1].Release)
	assert.Empty(t, card.Entries[1].Studio)
}

func TestFormat_Other(t *testing.T) {
	f := newTestFormatter(&stubImages{})

	records := []domain.MediaRecord{
		{ID: "b1", Name: "Box", Type: "BoxSet", OfficialRating: "PG-13", ProductionYear: intPtr(2010),
			Artists: []string{"X"}},
		{ID: "b2", Name: "Studio Box", Type: "BoxSet", Studios: []domain.NamedRef{{Name: "Pixar"}},
			Artists: []string{"X"}},
	}

	card := f.Format(records, KindOther)
	assert.Equal(t, OtherDefault, *card.Defaults)

	first := card.Entries[0]
	assert.Equal(t, "PG-13", first.Episode)
	assert.Equal(t, "PG-13", first.OfficialRating)
	assert.Equal(t, "2010", first.Number)
	assert.Equal(t, "X", first.Studio)
	assert.Empty(t, first.Rating, "absent rating is omitted")

	assert.Equal(t, "Pixar", card.Entries[1].Studio)
}

func TestFormat_RuntimeAndRating(t *testing.T) {
	f := newTestFormatter(&stubImages{})

	records := []domain.MediaRecord{
		{ID: "1", Type: "Movie", RunTimeTicks: int64Ptr(27_000_000_000), CommunityRating: float64Ptr(7)},
		{ID: "2", Type: "Movie", RunTimeTicks: int64Ptr(599_999_999)},
		{ID: "3", Type: "Movie"},
	}

	card := f.Format(records, KindMovie)
	assert.Equal(t, domain.RuntimeMinutes(45), card.Entries[0].Runtime)
	assert.Equal(t, "★ 7.0", card.Entries[0].Rating)
	assert.Equal(t, domain.RuntimeMinutes(0), card.Entries[1].Runtime)

	_, known := card.Entries[2].Runtime.Minutes()
	assert.False(t, known)
	assert.Empty(t, card.Entries[2].Rating)

	data, err := json.Marshal(card.Entries[2])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runtime":""`)
	assert.NotContains(t, string(data), `"rating"`)

	data, err = json.Marshal(card.Entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runtime":45`)
}

func TestFormat_UseBackdrop(t *testing.T) {
	images := &stubImages{}
	f := newTestFormatter(images, WithBackdrop(true))

	card := f.Format([]domain.MediaRecord{{ID: "m1", Type: "Movie"}}, KindMovie)
	assert.Equal(t, "img:Backdrop/fanart/movie/background/1", card.Entries[0].Poster)
	assert.Equal(t, card.Entries[0].Fanart, card.Entries[0].Poster)
	assert.Len(t, images.calls, 1)
}

func TestFormat_Idempotent(t *testing.T) {
	f := newTestFormatter(&stubImages{})
	records := []domain.MediaRecord{
		{ID: "m1", Name: "A", Type: "Movie", PremiereDate: "2020-01-01T00:00:00Z", Genres: []string{"Drama"}},
		{ID: "m2", Name: "B", Type: "Movie"},
	}

	first := f.Format(records, KindMovie)
	second := f.Format(records, KindMovie)
	assert.Equal(t, first, second)
	assert.Nil(t, records[1].Images, "formatting does not touch records")
}

func TestFormat_ArtworkRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	cdn := cdnStub{}
	resolver := artwork.NewResolver(baseDir, cdn, nil)
	f := newTestFormatter(resolver)

	withBytes := domain.MediaRecord{ID: "m1", Name: "A", Type: "Movie"}
	withBytes.SetImageBytes("Primary_bytes", []byte("poster-jpeg"))
	withBytes.SetImageBytes("Backdrop_bytes", []byte{})
	withoutBytes := domain.MediaRecord{ID: "m2", Name: "B", Type: "Movie",
		ProviderIDs: map[string]string{"Tvdb": "12345"}}

	card := f.Format([]domain.MediaRecord{withBytes, withoutBytes}, KindMovie)

	assert.Equal(t, "/local/community/jellyfin_upcoming_media/poster_movie_1.jpg", card.Entries[0].Poster)
	assert.Equal(t, "cdn:|background|movies", card.Entries[0].Fanart)
	assert.Equal(t, "cdn:12345|poster|movies", card.Entries[1].Poster)
}

type cdnStub struct{}

func (cdnStub) FallbackImageURL(externalID, imageKind, mediaKind string) string {
	return "cdn:" + externalID + "|" + imageKind + "|" + mediaKind
}
