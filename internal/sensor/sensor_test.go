package sensor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/log"
)

// fakeClient serves canned categories and records
type fakeClient struct {
	mu         sync.Mutex
	categories []domain.LibraryCategory
	listErr    error
	latest     map[string][]domain.MediaRecord
	failIDs    map[string]error
	status     string
	fetched    []string
	block      chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		latest:  make(map[string][]domain.MediaRecord),
		failIDs: make(map[string]error),
	}
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]domain.LibraryCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		f.status = domain.UnreachableState("jf.local")
		return nil, f.listErr
	}
	f.status = domain.StateOnline
	return f.categories, nil
}

func (f *fakeClient) FetchLatest(ctx context.Context, parentID string) ([]domain.MediaRecord, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, parentID)
	if err := f.failIDs[parentID]; err != nil {
		f.status = domain.UnreachableState("jf.local")
		return nil, err
	}
	f.status = domain.StateOnline
	return f.latest[parentID], nil
}

func (f *fakeClient) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// countingFormatter records how many times attributes were built
type countingFormatter struct {
	mu    sync.Mutex
	calls int
}

func (c *countingFormatter) Attributes(records []domain.MediaRecord) domain.Attributes {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if len(records) == 0 {
		return domain.Attributes{}
	}
	data := make([]any, 0, len(records))
	for _, r := range records {
		data = append(data, r.ID)
	}
	return domain.Attributes{Data: data, Attribution: domain.Attribution}
}

func offline(id string) error {
	return fmt.Errorf("%s: %w", id, domain.ErrServerOffline)
}

func TestLibrarySensor_Naming(t *testing.T) {
	s := NewLibrarySensor(domain.LibraryCategory{ID: "1", Name: "Kids' Movies", CollectionType: "movies"},
		newFakeClient(), &countingFormatter{}, log.NullLogger())
	assert.Equal(t, "Latest Kids' Movies on Jellyfin", s.Name())
	assert.Equal(t, "Jellyfin Latest Media Kids' Movies", s.FriendlyName())
	assert.Equal(t, "sensor.jellyfin_latest_kids_movies", s.EntityID())

	grouped := NewLibrarySensor(domain.LibraryCategory{ID: "1", Name: "Anime", CollectionType: "tvshows",
		GroupedIDs: []string{"1", "2"}}, newFakeClient(), &countingFormatter{}, log.NullLogger())
	assert.Equal(t, "Latest TV Shows on Jellyfin", grouped.Name())
	assert.Equal(t, "sensor.jellyfin_latest_tv_shows", grouped.EntityID())
}

func TestLibrarySensor_UpdateOnline(t *testing.T) {
	client := newFakeClient()
	client.latest["lib"] = []domain.MediaRecord{{ID: "a"}, {ID: "b"}}
	formatter := &countingFormatter{}

	s := NewLibrarySensor(domain.LibraryCategory{ID: "lib", Name: "Movies", CollectionType: "movies"},
		client, formatter, log.NullLogger())
	assert.Equal(t, "", s.State())

	require.NoError(t, s.Update(context.Background()))
	assert.Equal(t, domain.StateOnline, s.State())
	assert.Len(t, s.Records(), 2)
	assert.False(t, s.LastUpdated().IsZero())

	// attributes are rebuilt on every read
	s.Attributes()
	s.Attributes()
	assert.Equal(t, 2, formatter.calls)

	snap := s.Snapshot()
	assert.Equal(t, "sensor.jellyfin_latest_movies", snap.EntityID)
	assert.Equal(t, domain.StateOnline, snap.State)
	assert.Equal(t, []any{"a", "b"}, snap.Attributes.Data)
}

func TestLibrarySensor_UnreachableKeepsData(t *testing.T) {
	client := newFakeClient()
	client.latest["lib"] = []domain.MediaRecord{{ID: "a"}}

	s := NewLibrarySensor(domain.LibraryCategory{ID: "lib", Name: "Movies", CollectionType: "movies"},
		client, &countingFormatter{}, log.NullLogger())
	require.NoError(t, s.Update(context.Background()))

	client.failIDs["lib"] = offline("lib")
	err := s.Update(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, "jf.local cannot be reached", s.State())
	require.Len(t, s.Records(), 1, "previous data is preserved")
	assert.Equal(t, "a", s.Records()[0].ID)
}

func TestLibrarySensor_OtherErrorState(t *testing.T) {
	client := newFakeClient()
	client.failIDs["lib"] = fmt.Errorf("decode: %w", domain.ErrBadResponse)

	s := NewLibrarySensor(domain.LibraryCategory{ID: "lib", Name: "Movies", CollectionType: "movies"},
		client, &countingFormatter{}, log.NullLogger())
	assert.Error(t, s.Update(context.Background()))
	assert.Equal(t, domain.StateError, s.State())
}

func TestLibrarySensor_GroupedMergeSortsNewestFirst(t *testing.T) {
	client := newFakeClient()
	client.latest["a"] = []domain.MediaRecord{
		{ID: "a-old", DateCreated: "2024-01-01T00:00:00.0000000Z"},
		{ID: "a-new", DateCreated: "2024-03-01T00:00:00.0000000Z"},
	}
	client.latest["b"] = []domain.MediaRecord{
		{ID: "b-mid", DateCreated: "2024-02-01T00:00:00.0000000Z"},
	}

	s := NewLibrarySensor(domain.LibraryCategory{ID: "a", Name: "Movies", CollectionType: "movies",
		GroupedIDs: []string{"a", "b"}}, client, &countingFormatter{}, log.NullLogger())
	require.NoError(t, s.Update(context.Background()))

	var ids []string
	for _, r := range s.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a-new", "b-mid", "a-old"}, ids)
	assert.Equal(t, []string{"a", "b"}, client.fetched)
}

func TestLibrarySensor_GroupedFailureKeepsData(t *testing.T) {
	client := newFakeClient()
	client.latest["a"] = []domain.MediaRecord{{ID: "a1"}}
	client.latest["b"] = []domain.MediaRecord{{ID: "b1"}}

	s := NewLibrarySensor(domain.LibraryCategory{ID: "a", Name: "Movies", CollectionType: "movies",
		GroupedIDs: []string{"a", "b"}}, client, &countingFormatter{}, log.NullLogger())
	require.NoError(t, s.Update(context.Background()))

	client.failIDs["b"] = offline("b")
	assert.ErrorIs(t, s.Update(context.Background()), domain.ErrServerOffline)
	assert.Len(t, s.Records(), 2)
	assert.Equal(t, "jf.local cannot be reached", s.State())
}

func TestLibrarySensor_Restore(t *testing.T) {
	client := newFakeClient()
	client.latest["lib"] = []domain.MediaRecord{{ID: "new"}}
	formatter := &countingFormatter{}
	s := NewLibrarySensor(domain.LibraryCategory{ID: "lib", Name: "Movies", CollectionType: "movies"},
		client, formatter, log.NullLogger())

	saved := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Restore(domain.Snapshot{
		Records:    []domain.MediaRecord{{ID: "old"}},
		Attributes: domain.Attributes{Data: []any{"saved card"}, Attribution: domain.Attribution},
		SavedAt:    saved,
	})
	assert.Equal(t, "", s.State())
	assert.Equal(t, saved, s.LastUpdated())
	assert.Equal(t, []any{"saved card"}, s.Attributes().Data)
	assert.Equal(t, 0, formatter.calls, "saved attributes are served as is")

	require.NoError(t, s.Update(context.Background()))
	assert.Equal(t, []any{"new"}, s.Attributes().Data)
}

func TestLibrarySensor_RestoreWithoutAttributes(t *testing.T) {
	s := NewLibrarySensor(domain.LibraryCategory{ID: "lib", Name: "Movies", CollectionType: "movies"},
		newFakeClient(), &countingFormatter{}, log.NullLogger())

	s.Restore(domain.Snapshot{Records: []domain.MediaRecord{{ID: "old"}}})
	assert.Equal(t, []any{"old"}, s.Attributes().Data)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Movies":         "movies",
		"TV Shows":       "tv_shows",
		"Kids' Movies!":  "kids_movies",
		"Séries Télé":    "series_tele",
		"4K  -- Films":   "4k_films",
		"Music & Audio.": "music_audio",
		"_hidden":        "_hidden",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Slug(in))
		})
	}
	assert.Equal(t, "sensor.jellyfin_latest_tv_shows", EntityID("TV Shows"))
}

func TestSuggestName(t *testing.T) {
	names := []string{"Movies", "TV Shows", "Music"}
	assert.Equal(t, "Movies", suggestName("movies", names))
	assert.Equal(t, "TV Shows", suggestName("TV", names))
	assert.Equal(t, "Movies", suggestName("Moveis", names))
	assert.Equal(t, "", suggestName("Audiobooks Collection", names))
	assert.Equal(t, "", suggestName("x", nil))
}
