package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-01T18:30:00.0000000Z", time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC), true},
		{"2024-03-01T18:30:00.1234567", time.Date(2024, 3, 1, 18, 30, 0, 123456700, time.UTC), true},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"  ", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseServerTime(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}
}

func TestRuntime_UnmarshalLegacyString(t *testing.T) {
	var r Runtime
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &r))
	m, ok := r.Minutes()
	assert.True(t, ok)
	assert.Equal(t, 42, m)

	require.NoError(t, json.Unmarshal([]byte(`""`), &r))
	_, ok = r.Minutes()
	assert.False(t, ok)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &r))
}

func TestCard_Data(t *testing.T) {
	assert.Nil(t, Card{}.Data())
	assert.Equal(t, Attributes{}, NewAttributes(Card{}))

	card := Card{
		Defaults: &Template{TitleDefault: "$title"},
		Entries:  []CardEntry{{Title: "A"}, {Title: "B"}},
	}
	data := card.Data()
	require.Len(t, data, 3)
	assert.Equal(t, Template{TitleDefault: "$title"}, data[0])
	assert.Equal(t, "B", data[2].(CardEntry).Title)

	attrs := NewAttributes(card)
	assert.Equal(t, Attribution, attrs.Attribution)
}

func TestLibraryCategory(t *testing.T) {
	single := LibraryCategory{ID: "x", Name: "Films", CollectionType: CollectionMovies}
	assert.False(t, single.IsGrouped())
	assert.Equal(t, []string{"x"}, single.IDs())
	assert.Equal(t, "Movies", single.DisplayType())

	grouped := LibraryCategory{ID: "a", CollectionType: CollectionTVShows, GroupedIDs: []string{"a", "b"}}
	assert.Equal(t, []string{"a", "b"}, grouped.IDs())
	assert.Equal(t, "TV Shows", grouped.DisplayType())

	assert.True(t, IsSupportedCollection(CollectionMusic))
	assert.False(t, IsSupportedCollection("boxsets"))
}

func TestMediaRecord_Images(t *testing.T) {
	var r MediaRecord
	assert.Nil(t, r.ImageBytes(ImageKey("Primary", false)))

	r.SetImageBytes(ImageKey("Primary", true), []byte{1, 2})
	assert.Equal(t, []byte{1, 2}, r.ImageBytes("Primary_parent_bytes"))

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Primary")
}
