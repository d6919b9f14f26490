package card

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

// Kind classifies a record list for formatting
type Kind string

const (
	KindTVEpisode Kind = "tv-episode"
	KindTVShow    Kind = "tv-show"
	KindMovie     Kind = "movie"
	KindMusic     Kind = "music"
	KindOther     Kind = "other"
)

// ticksPerMinute converts Jellyfin's 100ns ticks to minutes
const ticksPerMinute = 10 * 1_000_000 * 60

// ImageResolver resolves one artwork slot of a record to a URL
type ImageResolver interface {
	Resolve(record domain.MediaRecord, jellyfinImageKey, upcomingKind, libraryKind, cdnImageKind string, seq int) string
}

// DeepLinker builds links into the Jellyfin web client
type DeepLinker interface {
	DeepLink(itemID string) string
}

// InferKind classifies records by the Type of the first one
func InferKind(records []domain.MediaRecord) Kind {
	if len(records) == 0 {
		return KindOther
	}
	switch records[0].Type {
	case domain.ItemTypeEpisode:
		return KindTVEpisode
	case domain.ItemTypeSeries:
		return KindTVShow
	case domain.ItemTypeMovie:
		return KindMovie
	case domain.ItemTypeMusicAlbum, domain.ItemTypeAudio:
		return KindMusic
	default:
		return KindOther
	}
}

// imageSlot names where artwork comes from and how it is stored
type imageSlot struct {
	jellyfinKey  string // "Primary", "Primary_parent", "Backdrop"
	upcomingKind string // "poster" or "fanart"
	cdnKind      string // "poster" or "background"
}

// mapping holds the per-kind field rules
type mapping struct {
	template    domain.Template
	libraryKind string
	title       func(domain.MediaRecord) string
	number      func(domain.MediaRecord) string
	studio      func(domain.MediaRecord) string
	release     func(domain.MediaRecord) string
	episode     func(domain.MediaRecord) string
	official    bool
	poster      imageSlot
	fanart      imageSlot
}

var (
	posterSlot = imageSlot{jellyfinKey: "Primary", upcomingKind: "poster", cdnKind: "poster"}
	fanartSlot = imageSlot{jellyfinKey: "Backdrop", upcomingKind: "fanart", cdnKind: "background"}
)

var mappings = map[Kind]mapping{
	KindTVEpisode: {
		template:    TVDefault,
		libraryKind: "episode",
		title:       seriesTitle,
		number:      episodeNumber,
		release:     premiereRelease,
		episode:     func(r domain.MediaRecord) string { return r.Name },
		poster:      imageSlot{jellyfinKey: "Primary_parent", upcomingKind: "poster", cdnKind: "poster"},
		fanart:      imageSlot{jellyfinKey: "Primary", upcomingKind: "fanart", cdnKind: "background"},
	},
	KindTVShow: {
		template:    TVAlternate,
		libraryKind: "show",
		title:       itemTitle,
		number:      seasonCount,
		release:     premiereRelease,
		poster:      posterSlot,
		fanart:      fanartSlot,
	},
	KindMovie: {
		template:    MovieDefault,
		libraryKind: "movie",
		title:       itemTitle,
		studio:      firstStudio,
		release:     premiereRelease,
		poster:      posterSlot,
		fanart:      fanartSlot,
	},
	KindMusic: {
		template:    MusicDefault,
		libraryKind: "music",
		title:       itemTitle,
		number:      numberOrYear,
		studio:      artists,
		release:     musicRelease,
		poster:      posterSlot,
		fanart:      fanartSlot,
	},
	KindOther: {
		template:    OtherDefault,
		libraryKind: "other",
		title:       itemTitle,
		number:      numberOrYear,
		studio:      studioOrArtists,
		release:     premiereRelease,
		episode:     func(r domain.MediaRecord) string { return r.OfficialRating },
		official:    true,
		poster:      posterSlot,
		fanart:      fanartSlot,
	},
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock sets the time source used for missing air dates.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		f.now = now
	}
}

// WithBackdrop puts the fanart image in the poster slot.
func WithBackdrop(useBackdrop bool) Option {
	return func(f *Formatter) {
		f.useBackdrop = useBackdrop
	}
}

// Formatter maps media records to upcoming-media card entries
type Formatter struct {
	images      ImageResolver
	links       DeepLinker
	now         func() time.Time
	useBackdrop bool
}

// NewFormatter creates a formatter
func NewFormatter(images ImageResolver, links DeepLinker, options ...Option) *Formatter {
	f := &Formatter{
		images: images,
		links:  links,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Format builds the card for records. No records yields an empty card.
func (f *Formatter) Format(records []domain.MediaRecord, kind Kind) domain.Card {
	if len(records) == 0 {
		return domain.Card{}
	}

	m, ok := mappings[kind]
	if !ok {
		m = mappings[KindOther]
	}

	defaults := m.template
	card := domain.Card{
		Defaults: &defaults,
		Entries:  make([]domain.CardEntry, 0, len(records)),
	}

	for i, record := range records {
		// position 0 is the defaults entry
		card.Entries = append(card.Entries, f.entry(m, record, i+1))
	}
	return card
}

// Attributes formats records with their inferred kind
func (f *Formatter) Attributes(records []domain.MediaRecord) domain.Attributes {
	return domain.NewAttributes(f.Format(records, InferKind(records)))
}

func (f *Formatter) entry(m mapping, record domain.MediaRecord, seq int) domain.CardEntry {
	entry := domain.CardEntry{
		Title:    m.title(record),
		Release:  m.release(record),
		Runtime:  runtime(record),
		Rating:   rating(record),
		DeepLink: f.links.DeepLink(record.ID),
		Trailer:  record.FirstTrailerURL(),
		Summary:  record.Overview,
		Airdate:  f.airdate(record),
	}
	if len(record.Genres) > 0 {
		entry.Genres = slices.Clone(record.Genres)
	}
	if m.number != nil {
		entry.Number = m.number(record)
	}
	if m.studio != nil {
		entry.Studio = m.studio(record)
	}
	if m.episode != nil {
		entry.Episode = m.episode(record)
	}
	if m.official {
		entry.OfficialRating = record.OfficialRating
	}

	entry.Fanart = f.resolve(record, m.fanart, m.libraryKind, seq)
	if f.useBackdrop {
		entry.Poster = entry.Fanart
	} else {
		entry.Poster = f.resolve(record, m.poster, m.libraryKind, seq)
	}
	return entry
}

func (f *Formatter) resolve(record domain.MediaRecord, slot imageSlot, libraryKind string, seq int) string {
	return f.images.Resolve(record, slot.jellyfinKey, slot.upcomingKind, libraryKind, slot.cdnKind, seq)
}

func (f *Formatter) airdate(record domain.MediaRecord) string {
	if record.PremiereDate != "" {
		return record.PremiereDate
	}
	return f.now().Format(time.RFC3339)
}

func runtime(record domain.MediaRecord) domain.Runtime {
	if record.RunTimeTicks == nil {
		return domain.Runtime{}
	}
	return domain.RuntimeMinutes(int(*record.RunTimeTicks / ticksPerMinute))
}

func rating(record domain.MediaRecord) string {
	if record.CommunityRating == nil {
		return ""
	}
	return fmt.Sprintf("★ %.1f", *record.CommunityRating)
}

func itemTitle(record domain.MediaRecord) string {
	return record.Name
}

func seriesTitle(record domain.MediaRecord) string {
	if record.SeriesName == "" {
		return record.Name
	}
	return record.SeriesName
}

func premiereRelease(record domain.MediaRecord) string {
	t, ok := record.PremieredAt()
	if !ok {
		return ""
	}
	return "Released " + t.Format(time.DateOnly)
}

func musicRelease(record domain.MediaRecord) string {
	if release := premiereRelease(record); release != "" {
		return release
	}
	if record.ProductionYear != nil {
		return "Released " + strconv.Itoa(*record.ProductionYear)
	}
	return ""
}

func seasonEpisode(record domain.MediaRecord) (string, bool) {
	if record.ParentIndexNumber == nil || record.IndexNumber == nil {
		return "", false
	}
	return fmt.Sprintf("S%02dE%02d", *record.ParentIndexNumber, *record.IndexNumber), true
}

func episodeNumber(record domain.MediaRecord) string {
	if code, ok := seasonEpisode(record); ok {
		return code
	}
	if record.ParentIndexNumber != nil {
		return fmt.Sprintf("Season %d Special", *record.ParentIndexNumber)
	}
	return ""
}

func seasonCount(record domain.MediaRecord) string {
	if code, ok := seasonEpisode(record); ok {
		return code
	}
	if record.ChildCount == nil {
		return ""
	}
	if *record.ChildCount > 1 {
		return fmt.Sprintf("%d seasons", *record.ChildCount)
	}
	return fmt.Sprintf("%d season", *record.ChildCount)
}

func numberOrYear(record domain.MediaRecord) string {
	if code, ok := seasonEpisode(record); ok {
		return code
	}
	if record.ProductionYear != nil {
		return strconv.Itoa(*record.ProductionYear)
	}
	return ""
}

func firstStudio(record domain.MediaRecord) string {
	if len(record.Studios) == 0 {
		return ""
	}
	return record.Studios[0].Name
}

func artists(record domain.MediaRecord) string {
	names := record.Artists
	if len(names) > 3 {
		names = names[:3]
	}
	return strings.Join(names, ", ")
}

func studioOrArtists(record domain.MediaRecord) string {
	if studio := firstStudio(record); studio != "" {
		return studio
	}
	return artists(record)
}
