package sensor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

// Formatter renders records into the sensor attribute payload
type Formatter interface {
	Attributes(records []domain.MediaRecord) domain.Attributes
}

// LibrarySensor exposes the latest items of one library (or one group of
// same-type libraries) as a state string plus card attributes.
type LibrarySensor struct {
	category  domain.LibraryCategory
	label     string
	fetcher   domain.LatestFetcher
	formatter Formatter
	logger    *slog.Logger

	mu          sync.RWMutex
	state       string
	records     []domain.MediaRecord
	restored    *domain.Attributes // served until the first successful Update
	lastUpdated time.Time
}

// NewLibrarySensor creates a sensor for category. Grouped categories are
// labelled by their collection type ("TV Shows"), others by library name.
func NewLibrarySensor(category domain.LibraryCategory, fetcher domain.LatestFetcher, formatter Formatter, logger *slog.Logger) *LibrarySensor {
	label := sensorLabel(category)
	if logger == nil {
		logger = slog.Default()
	}
	return &LibrarySensor{
		category:  category,
		label:     label,
		fetcher:   fetcher,
		formatter: formatter,
		logger:    logger.With("component", "sensor", "entity_id", EntityID(label)),
	}
}

func sensorLabel(category domain.LibraryCategory) string {
	if category.IsGrouped() {
		return category.DisplayType()
	}
	return category.Name
}

// Name returns "Latest <label> on Jellyfin"
func (s *LibrarySensor) Name() string {
	return fmt.Sprintf("Latest %s on Jellyfin", s.label)
}

// FriendlyName returns "Jellyfin Latest Media <label>"
func (s *LibrarySensor) FriendlyName() string {
	return "Jellyfin Latest Media " + s.label
}

// EntityID returns the sensor's entity id
func (s *LibrarySensor) EntityID() string {
	return EntityID(s.label)
}

// Category returns the library category backing the sensor
func (s *LibrarySensor) Category() domain.LibraryCategory {
	return s.category
}

// State returns the last state, "" before the first refresh
func (s *LibrarySensor) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Records returns a copy of the stored records
func (s *LibrarySensor) Records() []domain.MediaRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// LastUpdated returns when data was last replaced
func (s *LibrarySensor) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Attributes formats the stored records. It is recomputed on every call,
// except for restored data which carries no image bytes and is served as saved.
func (s *LibrarySensor) Attributes() domain.Attributes {
	s.mu.RLock()
	restored := s.restored
	records := slices.Clone(s.records)
	s.mu.RUnlock()

	if restored != nil {
		return *restored
	}
	return s.formatter.Attributes(records)
}

// Snapshot returns what the host exposes for this sensor
func (s *LibrarySensor) Snapshot() domain.SensorSnapshot {
	return domain.SensorSnapshot{
		EntityID:     s.EntityID(),
		Name:         s.Name(),
		FriendlyName: s.FriendlyName(),
		State:        s.State(),
		Attributes:   s.Attributes(),
	}
}

// Restore seeds data persisted by an earlier run. The state is left alone.
func (s *LibrarySensor) Restore(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(snapshot.Records)
	s.lastUpdated = snapshot.SavedAt
	s.restored = nil
	if len(snapshot.Attributes.Data) > 0 {
		attrs := snapshot.Attributes
		s.restored = &attrs
	}
}

// Update runs one refresh cycle. On success the state becomes "Online" and
// the data is replaced; on failure the previous data is kept and the state
// reports why.
func (s *LibrarySensor) Update(ctx context.Context) error {
	records, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = s.failureState(err)
		s.logger.Error("refresh failed", "state", s.state, "error", err)
		return err
	}

	s.state = domain.StateOnline
	s.records = records
	s.restored = nil
	s.lastUpdated = time.Now()
	s.logger.Debug("refreshed", "items", len(records))
	return nil
}

// fetch loads records for every library id of the category. Grouped results
// are merged newest first.
func (s *LibrarySensor) fetch(ctx context.Context) ([]domain.MediaRecord, error) {
	if !s.category.IsGrouped() {
		return s.fetcher.FetchLatest(ctx, s.category.ID)
	}

	var merged []domain.MediaRecord
	for _, id := range s.category.IDs() {
		records, err := s.fetcher.FetchLatest(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", id, err)
		}
		merged = append(merged, records...)
	}

	slices.SortStableFunc(merged, func(a, b domain.MediaRecord) int {
		return compareCreated(b, a)
	})
	return merged, nil
}

// failureState maps a refresh error to the state string
func (s *LibrarySensor) failureState(err error) string {
	if errors.Is(err, domain.ErrServerOffline) {
		if status := s.fetcher.Status(); status != "" && status != domain.StateOnline {
			return status
		}
	}
	return domain.StateError
}

// compareCreated orders records by DateCreated; unparseable values fall back
// to comparing the raw strings.
func compareCreated(a, b domain.MediaRecord) int {
	ta, okA := a.CreatedAt()
	tb, okB := b.CreatedAt()
	if okA && okB {
		return ta.Compare(tb)
	}
	return cmp.Compare(strings.TrimSpace(a.DateCreated), strings.TrimSpace(b.DateCreated))
}
