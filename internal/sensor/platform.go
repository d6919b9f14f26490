package sensor

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

// Client is the media server surface the platform needs
type Client interface {
	domain.CategoryLister
	domain.LatestFetcher
}

// Options controls which sensors are built
type Options struct {
	Include        []string // library names; empty keeps every supported library
	GroupLibraries bool     // one sensor per collection type
}

// Result is the outcome of refreshing one sensor
type Result struct {
	EntityID string
	State    string
	Items    int
	Err      error
}

// CycleReport describes one RefreshAll run
type CycleReport struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Results  []Result
}

// Failed returns the number of sensors that did not refresh
func (r CycleReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Platform discovers library sensors and refreshes them
type Platform struct {
	client    Client
	formatter Formatter
	store     domain.SnapshotStore
	opts      Options
	logger    *slog.Logger

	mu         sync.RWMutex
	sensors    []*LibrarySensor
	byID       map[string]*LibrarySensor
	discovered bool

	refreshing atomic.Bool
}

// NewPlatform creates a platform. store may be nil.
func NewPlatform(client Client, formatter Formatter, store domain.SnapshotStore, opts Options, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.Default()
	}
	return &Platform{
		client:    client,
		formatter: formatter,
		store:     store,
		opts:      opts,
		logger:    logger.With("component", "platform"),
		byID:      make(map[string]*LibrarySensor),
	}
}

// Discover lists the server's libraries and registers one sensor per
// selected library (or per collection type when grouping). Sensors are only
// created once. When the server cannot be reached and no sensors exist yet,
// categories saved by an earlier run are used instead.
func (p *Platform) Discover(ctx context.Context) error {
	categories, err := p.client.ListCategories(ctx)
	if err != nil {
		p.logger.Warn("library discovery failed", "state", p.client.Status(), "error", err)
		p.restoreCategories()
		return err
	}

	selected := SelectCategories(categories, p.opts, p.logger)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.discovered = true
	if len(p.sensors) > 0 {
		return nil
	}
	p.register(selected)

	if p.store != nil {
		p.pruneSnapshots()
		if err := p.store.SaveCategories(selected); err != nil {
			p.logger.Warn("failed to save categories", "error", err)
		}
	}
	p.logger.Info("discovered libraries", "sensors", len(p.sensors))
	return nil
}

// restoreCategories registers sensors from saved categories when none exist
func (p *Platform) restoreCategories() {
	if p.store == nil {
		return
	}
	categories, ok := p.store.GetCategories()
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sensors) > 0 {
		return
	}
	p.register(categories)
	p.logger.Info("restored sensors from saved categories", "sensors", len(p.sensors))
}

// register creates sensors for categories. Caller must hold p.mu.
func (p *Platform) register(categories []domain.LibraryCategory) {
	for _, category := range categories {
		s := NewLibrarySensor(category, p.client, p.formatter, p.logger)
		if _, exists := p.byID[s.EntityID()]; exists {
			p.logger.Warn("duplicate entity id, skipping library", "entity_id", s.EntityID(), "library", category.Name)
			continue
		}
		if p.store != nil {
			if snapshot, ok := p.store.GetSnapshot(s.EntityID()); ok {
				s.Restore(snapshot)
			}
		}
		p.sensors = append(p.sensors, s)
		p.byID[s.EntityID()] = s
	}
}

// pruneSnapshots drops snapshots of sensors from the previously saved
// category list that are no longer registered. Caller must hold p.mu.
func (p *Platform) pruneSnapshots() {
	previous, ok := p.store.GetCategories()
	if !ok {
		return
	}
	for _, category := range previous {
		entityID := EntityID(sensorLabel(category))
		if _, registered := p.byID[entityID]; registered {
			continue
		}
		p.store.DeleteSnapshot(entityID)
		p.logger.Info("removed snapshot of deselected library", "entity_id", entityID)
	}
}

// RefreshAll updates every sensor in turn, discovering first if needed.
// Only one cycle runs at a time; an overlapping call returns
// domain.ErrRefreshInProgress.
func (p *Platform) RefreshAll(ctx context.Context) (CycleReport, error) {
	if !p.refreshing.CompareAndSwap(false, true) {
		return CycleReport{}, domain.ErrRefreshInProgress
	}
	defer p.refreshing.Store(false)

	report := CycleReport{ID: uuid.NewString(), Started: time.Now()}
	logger := p.logger.With("cycle_id", report.ID)

	p.mu.RLock()
	discovered := p.discovered
	p.mu.RUnlock()

	if !discovered {
		if err := p.Discover(ctx); err != nil && len(p.Sensors()) == 0 {
			report.Finished = time.Now()
			return report, fmt.Errorf("discover libraries: %w", err)
		}
	}

	for _, s := range p.Sensors() {
		result := Result{EntityID: s.EntityID()}
		if err := s.Update(ctx); err != nil {
			result.Err = err
		} else {
			p.persist(logger, s, report.ID)
		}
		result.State = s.State()
		result.Items = len(s.Records())
		report.Results = append(report.Results, result)
	}

	report.Finished = time.Now()
	logger.Info("refresh cycle complete",
		"sensors", len(report.Results),
		"failed", report.Failed(),
		"duration", report.Finished.Sub(report.Started))
	return report, nil
}

// Refreshing reports whether a cycle is running
func (p *Platform) Refreshing() bool {
	return p.refreshing.Load()
}

func (p *Platform) persist(logger *slog.Logger, s *LibrarySensor, cycleID string) {
	if p.store == nil {
		return
	}
	snapshot := domain.Snapshot{
		Category:   s.Category(),
		Records:    s.Records(),
		Attributes: s.Attributes(),
		CycleID:    cycleID,
		SavedAt:    s.LastUpdated(),
	}
	if err := p.store.SaveSnapshot(s.EntityID(), snapshot); err != nil {
		logger.Warn("failed to save snapshot", "entity_id", s.EntityID(), "error", err)
	}
}

// Sensors returns the registered sensors in registration order
func (p *Platform) Sensors() []*LibrarySensor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.sensors)
}

// Sensor looks up a sensor by entity id
func (p *Platform) Sensor(entityID string) (*LibrarySensor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.byID[entityID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", entityID, domain.ErrSensorNotFound)
	}
	return s, nil
}

// SelectCategories keeps supported libraries, applies the include list and,
// when requested, merges libraries of the same collection type.
func SelectCategories(categories []domain.LibraryCategory, opts Options, logger *slog.Logger) []domain.LibraryCategory {
	supported := make([]domain.LibraryCategory, 0, len(categories))
	for _, c := range categories {
		if domain.IsSupportedCollection(c.CollectionType) {
			supported = append(supported, c)
		}
	}

	if len(opts.Include) > 0 {
		supported = filterIncluded(supported, opts.Include, logger)
	}

	if opts.GroupLibraries {
		return groupByCollection(supported)
	}
	return supported
}

// filterIncluded keeps libraries whose name is listed exactly. Listed names
// that match nothing are logged with the closest library name.
func filterIncluded(categories []domain.LibraryCategory, include []string, logger *slog.Logger) []domain.LibraryCategory {
	wanted := make(map[string]bool, len(include))
	for _, name := range include {
		wanted[name] = true
	}

	names := make([]string, 0, len(categories))
	present := make(map[string]bool, len(categories))
	kept := make([]domain.LibraryCategory, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
		present[c.Name] = true
		if wanted[c.Name] {
			kept = append(kept, c)
		}
	}

	if logger != nil {
		for _, name := range include {
			if present[name] {
				continue
			}
			if suggestion := suggestName(name, names); suggestion != "" {
				logger.Warn("included library not found", "name", name, "did_you_mean", suggestion)
			} else {
				logger.Warn("included library not found", "name", name)
			}
		}
	}
	return kept
}

// groupByCollection merges categories per collection type, sorted by type.
// The first member supplies the name and id; GroupedIDs holds every member id.
func groupByCollection(categories []domain.LibraryCategory) []domain.LibraryCategory {
	sorted := slices.Clone(categories)
	slices.SortStableFunc(sorted, func(a, b domain.LibraryCategory) int {
		return cmp.Compare(a.CollectionType, b.CollectionType)
	})

	var grouped []domain.LibraryCategory
	for _, c := range sorted {
		last := len(grouped) - 1
		if last >= 0 && grouped[last].CollectionType == c.CollectionType {
			if !slices.Contains(grouped[last].GroupedIDs, c.ID) {
				grouped[last].GroupedIDs = append(grouped[last].GroupedIDs, c.ID)
			}
			continue
		}
		c.GroupedIDs = []string{c.ID}
		grouped = append(grouped, c)
	}

	for i := range grouped {
		slices.Sort(grouped[i].GroupedIDs)
	}
	return grouped
}
