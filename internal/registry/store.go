package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coastlineai/sentinel/pkg/logging"
)

// snapshot is an immutable view of the registry. Readers always see a
// consistent, fully-built snapshot; writers build a new one and swap the
// pointer rather than mutating in place.
type snapshot struct {
	resources     map[string]Resource
	fabrications  []KnownFabrication
	generatedAt   time.Time
}

func newSnapshot() *snapshot {
	return &snapshot{resources: make(map[string]Resource)}
}

// PostgresLoader loads and persists registry state. Implemented by
// *PostgresStore; kept as an interface so Store can be tested with pgxmock
// or an in-memory fake without a live database.
type PostgresLoader interface {
	LoadResources(ctx context.Context) ([]Resource, error)
	LoadFabrications(ctx context.Context) ([]KnownFabrication, error)
	SaveResource(ctx context.Context, r Resource) error
	AppendVerificationEvent(ctx context.Context, e VerificationEvent) error
}

// SnapshotMirror is a best-effort warm-start cache for the registry
// snapshot, backed by Redis. Failures to read or write the mirror never
// fail a registry operation.
type SnapshotMirror interface {
	Save(ctx context.Context, resources []Resource, fabrications []KnownFabrication) error
	Load(ctx context.Context) ([]Resource, []KnownFabrication, error)
}

// Store is the process-scoped Resource Registry singleton: read-shared,
// single-writer, with copy-on-swap snapshots so readers never observe torn
// state.
type Store struct {
	mu       sync.RWMutex
	snap     *snapshot
	db       PostgresLoader
	mirror   SnapshotMirror
	logger   *logging.Logger
	staleAfter time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithMirror attaches a Redis-backed snapshot mirror.
func WithMirror(m SnapshotMirror) Option {
	return func(s *Store) { s.mirror = m }
}

// WithStaleAfter overrides the verification staleness threshold (default 30 days).
func WithStaleAfter(d time.Duration) Option {
	return func(s *Store) { s.staleAfter = d }
}

// NewStore builds a Store backed by db. The snapshot is empty until Load is
// called; callers must Load before serving traffic.
func NewStore(db PostgresLoader, logger *logging.Logger, opts ...Option) *Store {
	if db == nil {
		panic("registry: postgres loader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Store{
		snap:       newSnapshot(),
		db:         db,
		logger:     logger,
		staleAfter: 30 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load rebuilds the snapshot from Postgres and swaps it in atomically. On
// success it mirrors the snapshot to Redis (best effort). This is the only
// path that may insert into the registry without going through Upsert, and
// it still validates every resource against the fabrication list before the
// swap.
func (s *Store) Load(ctx context.Context) error {
	resources, err := s.db.LoadResources(ctx)
	if err != nil {
		return fmt.Errorf("registry: load resources: %w", err)
	}
	fabrications, err := s.db.LoadFabrications(ctx)
	if err != nil {
		return fmt.Errorf("registry: load fabrications: %w", err)
	}

	next := newSnapshot()
	next.fabrications = fabrications
	next.generatedAt = time.Now().UTC()

	for _, r := range resources {
		if r.Status == StatusActive && len(r.Channels) == 0 {
			return fmt.Errorf("registry: %w: active resource %q has no channels", ErrCorrupt, r.ID)
		}
		for _, c := range r.Channels {
			if fab, ok := matchFabrication(fabrications, c.Value); ok {
				s.logger.Warn("registry: resource channel conflicts with known fabrication, forcing degraded",
					"resource_id", r.ID, "value", c.Value, "fabrication_notes", fab.Notes)
				r.Status = StatusDegraded
			}
		}
		next.resources[r.ID] = r
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.Save(ctx, resources, fabrications); err != nil {
			s.logger.Warn("registry: failed to mirror snapshot to redis", "error", err.Error())
		}
	}
	return nil
}

// WarmStartFromMirror populates the snapshot from the Redis mirror, for use
// when Postgres is briefly unavailable at process start. Returns an error if
// no mirror is configured or the mirror is empty.
func (s *Store) WarmStartFromMirror(ctx context.Context) error {
	if s.mirror == nil {
		return fmt.Errorf("registry: no snapshot mirror configured")
	}
	resources, fabrications, err := s.mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("registry: warm start from mirror: %w", err)
	}
	if len(resources) == 0 {
		return fmt.Errorf("registry: snapshot mirror is empty")
	}

	next := newSnapshot()
	next.fabrications = fabrications
	next.generatedAt = time.Now().UTC()
	for _, r := range resources {
		next.resources[r.ID] = r
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	return nil
}

// tier ranks a resource for ordering within a Lookup result: emergency
// services first, then general hotlines, then topic specialists.
func (r Resource) tier() int {
	if r.SituationType == SituationEmergency {
		return 0
	}
	for _, t := range r.TopicalTags {
		if t != TopicGeneral {
			return 2
		}
	}
	return 1
}

// Lookup returns active resources for region and situationType, ordered
// emergency-before-hotline-before-specialist, then by verification recency,
// then by name. An empty result is legal and must be handled by the caller.
func (s *Store) Lookup(region Region, situationType SituationType, topicalTag TopicalTag) []Resource {
	region = region.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Resource
	for _, r := range s.snap.resources {
		if r.Status == StatusRetired {
			continue
		}
		if r.Status != StatusActive && r.Status != StatusDegraded {
			continue
		}
		if r.Region != region {
			continue
		}
		if r.SituationType != situationType {
			continue
		}
		if topicalTag != "" && !hasTag(r.TopicalTags, topicalTag) {
			continue
		}
		matches = append(matches, r)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ti, tj := matches[i].tier(), matches[j].tier()
		if ti != tj {
			return ti < tj
		}
		if !matches[i].VerifiedOn.Equal(matches[j].VerifiedOn) {
			return matches[i].VerifiedOn.After(matches[j].VerifiedOn)
		}
		return matches[i].ServiceName < matches[j].ServiceName
	})
	return matches
}

func hasTag(tags []TopicalTag, want TopicalTag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// IsFabrication tests value against the fabrication blocklist. When fabricated
// and the resource's region is known, it also returns a suggested verified
// alternative drawn from the registry for that region/situation.
func (s *Store) IsFabrication(value string, kind ChannelKind, region Region, situationType SituationType) (fabricated bool, alternative *Resource) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := matchFabrication(s.snap.fabrications, value)
	if !ok {
		return false, nil
	}

	alts := s.lookupLocked(region.Normalize(), situationType, "")
	if len(alts) > 0 {
		alt := alts[0]
		return true, &alt
	}
	return true, nil
}

func (s *Store) lookupLocked(region Region, situationType SituationType, topicalTag TopicalTag) []Resource {
	var matches []Resource
	for _, r := range s.snap.resources {
		if r.Status == StatusRetired || r.Region != region || r.SituationType != situationType {
			continue
		}
		if topicalTag != "" && !hasTag(r.TopicalTags, topicalTag) {
			continue
		}
		matches = append(matches, r)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].tier() < matches[j].tier()
	})
	return matches
}

func matchFabrication(fabrications []KnownFabrication, value string) (KnownFabrication, bool) {
	for _, f := range fabrications {
		if f.Value == value {
			return f, true
		}
	}
	return KnownFabrication{}, false
}

// UpsertResource writes r through the single controlled writer path.
// Refuses if any channel value is a known fabrication, or if VerifiedOn is
// older than the staleness threshold. An empty Status is stored as active.
func (s *Store) UpsertResource(ctx context.Context, r Resource) error {
	s.mu.RLock()
	fabrications := s.snap.fabrications
	s.mu.RUnlock()

	for _, c := range r.Channels {
		if _, ok := matchFabrication(fabrications, c.Value); ok {
			return fmt.Errorf("registry: channel %q: %w", c.Value, ErrFabricationConflict)
		}
	}
	if time.Since(r.VerifiedOn) > s.staleAfter {
		return fmt.Errorf("registry: verified_on %s: %w", r.VerifiedOn.Format("2006-01-02"), ErrStaleVerification)
	}
	if r.NextVerificationDue.IsZero() {
		r.NextVerificationDue = r.VerifiedOn.Add(s.staleAfter)
	}
	if r.Status == "" {
		r.Status = StatusActive
	}

	if err := s.db.SaveResource(ctx, r); err != nil {
		return fmt.Errorf("registry: save resource: %w", err)
	}

	s.mu.Lock()
	next := newSnapshot()
	next.fabrications = s.snap.fabrications
	next.generatedAt = time.Now().UTC()
	for id, existing := range s.snap.resources {
		next.resources[id] = existing
	}
	next.resources[r.ID] = r
	s.snap = next
	s.mu.Unlock()

	return nil
}

// RecordVerification appends e and updates the target resource accordingly:
// on outcome OK, advances verified_on/next_verification_due; otherwise marks
// the resource degraded and schedules a recheck in 24h.
func (s *Store) RecordVerification(ctx context.Context, e VerificationEvent) error {
	if err := s.db.AppendVerificationEvent(ctx, e); err != nil {
		return fmt.Errorf("registry: append verification event: %w", err)
	}

	s.mu.RLock()
	r, ok := s.snap.resources[e.ResourceID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("registry: verification target: %w", ErrNotFound)
	}

	if e.Outcome == OutcomeOK {
		r.VerifiedOn = e.AttemptAt
		r.NextVerificationDue = e.AttemptAt.Add(s.staleAfter)
		r.Status = StatusActive
	} else {
		r.Status = StatusDegraded
		r.NextVerificationDue = e.AttemptAt.Add(24 * time.Hour)
	}

	if err := s.db.SaveResource(ctx, r); err != nil {
		return fmt.Errorf("registry: persist verification outcome: %w", err)
	}

	s.mu.Lock()
	next := newSnapshot()
	next.fabrications = s.snap.fabrications
	next.generatedAt = time.Now().UTC()
	for id, existing := range s.snap.resources {
		next.resources[id] = existing
	}
	next.resources[r.ID] = r
	s.snap = next
	s.mu.Unlock()

	return nil
}

// Retire transitions a resource to retired. Requires an explicit operator
// action; the row stays present so historic crisis events still resolve.
func (s *Store) Retire(ctx context.Context, resourceID string) error {
	s.mu.RLock()
	r, ok := s.snap.resources[resourceID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("registry: retire target: %w", ErrNotFound)
	}
	r.Status = StatusRetired

	if err := s.db.SaveResource(ctx, r); err != nil {
		return fmt.Errorf("registry: persist retirement: %w", err)
	}

	s.mu.Lock()
	next := newSnapshot()
	next.fabrications = s.snap.fabrications
	next.generatedAt = time.Now().UTC()
	for id, existing := range s.snap.resources {
		next.resources[id] = existing
	}
	next.resources[resourceID] = r
	s.snap = next
	s.mu.Unlock()
	return nil
}

// EmergencyFallback returns the region's hard-coded emergency resource, used
// when Lookup yields an empty result for the emergency situation type. It is
// always drawn from the snapshot, never invented.
func (s *Store) EmergencyFallback(region Region) (Resource, bool) {
	results := s.Lookup(region.Normalize(), SituationEmergency, "")
	if len(results) == 0 {
		return Resource{}, false
	}
	return results[0], true
}

// DueForVerification returns active and degraded resources whose
// NextVerificationDue has passed asOf, ordered by how overdue they are. It is
// the batch re-verification job's work queue; Lookup stays caller-facing and
// never exposes the due date.
func (s *Store) DueForVerification(asOf time.Time) []Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []Resource
	for _, r := range s.snap.resources {
		if r.Status == StatusRetired {
			continue
		}
		if r.NextVerificationDue.IsZero() || r.NextVerificationDue.After(asOf) {
			continue
		}
		due = append(due, r)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextVerificationDue.Before(due[j].NextVerificationDue)
	})
	return due
}

// CulturalContext returns region-specific local slang / cultural markers to
// inform system-prompt construction. This is an internal registry query, not
// a tool-call directive: the model never invokes it directly.
func (s *Store) CulturalContext(region Region) []string {
	return culturalContexts[region.Normalize()]
}
