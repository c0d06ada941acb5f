package tick

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/domain/shared"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

const (
	staleAfter       = 60 * time.Second
	sweepInterval    = 30 * time.Second
	countInterval    = 5 * time.Second
	ingestInterval   = 1 * time.Second
	sweepLeaseTTL    = 29 * time.Second
	countLeaseTTL    = 4 * time.Second
)

// PresenceStore is the slice of the coordination store the connected-pilots
// manager needs.
type PresenceStore interface {
	AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMSet(ctx context.Context, key string, fields map[string]string) error
	HDel(ctx context.Context, key string, fields ...string) error
	HLen(ctx context.Context, key string) (int64, error)
	Publish(ctx context.Context, channel, message string) error
}

// presenceEntry mirrors one connected_pilots hash value.
type presenceEntry struct {
	ConnectedAt float64 `json:"connected_at"`
	LastSeenAt  float64 `json:"last_seen_at"`
}

// PresenceManager tracks which pilots have an active session, modeled on the
// teacher's ChannelTransportCoordinator: one buffered channel fed by the
// session layer, three independent loops draining/sweeping/reporting it (the
// sweep and the count report each run under a lease; the drain does not),
// and a mutex-guarded shutdown flag so Shutdown only ever closes its channel
// once.
type PresenceManager struct {
	store  PresenceStore
	logger *slog.Logger
	clock  shared.Clock

	activity chan flight.PilotID

	mu       sync.Mutex
	shutdown bool
}

// NewPresenceManager builds a manager with a buffered activity channel of
// the given capacity.
func NewPresenceManager(s PresenceStore, logger *slog.Logger, clock shared.Clock, bufferSize int) *PresenceManager {
	return &PresenceManager{
		store:    s,
		logger:   logger,
		clock:    clock,
		activity: make(chan flight.PilotID, bufferSize),
	}
}

// ReportActivity queues a liveness report for pilotID. The websocket session
// layer does not call it; its only callers are this package's tests.
// Non-blocking: a full buffer drops the report.
func (m *PresenceManager) ReportActivity(pilotID flight.PilotID) {
	select {
	case m.activity <- pilotID:
	default:
	}
}

// Shutdown closes the activity channel exactly once.
func (m *PresenceManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return
	}
	m.shutdown = true
	close(m.activity)
}

// Run starts the three sub-loops and blocks until ctx is cancelled.
func (m *PresenceManager) Run(ctx context.Context, clock shared.Clock) error {
	done := make(chan struct{}, 3)
	go func() { m.ingestLoop(ctx, clock); done <- struct{}{} }()
	go func() { m.sweepLoop(ctx, clock); done <- struct{}{} }()
	go func() { m.reportLoop(ctx, clock); done <- struct{}{} }()
	<-ctx.Done()
	<-done
	<-done
	<-done
	return ctx.Err()
}

func (m *PresenceManager) ingestLoop(ctx context.Context, clock shared.Clock) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		m.IngestBatch(ctx)
		clock.Sleep(ingestInterval)
	}
}

func (m *PresenceManager) sweepLoop(ctx context.Context, clock shared.Clock) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := m.SweepStale(ctx); err != nil {
			m.logger.Warn("presence: sweep failed", "error", err)
		}
		clock.Sleep(sweepInterval)
	}
}

func (m *PresenceManager) reportLoop(ctx context.Context, clock shared.Clock) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := m.ReportCount(ctx); err != nil {
			m.logger.Warn("presence: count report failed", "error", err)
		}
		clock.Sleep(countInterval)
	}
}

// IngestBatch drains everything currently buffered on the activity channel
// (non-blocking) and HSETs it into connected_pilots in one round trip.
func (m *PresenceManager) IngestBatch(ctx context.Context) {
	now := float64(m.clock.Now().Unix())
	fields := make(map[string]string)
drain:
	for {
		select {
		case pilotID, ok := <-m.activity:
			if !ok {
				break drain
			}
			fields[strconv.FormatInt(int64(pilotID), 10)] = encodePresence(now, now)
		default:
			break drain
		}
	}
	if len(fields) == 0 {
		return
	}
	if err := m.store.HMSet(ctx, store.KeyConnectedPilots, fields); err != nil {
		m.logger.Warn("presence: ingest HSET failed", "error", err)
	}
}

// SweepStale removes entries whose last_seen_at is older than staleAfter,
// under the connected_pilots_cleaner lease.
func (m *PresenceManager) SweepStale(ctx context.Context) error {
	won, err := m.store.AcquireLease(ctx, store.LeaseConnectedPilotsCleaner, sweepLeaseTTL)
	if err != nil {
		return fmt.Errorf("presence: acquire sweep lease: %w", err)
	}
	if !won {
		return nil
	}

	all, err := m.store.HGetAll(ctx, store.KeyConnectedPilots)
	if err != nil {
		return fmt.Errorf("presence: HGETALL: %w", err)
	}

	cutoff := float64(m.clock.Now().Add(-staleAfter).Unix())
	var stale []string
	for field, raw := range all {
		entry, err := decodePresence(raw)
		if err != nil {
			m.logger.Warn("presence: decode error, treating as stale", "field", field, "error", err)
			stale = append(stale, field)
			continue
		}
		if entry.LastSeenAt < cutoff {
			stale = append(stale, field)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return m.store.HDel(ctx, store.KeyConnectedPilots, stale...)
}

// ReportCount publishes the current connection count under the
// connected_pilots_counter lease.
func (m *PresenceManager) ReportCount(ctx context.Context) error {
	won, err := m.store.AcquireLease(ctx, store.LeaseConnectedPilotsCounter, countLeaseTTL)
	if err != nil {
		return fmt.Errorf("presence: acquire count lease: %w", err)
	}
	if !won {
		return nil
	}

	n, err := m.store.HLen(ctx, store.KeyConnectedPilots)
	if err != nil {
		return fmt.Errorf("presence: HLEN: %w", err)
	}
	return m.store.Publish(ctx, store.ChannelConnectedPilotsCount, strconv.FormatInt(n, 10))
}

func encodePresence(connectedAt, lastSeenAt float64) string {
	b, _ := json.Marshal(presenceEntry{ConnectedAt: connectedAt, LastSeenAt: lastSeenAt})
	return string(b)
}

func decodePresence(raw string) (presenceEntry, error) {
	var e presenceEntry
	err := json.Unmarshal([]byte(raw), &e)
	return e, err
}
