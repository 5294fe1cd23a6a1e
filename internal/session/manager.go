package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/config"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/events"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/observability"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/repository"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

var ErrNotFound = errors.New("session not found")

type Option func(*Manager)

// WithClock replaces the real clock, mainly so tests can drive the sweeper.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// Manager owns the dashboard sessions. Each session draws its series once on
// creation; control changes only recompute the view.
type Manager struct {
	cfg         *config.Config
	params      synth.Params
	repo        repository.SessionRepository
	broadcaster *events.Broadcaster
	metrics     *observability.Metrics
	clock       clockwork.Clock
	locks       *keyedLocks
	seq         atomic.Int64
	wg          sync.WaitGroup
}

func NewManager(cfg *config.Config, params synth.Params, repo repository.SessionRepository, broadcaster *events.Broadcaster, metrics *observability.Metrics, opts ...Option) *Manager {
	m := &Manager{
		cfg:         cfg,
		params:      params,
		repo:        repo,
		broadcaster: broadcaster,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		locks:       newKeyedLocks(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Params() synth.Params {
	return m.params
}

func (m *Manager) nextSeed() int64 {
	n := m.seq.Add(1) - 1
	if m.cfg.Synth.Seed != 0 {
		return m.cfg.Synth.Seed + n
	}
	return m.clock.Now().UnixNano() + n
}

func (m *Manager) generate(seed int64) (models.Series, error) {
	g, err := synth.NewGenerator(m.params, synth.NewSeeded(seed))
	if err != nil {
		return nil, err
	}
	m.metrics.SeriesGenerated.Inc()
	return g.Generate(), nil
}

func (m *Manager) Create(ctx context.Context) (*models.View, error) {
	seed := m.nextSeed()
	series, err := m.generate(seed)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	controls, _ := NormalizeControls(models.DefaultControls(), m.params)
	sess := &models.Session{
		ID:        uuid.NewString(),
		Seed:      seed,
		Series:    series,
		Controls:  controls,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.repo.Add(ctx, sess); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	m.metrics.ActiveSessions.Inc()
	slog.Info("session created", "session_id", sess.ID, "seed", seed)
	return m.render(sess), nil
}

func (m *Manager) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (m *Manager) View(ctx context.Context, id string) (*models.View, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.render(sess), nil
}

// UpdateControls applies a control change, stores it and publishes the new
// view to the session's subscribers.
func (m *Manager) UpdateControls(ctx context.Context, id string, c models.Controls) (*models.View, error) {
	controls, err := NormalizeControls(c, m.params)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.lock(id)
	defer unlock()

	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Controls = controls

	return m.save(ctx, sess)
}

// Regenerate replaces the session's series with a fresh draw.
func (m *Manager) Regenerate(ctx context.Context, id string) (*models.View, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	seed := m.nextSeed()
	series, err := m.generate(seed)
	if err != nil {
		return nil, err
	}
	sess.Seed = seed
	sess.Series = series

	return m.save(ctx, sess)
}

func (m *Manager) save(ctx context.Context, sess *models.Session) (*models.View, error) {
	sess.UpdatedAt = m.clock.Now()
	if err := m.repo.Update(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	view := m.render(sess)
	m.metrics.ViewUpdates.Inc()
	if m.broadcaster != nil {
		m.broadcaster.Broadcast(view)
	}
	slog.Debug("view updated", "session_id", sess.ID, "from", sess.Controls.From, "to", sess.Controls.To, "tier", view.Impact.Tier)
	return view, nil
}

func (m *Manager) render(sess *models.Session) *models.View {
	view := BuildView(sess)
	m.metrics.Classifications.WithLabelValues(view.Impact.Tier.String()).Inc()
	return view
}

// Start launches the idle-session sweeper.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.runSweeper(ctx, m.cfg.Session.SweepInterval)
}

func (m *Manager) runSweeper(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting session sweeper", "interval", interval, "ttl", m.cfg.Session.TTL)

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper shutting down")
			return
		case <-ticker.Chan():
			m.sweep(ctx)
		}
	}
}

func (m *Manager) sweep(ctx context.Context) {
	cutoff := m.clock.Now().Add(-m.cfg.Session.TTL)
	removed, err := m.repo.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		slog.Error("sweep failed", "error", err)
		return
	}

	m.metrics.SessionsExpired.Add(float64(removed))
	if n, err := m.repo.Count(ctx); err == nil {
		m.metrics.ActiveSessions.Set(float64(n))
	}
	if removed > 0 {
		slog.Info("expired idle sessions", "count", removed)
	}
}

func (m *Manager) Stop() {
	m.wg.Wait()
	slog.Info("session manager stopped")
}
