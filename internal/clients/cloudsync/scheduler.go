package cloudsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

// DefaultSaveDelay is how long the scheduler waits after the last change
// before uploading.
const DefaultSaveDelay = 10 * time.Second

// Saver pushes a player's save to the cloud. Orchestrators mark players
// dirty after every persisted change and force a save after sensitive ones.
type Saver interface {
	// MarkDirty schedules a debounced save
	MarkDirty(playerID string)

	// SaveNow uploads immediately and reports whether it succeeded
	SaveNow(ctx context.Context, playerID string) bool
}

// Noop is a Saver for deployments without cloud sync.
type Noop struct{}

// MarkDirty does nothing.
func (Noop) MarkDirty(string) {}

// SaveNow reports false; nothing was uploaded.
func (Noop) SaveNow(context.Context, string) bool { return false }

// SchedulerConfig contains configuration for the save scheduler
type SchedulerConfig struct {
	Client Client
	Store  storage.Store
	// Delay between the last change and the upload (optional)
	Delay time.Duration
}

// Validate validates the SchedulerConfig and sets defaults.
func (cfg *SchedulerConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("Client")
	}
	if cfg.Store == nil {
		vb.RequiredField("Store")
	}
	if err := vb.Build(); err != nil {
		return err
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultSaveDelay
	}
	return nil
}

// Scheduler debounces cloud saves per player. Failures are logged and
// dropped; the next change schedules another attempt.
type Scheduler struct {
	client Client
	store  storage.Store
	delay  time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewScheduler creates a save scheduler
func NewScheduler(cfg *SchedulerConfig) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		client: cfg.Client,
		store:  cfg.Store,
		delay:  cfg.Delay,
		timers: make(map[string]*time.Timer),
	}, nil
}

// MarkDirty restarts the player's save timer.
func (s *Scheduler) MarkDirty(playerID string) {
	if playerID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[playerID]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.timers[playerID] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, playerID)
		s.mu.Unlock()
		s.SaveNow(context.Background(), playerID)
	})
	s.timers[playerID] = timer
}

// Pending reports whether a debounced save is waiting for playerID.
func (s *Scheduler) Pending(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[playerID]
	return ok
}

func (s *Scheduler) cancel(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[playerID]; ok {
		t.Stop()
		delete(s.timers, playerID)
	}
}

// SaveNow cancels any pending save and uploads the player's save keys.
func (s *Scheduler) SaveNow(ctx context.Context, playerID string) bool {
	s.cancel(playerID)

	data := make(map[string]*string, len(storage.GameDataKeys))
	for _, key := range storage.GameDataKeys {
		v, ok, err := s.store.Load(ctx, storage.PlayerKey(playerID, key))
		if err != nil {
			slog.Warn("cloud save skipped, local read failed", "player_id", playerID, "key", key, "error", err)
			return false
		}
		if ok {
			data[key] = &v
		} else {
			data[key] = nil
		}
	}

	if err := s.client.Save(ctx, &SaveInput{PlayerID: playerID, Data: data}); err != nil {
		slog.Warn("cloud save failed", "player_id", playerID, "error", err)
		return false
	}
	slog.Debug("cloud save complete", "player_id", playerID)
	return true
}

// Restore downloads the player's cloud save into local storage. Keys the
// cloud holds as null leave local values untouched.
func (s *Scheduler) Restore(ctx context.Context, playerID string) bool {
	out, err := s.client.Load(ctx, &LoadInput{PlayerID: playerID})
	if err != nil {
		slog.Warn("cloud load failed", "player_id", playerID, "error", err)
		return false
	}
	for _, key := range storage.GameDataKeys {
		v, ok := out.Data[key]
		if !ok {
			continue
		}
		if err := s.store.Save(ctx, storage.PlayerKey(playerID, key), v); err != nil {
			slog.Warn("cloud load could not write locally", "player_id", playerID, "key", key, "error", err)
			return false
		}
	}
	return true
}

// Close stops every pending timer. Pending saves are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

var (
	_ Saver = (*Scheduler)(nil)
	_ Saver = Noop{}
)
