// Package mission persists daily mission counters, claim flags and the feed
// reward timer
package mission

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

// Repository stores one player's daily mission state.
type Repository interface {
	// GetState reads the date, counters and claim flags for missions
	GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error)

	// ResetDay zeroes every counter and claim flag and records the new date
	ResetDay(ctx context.Context, input ResetDayInput) (*ResetDayOutput, error)

	// IncrementCounter adds one to a counter and returns the new value
	IncrementCounter(ctx context.Context, input IncrementCounterInput) (*IncrementCounterOutput, error)

	// MarkClaimed records that a mission's reward was paid today
	MarkClaimed(ctx context.Context, input MarkClaimedInput) (*MarkClaimedOutput, error)

	// GetLastFeedTime returns when feed was last collected, zero if never
	GetLastFeedTime(ctx context.Context, input GetLastFeedTimeInput) (*GetLastFeedTimeOutput, error)

	// SetLastFeedTime records when feed was collected
	SetLastFeedTime(ctx context.Context, input SetLastFeedTimeInput) (*SetLastFeedTimeOutput, error)
}

// State is a player's mission bookkeeping for one KST day.
type State struct {
	Date     string
	Counters map[superpet.MissionCounter]int
	Claimed  map[string]bool
}

// GetStateInput defines the input for reading mission state
type GetStateInput struct {
	PlayerID string
	Missions []superpet.MissionDef
}

// GetStateOutput defines the output for reading mission state
type GetStateOutput struct {
	State *State
}

// ResetDayInput defines the input for starting a new day
type ResetDayInput struct {
	PlayerID string
	Date     string
	Missions []superpet.MissionDef
}

// ResetDayOutput defines the output for starting a new day
type ResetDayOutput struct{}

// IncrementCounterInput defines the input for bumping a counter
type IncrementCounterInput struct {
	PlayerID string
	Counter  superpet.MissionCounter
}

// IncrementCounterOutput defines the output for bumping a counter
type IncrementCounterOutput struct {
	Value int
}

// MarkClaimedInput defines the input for recording a claim
type MarkClaimedInput struct {
	PlayerID   string
	MissionKey string
}

// MarkClaimedOutput defines the output for recording a claim
type MarkClaimedOutput struct{}

// GetLastFeedTimeInput defines the input for reading the feed timer
type GetLastFeedTimeInput struct {
	PlayerID string
}

// GetLastFeedTimeOutput defines the output for reading the feed timer
type GetLastFeedTimeOutput struct {
	At time.Time
}

// SetLastFeedTimeInput defines the input for writing the feed timer
type SetLastFeedTimeInput struct {
	PlayerID string
	At       time.Time
}

// SetLastFeedTimeOutput defines the output for writing the feed timer
type SetLastFeedTimeOutput struct{}

// CounterKey is the storage key of a daily counter, e.g. mission-boss-kills.
func CounterKey(counter superpet.MissionCounter) string {
	return "mission-" + strings.ReplaceAll(string(counter), "_", "-")
}

// ClaimedKey is the storage key of a mission's claim flag.
func ClaimedKey(missionKey string) string {
	return "mission-" + strings.ReplaceAll(missionKey, "_", "-") + "-claimed"
}

// StoreConfig contains configuration for the store-backed repository.
type StoreConfig struct {
	Store storage.Store
}

// Validate validates the StoreConfig.
func (cfg *StoreConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Store == nil {
		return errors.InvalidArgument("store cannot be nil")
	}
	return nil
}

type storeRepository struct {
	store storage.Store
}

// NewStore creates a mission repository on top of a key-value store.
func NewStore(cfg *StoreConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &storeRepository{store: cfg.Store}, nil
}

func (r *storeRepository) load(ctx context.Context, playerID, key string) (string, error) {
	v, _, err := r.store.Load(ctx, storage.PlayerKey(playerID, key))
	return v, err
}

func (r *storeRepository) save(ctx context.Context, playerID, key, value string) error {
	return r.store.Save(ctx, storage.PlayerKey(playerID, key), value)
}

func (r *storeRepository) counter(ctx context.Context, playerID string, counter superpet.MissionCounter) (int, error) {
	raw, err := r.load(ctx, playerID, CounterKey(counter))
	if err != nil {
		return 0, err
	}
	// unreadable counters count as zero
	n, _ := strconv.Atoi(raw)
	return n, nil
}

func (r *storeRepository) GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	date, err := r.load(ctx, input.PlayerID, storage.KeyMissionDate)
	if err != nil {
		return nil, err
	}
	state := &State{
		Date:     date,
		Counters: make(map[superpet.MissionCounter]int),
		Claimed:  make(map[string]bool),
	}
	for _, m := range input.Missions {
		if _, seen := state.Counters[m.Counter]; !seen && m.Counter != superpet.CounterAttendance {
			n, err := r.counter(ctx, input.PlayerID, m.Counter)
			if err != nil {
				return nil, err
			}
			state.Counters[m.Counter] = n
		}
		claimed, err := r.load(ctx, input.PlayerID, ClaimedKey(m.Key))
		if err != nil {
			return nil, err
		}
		state.Claimed[m.Key] = claimed == "true"
	}
	return &GetStateOutput{State: state}, nil
}

func (r *storeRepository) ResetDay(ctx context.Context, input ResetDayInput) (*ResetDayOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	if err := r.save(ctx, input.PlayerID, storage.KeyMissionDate, input.Date); err != nil {
		return nil, err
	}
	for _, m := range input.Missions {
		if m.Counter != superpet.CounterAttendance {
			if err := r.save(ctx, input.PlayerID, CounterKey(m.Counter), "0"); err != nil {
				return nil, err
			}
		}
		if err := r.save(ctx, input.PlayerID, ClaimedKey(m.Key), "false"); err != nil {
			return nil, err
		}
	}
	return &ResetDayOutput{}, nil
}

func (r *storeRepository) IncrementCounter(ctx context.Context, input IncrementCounterInput) (*IncrementCounterOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	n, err := r.counter(ctx, input.PlayerID, input.Counter)
	if err != nil {
		return nil, err
	}
	n++
	if err := r.save(ctx, input.PlayerID, CounterKey(input.Counter), strconv.Itoa(n)); err != nil {
		return nil, err
	}
	return &IncrementCounterOutput{Value: n}, nil
}

func (r *storeRepository) MarkClaimed(ctx context.Context, input MarkClaimedInput) (*MarkClaimedOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	if err := r.save(ctx, input.PlayerID, ClaimedKey(input.MissionKey), "true"); err != nil {
		return nil, err
	}
	return &MarkClaimedOutput{}, nil
}

func (r *storeRepository) GetLastFeedTime(ctx context.Context, input GetLastFeedTimeInput) (*GetLastFeedTimeOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	raw, err := r.load(ctx, input.PlayerID, storage.KeyLastFeedTime)
	if err != nil {
		return nil, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return &GetLastFeedTimeOutput{}, nil
	}
	return &GetLastFeedTimeOutput{At: time.UnixMilli(ms)}, nil
}

func (r *storeRepository) SetLastFeedTime(ctx context.Context, input SetLastFeedTimeInput) (*SetLastFeedTimeOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	value := strconv.FormatInt(input.At.UnixMilli(), 10)
	if err := r.save(ctx, input.PlayerID, storage.KeyLastFeedTime, value); err != nil {
		return nil, err
	}
	return &SetLastFeedTimeOutput{}, nil
}
