package testutils

import (
	"context"
	"sync"
)

// RecordingSaver counts cloud save requests instead of sending them.
type RecordingSaver struct {
	mu    sync.Mutex
	dirty map[string]int
	saved map[string]int
	// Result is what SaveNow reports
	Result bool
}

// NewRecordingSaver returns a saver whose SaveNow reports result.
func NewRecordingSaver(result bool) *RecordingSaver {
	return &RecordingSaver{
		dirty:  make(map[string]int),
		saved:  make(map[string]int),
		Result: result,
	}
}

// MarkDirty records a debounced save request.
func (r *RecordingSaver) MarkDirty(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty[playerID]++
}

// SaveNow records an immediate save request.
func (r *RecordingSaver) SaveNow(_ context.Context, playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[playerID]++
	return r.Result
}

// DirtyCount is how many times playerID was marked dirty.
func (r *RecordingSaver) DirtyCount(playerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty[playerID]
}

// SaveNowCount is how many immediate saves playerID requested.
func (r *RecordingSaver) SaveNowCount(playerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[playerID]
}
