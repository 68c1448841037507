package geolib

import (
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// UsageStats tracks how resolver is used: how many lookups finished
// with each status and how many responses were dropped because nobody
// waited for them anymore.
type UsageStats struct {
	Name string

	mutex        sync.Mutex
	lastUsed     time.Time
	successCount uint64
	failureCount uint64
	timeoutCount uint64
	droppedCount uint64
}

// UsageStatsSnapshot is a consistent copy of the counters.
type UsageStatsSnapshot struct {
	LastUsed     time.Time
	SuccessCount uint64
	FailureCount uint64
	TimeoutCount uint64
	DroppedCount uint64
}

func (u *UsageStats) Used(status Status) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	switch status {
	case StatusSuccess:
		u.successCount++
	case StatusTimeout:
		u.timeoutCount++
	default:
		u.failureCount++
	}
}

func (u *UsageStats) Dropped() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.droppedCount++
}

func (u *UsageStats) Snapshot() UsageStatsSnapshot {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	return UsageStatsSnapshot{
		LastUsed:     u.lastUsed,
		SuccessCount: u.successCount,
		FailureCount: u.failureCount,
		TimeoutCount: u.timeoutCount,
		DroppedCount: u.droppedCount,
	}
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime int64

	snapshot := u.Snapshot()

	if !snapshot.LastUsed.IsZero() {
		lastUsedTime = snapshot.LastUsed.Unix()
	}

	rawStruct := struct {
		Name         string `json:"name"`
		LastUsed     int64  `json:"last_used"`
		SuccessCount uint64 `json:"success_count"`
		FailureCount uint64 `json:"failure_count"`
		TimeoutCount uint64 `json:"timeout_count"`
		DroppedCount uint64 `json:"dropped_count"`
	}{
		Name:         u.Name,
		LastUsed:     lastUsedTime,
		SuccessCount: snapshot.SuccessCount,
		FailureCount: snapshot.FailureCount,
		TimeoutCount: snapshot.TimeoutCount,
		DroppedCount: snapshot.DroppedCount,
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(&rawStruct)
}
