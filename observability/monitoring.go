// Package observability aggregates live-layer telemetry for the debug
// endpoint and the admin CLI. Counters are atomic; nothing here sits on
// the delivery hot path behind a lock.
package observability

import (
	"runtime"
	"sync/atomic"
)

// Stats collects process-wide counters for the real-time layer.
type Stats struct {
	openConnections    atomic.Int64
	deliveredEvents    atomic.Uint64
	droppedEvents      atomic.Uint64
	presenceBroadcasts atomic.Uint64
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) ConnOpened()        { s.openConnections.Add(1) }
func (s *Stats) ConnClosed()        { s.openConnections.Add(-1) }
func (s *Stats) Delivered()         { s.deliveredEvents.Add(1) }
func (s *Stats) Dropped()           { s.droppedEvents.Add(1) }
func (s *Stats) PresenceBroadcast() { s.presenceBroadcasts.Add(1) }

// Snapshot is the JSON shape served by /debug/stats.
type Snapshot struct {
	OpenConnections    int64  `json:"open_connections"`
	OnlineUsers        int    `json:"online_users"`
	DeliveredEvents    uint64 `json:"delivered_events"`
	DroppedEvents      uint64 `json:"dropped_events"`
	PresenceBroadcasts uint64 `json:"presence_broadcasts"`
	AllocMemMb         uint64 `json:"alloc_mem_mb"`
	NumGC              uint32 `json:"num_gc"`
}

// Snapshot freezes the counters together with basic Go runtime metrics.
// The online-user count is recomputed by the caller from the registry,
// never cached here, to avoid drift.
func (s *Stats) Snapshot(onlineUsers int) Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Snapshot{
		OpenConnections:    s.openConnections.Load(),
		OnlineUsers:        onlineUsers,
		DeliveredEvents:    s.deliveredEvents.Load(),
		DroppedEvents:      s.droppedEvents.Load(),
		PresenceBroadcasts: s.presenceBroadcasts.Load(),
		AllocMemMb:         mem.Alloc / 1024 / 1024,
		NumGC:              mem.NumGC,
	}
}
