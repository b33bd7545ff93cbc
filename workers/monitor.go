package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"talksy/contract"
	"talksy/observability"
)

const monitorInterval = 30 * time.Second

// MonitorWorker periodically logs process health (CPU, RSS, OS status)
// together with the live-layer counters. The same numbers are served on
// /debug/stats; the log line is for operators tailing the service.
type MonitorWorker struct {
	log      *slog.Logger
	stats    *observability.Stats
	registry contract.IRegistry
}

func NewMonitorWorker(log *slog.Logger, stats *observability.Stats, registry contract.IRegistry) *MonitorWorker {
	return &MonitorWorker{log: log, stats: stats, registry: registry}
}

func (w *MonitorWorker) Run(ctx context.Context) error {
	w.log.Info("Starting monitor worker")
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			snapshot := w.stats.Snapshot(len(w.registry.OnlineUsers()))
			w.log.Info("health",
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"open_connections", snapshot.OpenConnections,
				"online_users", snapshot.OnlineUsers,
				"delivered_events", snapshot.DeliveredEvents,
				"dropped_events", snapshot.DroppedEvents,
			)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
