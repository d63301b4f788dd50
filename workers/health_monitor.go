package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthMonitor periodically logs process-level stats (RSS, CPU, goroutines).
type HealthMonitor struct {
	log      *slog.Logger
	interval time.Duration
}

func NewHealthMonitor(log *slog.Logger, interval time.Duration) *HealthMonitor {
	return &HealthMonitor{log: log, interval: interval}
}

func (w *HealthMonitor) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			memInfo, err := p.MemoryInfo()
			if err != nil {
				w.log.Warn("Collecting memory stats failed", "error", err)
				continue
			}
			cpuPercent, err := p.CPUPercent()
			if err != nil {
				w.log.Warn("Collecting cpu stats failed", "error", err)
				continue
			}
			w.log.Info("Process health",
				"rss_bytes", memInfo.RSS,
				"cpu_percent", cpuPercent,
				"goroutines", runtime.NumGoroutine(),
			)
		}
	}
}
