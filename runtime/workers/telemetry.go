package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs process-level health: CPU share, RSS,
// goroutine count and GC cycles. Purely observational; nothing in the
// message path depends on it.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
	proc     *process.Process
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration) (*TelemetryWorker, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &TelemetryWorker{log: log, interval: interval, proc: proc}, nil
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *TelemetryWorker) report() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	attrs := []any{
		slog.Int("goroutines", runtime.NumGoroutine()),
		slog.Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024),
		slog.Uint64("gc_cycles", uint64(memStats.NumGC)),
	}
	if cpu, err := w.proc.CPUPercent(); err == nil {
		attrs = append(attrs, slog.Float64("cpu_percent", cpu))
	}
	if mem, err := w.proc.MemoryInfo(); err == nil {
		attrs = append(attrs, slog.Uint64("rss_mb", mem.RSS/1024/1024))
	}
	w.log.Debug("process telemetry", attrs...)
}
