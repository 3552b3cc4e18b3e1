package board

import (
	"go.uber.org/zap"

	"photoboard-go/internal/config"
	"photoboard-go/internal/device"
)

// Stats counts what the board has done since Setup. Only the goroutine
// driving the board touches it.
type Stats struct {
	Cycles         uint64
	Vacated        uint64
	SnapshotFiles  uint64
	SnapshotErrors uint64
	Recorded       uint64
	RecordErrors   uint64
}

func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"cycles_total":          s.Cycles,
		"vacated_total":         s.Vacated,
		"snapshot_files_total":  s.SnapshotFiles,
		"snapshot_errors_total": s.SnapshotErrors,
		"recorded_total":        s.Recorded,
		"record_errors_total":   s.RecordErrors,
	}
}

// LogStats writes the counters as one structured line.
func LogStats(logger *zap.SugaredLogger, s *Stats) {
	snap := s.Snapshot()
	kv := make([]any, 0, len(snap)*2)
	for _, k := range []string{"cycles_total", "vacated_total", "snapshot_files_total", "snapshot_errors_total", "recorded_total", "record_errors_total"} {
		kv = append(kv, k, snap[k])
	}
	logger.Infow("board stats", kv...)
}

// Connect opens the configured frame source and picks its first device.
// The returned context must be closed by the caller.
func Connect(cfg config.AppConfig, logger *zap.SugaredLogger) (device.Context, device.Device, error) {
	src, err := device.Open(cfg.Source, device.Options{
		Path: cfg.ReplayPath,
		Loop: cfg.ReplayLoop,
		FPS:  cfg.SourceFPS,
	})
	if err != nil {
		return nil, nil, err
	}
	dev, n, err := device.First(src)
	logger.Infof("there are %d connected %s devices", n, cfg.Source)
	if err != nil {
		_ = src.Close()
		return nil, nil, err
	}
	return src, dev, nil
}
