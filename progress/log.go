package progress

import (
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// LogSink reports progress through a zap logger with human-readable sizes.
// To keep log volume sane it emits at most one line per stepPercent of the
// total, and one line per update when the total is unknown.
type LogSink struct {
	log         *zap.Logger
	name        string
	stepPercent int
	lastStep    int
}

// NewLogSink creates a sink that logs progress for the named transfer.
func NewLogSink(log *zap.Logger, name string) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log, name: name, stepPercent: 10}
}

// Update implements Sink.
func (s *LogSink) Update(transferred, total int64) {
	if total <= 0 {
		s.log.Debug("transfer progress",
			zap.String("name", s.name),
			zap.String("transferred", humanize.Bytes(uint64(transferred))),
		)
		return
	}

	step := int(transferred * 100 / total / int64(s.stepPercent))
	if step == s.lastStep && transferred < total {
		return
	}
	s.lastStep = step

	s.log.Info("transfer progress",
		zap.String("name", s.name),
		zap.String("transferred", humanize.Bytes(uint64(transferred))),
		zap.String("total", humanize.Bytes(uint64(total))),
		zap.Int64("percent", transferred*100/total),
	)
}
