// Package analytics provides the telemetry sinks selected by build variant.
package analytics

import (
	"context"

	"template-backend/application/ports"

	"go.uber.org/zap"
)

// LogSink only logs hit parameters. Debug builds use it so nothing leaves
// the machine.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a logging-only sink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("Analytics")}
}

// Send logs params at debug level
func (s *LogSink) Send(ctx context.Context, params map[string]string) error {
	s.logger.Debug("Analytics hit", zap.Any("params", params))
	return nil
}

// TrackerSink sends hits through a Tracker
type TrackerSink struct {
	tracker *Tracker
}

// NewTrackerSink wraps tracker
func NewTrackerSink(tracker *Tracker) *TrackerSink {
	return &TrackerSink{tracker: tracker}
}

// Send forwards params to the tracker
func (s *TrackerSink) Send(ctx context.Context, params map[string]string) error {
	return s.tracker.Send(ctx, params)
}

// Tracker returns the underlying tracker
func (s *TrackerSink) Tracker() *Tracker {
	return s.tracker
}

var (
	_ ports.Analytics = (*LogSink)(nil)
	_ ports.Analytics = (*TrackerSink)(nil)
)
