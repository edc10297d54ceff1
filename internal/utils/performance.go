package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Timer measures one operation and logs its duration on Stop.
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
}

// NewTimer creates a new timer with the given name
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Elapsed returns the time since the timer started without logging.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop logs the duration at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	return t.StopWithFields(nil)
}

// StopWithFields logs the duration along with extra fields
func (t *Timer) StopWithFields(fields map[string]interface{}) time.Duration {
	duration := time.Since(t.start)

	event := t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration)
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg("Operation completed")

	if duration > 10*time.Second {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Msg("Slow operation detected (>10s)")
	}

	return duration
}

// Metrics aggregates durations of repeated runs of one operation, such as
// the minimizer attempts of a single fit. The zero value is ready to use.
type Metrics struct {
	OperationName string
	CallCount     int64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
}

// Record adds one observation.
func (m *Metrics) Record(d time.Duration) {
	if m.CallCount == 0 || d < m.MinDuration {
		m.MinDuration = d
	}
	if d > m.MaxDuration {
		m.MaxDuration = d
	}
	m.CallCount++
	m.TotalDuration += d
}

// AvgDuration is zero when nothing was recorded.
func (m *Metrics) AvgDuration() time.Duration {
	if m.CallCount == 0 {
		return 0
	}
	return m.TotalDuration / time.Duration(m.CallCount)
}

// LogMetrics logs the aggregated metrics at debug level
func (m *Metrics) LogMetrics(log zerolog.Logger) {
	if m.CallCount == 0 {
		return
	}

	log.Debug().
		Str("operation", m.OperationName).
		Int64("call_count", m.CallCount).
		Dur("total_duration", m.TotalDuration).
		Dur("avg_duration", m.AvgDuration()).
		Dur("min_duration", m.MinDuration).
		Dur("max_duration", m.MaxDuration).
		Msg("Performance metrics summary")
}
