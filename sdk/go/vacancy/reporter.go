package vacancy

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CallEvent is the summary of one completed or failed outbound call.
// It is handed to the Reporter once per call and then discarded.
type CallEvent struct {
	// Name is the remote operation, e.g. "CreateVacancy".
	Name string

	// Duration is the end-to-end elapsed time. For streamed calls it covers
	// the full consumption of the stream.
	Duration time.Duration

	// Bytes is the serialized response size. For streamed calls it is the
	// sum of all chunks delivered, including partial delivery on failure.
	Bytes int64

	// Err is the failure that terminated the call, nil on success.
	Err error
}

// Succeeded reports whether the call completed without error.
func (e CallEvent) Succeeded() bool {
	return e.Err == nil
}

// Reporter is the metrics sink consumed by the instrumented client.
// Implementations must be safe for concurrent delivery from multiple calls
// and are expected to be non-blocking or best-effort.
type Reporter interface {
	Report(event CallEvent)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(event CallEvent)

// Report calls f(event).
func (f ReporterFunc) Report(event CallEvent) {
	f(event)
}

// NewSlogReporter returns a Reporter that logs one structured line per call.
func NewSlogReporter(logger *slog.Logger) Reporter {
	return ReporterFunc(func(event CallEvent) {
		attrs := []any{
			"call", event.Name,
			"duration_ms", float64(event.Duration.Microseconds()) / 1000,
			"bytes", event.Bytes,
			"succeeded", event.Succeeded(),
		}
		if event.Err != nil {
			attrs = append(attrs, "error", event.Err.Error())
			logger.Warn("call completed", attrs...)
			return
		}
		logger.Info("call completed", attrs...)
	})
}

// otelReporter records call metrics on the global meter provider.
type otelReporter struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	bytes    metric.Int64Counter
}

// NewOTelReporter returns a Reporter backed by OpenTelemetry instruments.
func NewOTelReporter() (Reporter, error) {
	meter := otel.GetMeterProvider().Meter("vacancyload/client")

	calls, err := meter.Int64Counter("client.call_count")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("client.call_duration", metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	bytes, err := meter.Int64Counter("client.response_bytes", metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	return &otelReporter{calls: calls, duration: duration, bytes: bytes}, nil
}

func (r *otelReporter) Report(event CallEvent) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("call", event.Name),
		attribute.Bool("succeeded", event.Succeeded()),
	)
	r.calls.Add(ctx, 1, attrs)
	r.duration.Record(ctx, float64(event.Duration.Microseconds())/1000, attrs)
	r.bytes.Add(ctx, event.Bytes, attrs)
}

// MultiReporter fans one event out to several reporters.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(event CallEvent) {
		for _, r := range reporters {
			r.Report(event)
		}
	})
}
