package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"

	"github.com/sglre6355/joovy/internal/command"
)

const instrumentationName = "github.com/sglre6355/joovy/internal/telemetry"

// Sink is the observability consumer of the handler's result stream.
type Sink struct {
	logger  otellog.Logger
	results metric.Int64Counter
}

// NewSink creates a Sink on the given providers. Nil providers fall back to the globals.
func NewSink(mp metric.MeterProvider, lp otellog.LoggerProvider) (*Sink, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if lp == nil {
		lp = global.GetLoggerProvider()
	}

	results, err := mp.Meter(instrumentationName).Int64Counter(
		"joovy.results",
		metric.WithDescription("Results produced while handling chat messages."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create results counter: %w", err)
	}

	return &Sink{
		logger:  lp.Logger(instrumentationName),
		results: results,
	}, nil
}

// Record logs and exports a single result.
func (s *Sink) Record(ctx context.Context, r command.Result) {
	kind := r.Kind()

	var content, author string
	if r.Message != nil {
		content = r.Message.Content
		author = r.Message.AuthorName
	}

	slog.Info("handled message",
		"content", content,
		"author", author,
		"fields", map[string]any(r.Fields),
	)

	s.results.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))

	var rec otellog.Record
	rec.SetTimestamp(time.Now())
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue(fmt.Sprintf("%s by %s has been handled", content, author)))
	rec.AddAttributes(resultAttributes(r)...)
	s.logger.Emit(ctx, rec)
}

// Consume records results until the channel closes.
func (s *Sink) Consume(ctx context.Context, results <-chan command.Result) {
	for r := range results {
		s.Record(ctx, r)
	}
}

func resultAttributes(r command.Result) []otellog.KeyValue {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]otellog.KeyValue, 0, len(keys)+2)
	if r.Message != nil {
		attrs = append(attrs,
			otellog.String("guild.id", r.Message.GuildID.String()),
			otellog.String("author.id", r.Message.AuthorID.String()),
		)
	}
	for _, k := range keys {
		attrs = append(attrs, otellog.String(k, fmt.Sprint(r.Fields[k])))
	}
	return attrs
}
