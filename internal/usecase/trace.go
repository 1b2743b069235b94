package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fantasy-history/internal/usecase"

// startUsecaseSpan only opens a child span when the caller already carries a
// sampled trace, so CLI and lambda runs without a parent stay span-free.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func leagueAttrs(key league.Key) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("league.id", key.LeagueID),
		attribute.String("league.platform", string(key.Platform)),
	}
}

// failSpan marks the span as errored. A nil error leaves it untouched.
func failSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
