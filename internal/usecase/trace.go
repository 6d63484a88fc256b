package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/riskibarqy/fantrax-team-manager/internal/usecase")

func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func teamPeriodAttrs(teamID string, periodID int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("team.id", teamID),
		attribute.Int("period.id", periodID),
	}
}
