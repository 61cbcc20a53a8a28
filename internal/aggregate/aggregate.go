// Package aggregate serves the read-only service-desk rankings over a
// relational store.
package aggregate

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"deskinsight/internal/domain"
	"deskinsight/internal/telemetry"
)

// Store runs the aggregate statements. Implementations connect per call.
type Store interface {
	TopClientsByIncidentCount(ctx context.Context, limit int) ([]domain.ClientIncidentCount, error)
	TopIncidentTypesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error)
	TopEmployeesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error)
	ClientMetrics(ctx context.Context, limit int) ([]domain.ClientMetrics, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// TopClientsByIncidentCount ranks clients by ticket count, open tickets
// included. Ties go to the lower client id.
func (s *Service) TopClientsByIncidentCount(ctx context.Context, limit int) ([]domain.ClientIncidentCount, error) {
	return run(ctx, s, "top_clients", limit, s.store.TopClientsByIncidentCount)
}

// TopIncidentTypesByResolutionTime ranks incident types by mean whole-day
// resolution time over closed tickets.
func (s *Service) TopIncidentTypesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error) {
	return run(ctx, s, "top_incident_types", limit, s.store.TopIncidentTypesByResolutionTime)
}

func (s *Service) TopEmployeesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error) {
	return run(ctx, s, "top_employees", limit, s.store.TopEmployeesByResolutionTime)
}

func (s *Service) ClientMetrics(ctx context.Context, limit int) ([]domain.ClientMetrics, error) {
	return run(ctx, s, "client_metrics", limit, s.store.ClientMetrics)
}

func run[T any](ctx context.Context, s *Service, query string, limit int, fn func(context.Context, int) ([]T, error)) (rows []T, err error) {
	if limit < 0 {
		telemetry.AggregateQueriesTotal.WithLabelValues(query, "invalid").Inc()
		return nil, &domain.InvalidLimitError{Limit: limit}
	}
	if limit == 0 {
		telemetry.AggregateQueriesTotal.WithLabelValues(query, "ok").Inc()
		return []T{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "aggregate."+query)
	span.SetAttributes(attribute.Int("limit", limit))
	defer func() {
		telemetry.AggregateQueriesTotal.WithLabelValues(query, telemetry.Status(err)).Inc()
		telemetry.EndSpan(span, err)
	}()

	rows, err = fn(ctx, limit)
	if err != nil {
		s.logger.Error("aggregate query failed", zap.String("query", query), zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	s.logger.Debug("aggregate query", zap.String("query", query), zap.Int("limit", limit), zap.Int("rows", len(rows)))
	return rows, nil
}
