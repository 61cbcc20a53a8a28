package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"deskinsight/internal/domain"
)

// Only values in the stored date layout reach the casts; the sentinel and
// anything else count as a missing date.
const (
	storedDate     = `'^\d{4}-\d{2}-\d{2}( \d{2}:\d{2}:\d{2})?$'`
	closeDay       = `t.fecha_cierre::timestamp::date`
	openDay        = `t.fecha_apertura::timestamp::date`
	resolutionDays = `(` + closeDay + ` - ` + openDay + `)`
	closedTicket   = `t.fecha_cierre ~ ` + storedDate + ` AND t.fecha_apertura ~ ` + storedDate
)

const topClientsQuery = `
	SELECT c.id_cliente AS client_id, c.nombre AS client, COUNT(*)::int AS incident_count
	FROM ticket t
	JOIN client c ON t.cliente_id = c.id_cliente
	GROUP BY c.id_cliente, c.nombre
	ORDER BY incident_count DESC, c.id_cliente ASC
	LIMIT $1`

const topIncidentTypesQuery = `
	SELECT i.id_incidente AS id, i.nombre AS name,
	       AVG(` + resolutionDays + `)::float8 AS avg_days,
	       COUNT(*)::int AS tickets
	FROM ticket t
	JOIN incident_type i ON t.incidencia_id = i.id_incidente
	WHERE ` + closedTicket + `
	GROUP BY i.id_incidente, i.nombre
	ORDER BY avg_days DESC, i.id_incidente ASC
	LIMIT $1`

const topEmployeesQuery = `
	SELECT e.id_empleado AS id, e.nombre AS name,
	       AVG(` + resolutionDays + `)::float8 AS avg_days,
	       COUNT(*)::int AS tickets
	FROM (SELECT DISTINCT ticket_id, empleado_id FROM ticket_contact) tc
	JOIN employee e ON tc.empleado_id = e.id_empleado
	JOIN ticket t ON tc.ticket_id = t.id_ticket
	WHERE ` + closedTicket + `
	GROUP BY e.id_empleado, e.nombre
	ORDER BY avg_days DESC, e.id_empleado ASC
	LIMIT $1`

const clientMetricsQuery = `
	SELECT c.id_cliente AS client_id, c.nombre AS client,
	       COUNT(*)::int AS total_incidents,
	       ROUND(AVG(CASE WHEN ` + closedTicket + ` THEN ` + resolutionDays + ` END)::numeric, 2)::float8 AS avg_days,
	       ROUND(AVG(t.satisfaccion)::numeric, 2)::float8 AS avg_satisfaction
	FROM ticket t
	JOIN client c ON t.cliente_id = c.id_cliente
	GROUP BY c.id_cliente, c.nombre
	ORDER BY total_incidents DESC, c.id_cliente ASC
	LIMIT $1`

func (s *Store) TopClientsByIncidentCount(ctx context.Context, limit int) ([]domain.ClientIncidentCount, error) {
	return collect[domain.ClientIncidentCount](ctx, s, topClientsQuery, limit)
}

func (s *Store) TopIncidentTypesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error) {
	return collect[domain.ResolutionTime](ctx, s, topIncidentTypesQuery, limit)
}

func (s *Store) TopEmployeesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error) {
	return collect[domain.ResolutionTime](ctx, s, topEmployeesQuery, limit)
}

func (s *Store) ClientMetrics(ctx context.Context, limit int) ([]domain.ClientMetrics, error) {
	return collect[domain.ClientMetrics](ctx, s, clientMetricsQuery, limit)
}

func collect[T any](ctx context.Context, s *Store, query string, args ...any) ([]T, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
