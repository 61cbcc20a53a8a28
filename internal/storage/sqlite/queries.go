package sqlite

import (
	"context"

	"deskinsight/internal/domain"
)

// Resolution days drop the time of day on both ends. date() yields NULL for
// the "None" sentinel, so open tickets fall out of every average.
const (
	resolutionDays = `julianday(date(t.fecha_cierre)) - julianday(date(t.fecha_apertura))`
	closedTicket   = `date(t.fecha_cierre) IS NOT NULL AND date(t.fecha_apertura) IS NOT NULL`
)

const topClientsQuery = `
	SELECT c.id_cliente AS client_id, c.nombre AS client, COUNT(*) AS incident_count
	FROM ticket t
	JOIN client c ON t.cliente_id = c.id_cliente
	GROUP BY c.id_cliente, c.nombre
	ORDER BY incident_count DESC, c.id_cliente ASC
	LIMIT ?`

const topIncidentTypesQuery = `
	SELECT i.id_incidente AS id, i.nombre AS name,
	       AVG(` + resolutionDays + `) AS avg_days,
	       COUNT(*) AS tickets
	FROM ticket t
	JOIN incident_type i ON t.incidencia_id = i.id_incidente
	WHERE ` + closedTicket + `
	GROUP BY i.id_incidente, i.nombre
	ORDER BY avg_days DESC, i.id_incidente ASC
	LIMIT ?`

const topEmployeesQuery = `
	SELECT e.id_empleado AS id, e.nombre AS name,
	       AVG(` + resolutionDays + `) AS avg_days,
	       COUNT(*) AS tickets
	FROM (SELECT DISTINCT ticket_id, empleado_id FROM ticket_contact) tc
	JOIN employee e ON tc.empleado_id = e.id_empleado
	JOIN ticket t ON tc.ticket_id = t.id_ticket
	WHERE ` + closedTicket + `
	GROUP BY e.id_empleado, e.nombre
	ORDER BY avg_days DESC, e.id_empleado ASC
	LIMIT ?`

const clientMetricsQuery = `
	SELECT c.id_cliente AS client_id, c.nombre AS client,
	       COUNT(*) AS total_incidents,
	       ROUND(AVG(` + resolutionDays + `), 2) AS avg_days,
	       ROUND(AVG(t.satisfaccion), 2) AS avg_satisfaction
	FROM ticket t
	JOIN client c ON t.cliente_id = c.id_cliente
	GROUP BY c.id_cliente, c.nombre
	ORDER BY total_incidents DESC, c.id_cliente ASC
	LIMIT ?`

func (s *Store) TopClientsByIncidentCount(ctx context.Context, limit int) ([]domain.ClientIncidentCount, error) {
	rows := []domain.ClientIncidentCount{}
	if err := s.selectRows(ctx, &rows, topClientsQuery, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) TopIncidentTypesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error) {
	rows := []domain.ResolutionTime{}
	if err := s.selectRows(ctx, &rows, topIncidentTypesQuery, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopEmployeesByResolutionTime counts each ticket once per employee, however
// many contacts the employee logged on it.
func (s *Store) TopEmployeesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error) {
	rows := []domain.ResolutionTime{}
	if err := s.selectRows(ctx, &rows, topEmployeesQuery, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ClientMetrics(ctx context.Context, limit int) ([]domain.ClientMetrics, error) {
	rows := []domain.ClientMetrics{}
	if err := s.selectRows(ctx, &rows, clientMetricsQuery, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) selectRows(ctx context.Context, dest any, query string, args ...any) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SelectContext(ctx, dest, query, args...)
}
