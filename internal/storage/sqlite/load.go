package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"deskinsight/internal/domain"
)

var clearStatements = []string{
	`DELETE FROM ticket_contact`,
	`DELETE FROM ticket`,
	`DELETE FROM incident_type`,
	`DELETE FROM employee`,
	`DELETE FROM client`,
}

const (
	insertClient = `INSERT INTO client (id_cliente, nombre, telefono, provincia)
		VALUES (:id_cliente, :nombre, :telefono, :provincia)`
	insertEmployee = `INSERT INTO employee (id_empleado, nombre, nivel, fecha_contrato)
		VALUES (:id_empleado, :nombre, :nivel, :fecha_contrato)`
	insertIncidentType = `INSERT INTO incident_type (id_incidente, nombre)
		VALUES (:id_incidente, :nombre)`
	insertTicket = `INSERT INTO ticket (id_ticket, cliente_id, incidencia_id, fecha_apertura, fecha_cierre, satisfaccion, es_mantenimiento, es_critico)
		VALUES (:id_ticket, :cliente_id, :incidencia_id, :fecha_apertura, :fecha_cierre, :satisfaccion, :es_mantenimiento, :es_critico)`
	insertContact = `INSERT INTO ticket_contact (ticket_id, empleado_id, fecha, tiempo)
		VALUES (:ticket_id, :empleado_id, :fecha, :tiempo)`
)

// Load replaces the store contents with e in a single transaction.
func (s *Store) Load(ctx context.Context, e domain.Entities) (domain.LoadStats, error) {
	db, err := s.open(ctx)
	if err != nil {
		return domain.LoadStats{}, err
	}
	defer db.Close()

	stats, err := loadEntities(ctx, db, e)
	if err != nil {
		return stats, err
	}
	s.logger.Info("loaded records",
		zap.Int("clients", stats.Clients),
		zap.Int("employees", stats.Employees),
		zap.Int("incident_types", stats.IncidentTypes),
		zap.Int("tickets", stats.Tickets),
		zap.Int("contacts", stats.Contacts),
	)
	return stats, nil
}

func loadEntities(ctx context.Context, db *sqlx.DB, e domain.Entities) (domain.LoadStats, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.LoadStats{}, err
	}
	defer tx.Rollback()

	for _, stmt := range clearStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return domain.LoadStats{}, err
		}
	}

	var stats domain.LoadStats
	if stats.Clients, err = insertAll(ctx, tx, insertClient, e.Clients); err != nil {
		return stats, fmt.Errorf("insert clients: %w", err)
	}
	if stats.Employees, err = insertAll(ctx, tx, insertEmployee, e.Employees); err != nil {
		return stats, fmt.Errorf("insert employees: %w", err)
	}
	if stats.IncidentTypes, err = insertAll(ctx, tx, insertIncidentType, e.IncidentTypes); err != nil {
		return stats, fmt.Errorf("insert incident types: %w", err)
	}
	if stats.Tickets, err = insertAll(ctx, tx, insertTicket, e.Tickets); err != nil {
		return stats, fmt.Errorf("insert tickets: %w", err)
	}
	if stats.Contacts, err = insertAll(ctx, tx, insertContact, e.Contacts); err != nil {
		return stats, fmt.Errorf("insert contacts: %w", err)
	}

	return stats, tx.Commit()
}

func insertAll[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
