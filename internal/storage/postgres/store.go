// Package postgres is the PostgreSQL variant of the relational store. Like
// the SQLite store it connects per call and keeps no pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"deskinsight/internal/domain"
)

type Store struct {
	url    string
	logger *zap.Logger
}

func NewStore(url string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{url: url, logger: logger}
}

func (s *Store) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return conn, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS client (
		id_cliente BIGINT PRIMARY KEY,
		nombre     TEXT NOT NULL,
		telefono   TEXT NOT NULL DEFAULT 'None',
		provincia  TEXT NOT NULL DEFAULT 'None'
	);
	CREATE TABLE IF NOT EXISTS employee (
		id_empleado    BIGINT PRIMARY KEY,
		nombre         TEXT NOT NULL,
		nivel          INTEGER NOT NULL DEFAULT 0,
		fecha_contrato TEXT DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS incident_type (
		id_incidente BIGINT PRIMARY KEY,
		nombre       TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ticket (
		id_ticket        BIGINT PRIMARY KEY,
		cliente_id       BIGINT NOT NULL REFERENCES client(id_cliente),
		incidencia_id    BIGINT NOT NULL REFERENCES incident_type(id_incidente),
		fecha_apertura   TEXT NOT NULL DEFAULT 'None',
		fecha_cierre     TEXT NOT NULL DEFAULT 'None',
		satisfaccion     DOUBLE PRECISION NOT NULL DEFAULT 1,
		es_mantenimiento SMALLINT NOT NULL CHECK (es_mantenimiento IN (0, 1)),
		es_critico       SMALLINT NOT NULL CHECK (es_critico IN (0, 1))
	);
	CREATE INDEX IF NOT EXISTS idx_ticket_cliente ON ticket(cliente_id);
	CREATE TABLE IF NOT EXISTS ticket_contact (
		ticket_id   BIGINT NOT NULL REFERENCES ticket(id_ticket),
		empleado_id BIGINT NOT NULL REFERENCES employee(id_empleado),
		fecha       TEXT DEFAULT '',
		tiempo      DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_ticket_contact_empleado ON ticket_contact(empleado_id);
`

// Init creates the schema when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load replaces the store contents with e in a single transaction, using
// COPY for each table.
func (s *Store) Load(ctx context.Context, e domain.Entities) (domain.LoadStats, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return domain.LoadStats{}, err
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return domain.LoadStats{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE ticket_contact, ticket, incident_type, employee, client`); err != nil {
		return domain.LoadStats{}, fmt.Errorf("truncate: %w", err)
	}

	var stats domain.LoadStats
	copies := []struct {
		table   string
		columns []string
		rows    [][]any
		count   *int
	}{
		{"client", []string{"id_cliente", "nombre", "telefono", "provincia"}, clientRows(e.Clients), &stats.Clients},
		{"employee", []string{"id_empleado", "nombre", "nivel", "fecha_contrato"}, employeeRows(e.Employees), &stats.Employees},
		{"incident_type", []string{"id_incidente", "nombre"}, incidentTypeRows(e.IncidentTypes), &stats.IncidentTypes},
		{"ticket", []string{"id_ticket", "cliente_id", "incidencia_id", "fecha_apertura", "fecha_cierre", "satisfaccion", "es_mantenimiento", "es_critico"}, ticketRows(e.Tickets), &stats.Tickets},
		{"ticket_contact", []string{"ticket_id", "empleado_id", "fecha", "tiempo"}, contactRows(e.Contacts), &stats.Contacts},
	}
	for _, c := range copies {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows))
		if err != nil {
			return stats, fmt.Errorf("copy %s: %w", c.table, err)
		}
		*c.count = int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, err
	}
	s.logger.Info("loaded records into postgres",
		zap.Int("clients", stats.Clients),
		zap.Int("tickets", stats.Tickets),
		zap.Int("contacts", stats.Contacts),
	)
	return stats, nil
}

func clientRows(in []domain.Client) [][]any {
	rows := make([][]any, len(in))
	for i, c := range in {
		rows[i] = []any{c.ID, c.Name, c.Phone, c.Province}
	}
	return rows
}

func employeeRows(in []domain.Employee) [][]any {
	rows := make([][]any, len(in))
	for i, e := range in {
		rows[i] = []any{e.ID, e.Name, int32(e.Level), e.HireDate}
	}
	return rows
}

func incidentTypeRows(in []domain.IncidentType) [][]any {
	rows := make([][]any, len(in))
	for i, it := range in {
		rows[i] = []any{it.ID, it.Name}
	}
	return rows
}

func ticketRows(in []domain.Ticket) [][]any {
	rows := make([][]any, len(in))
	for i, t := range in {
		rows[i] = []any{
			t.ID, t.ClientID, t.IncidentTypeID, t.OpenDate, t.CloseDate,
			t.Satisfaction, int16(t.IsMaintenance), int16(t.IsCritical),
		}
	}
	return rows
}

func contactRows(in []domain.EmployeeContact) [][]any {
	rows := make([][]any, len(in))
	for i, c := range in {
		rows[i] = []any{c.TicketID, c.EmployeeID, c.Date, c.Hours}
	}
	return rows
}
