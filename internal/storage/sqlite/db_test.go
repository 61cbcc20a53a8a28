package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"deskinsight/internal/domain"
	"deskinsight/internal/normalize"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "deskinsight-test.db"), zap.NewNop())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func fixtureEntities() domain.Entities {
	return domain.Entities{
		Clients: []domain.Client{
			{ID: 1, Name: "Acme", Phone: domain.Sentinel, Province: domain.Sentinel},
			{ID: 2, Name: "Globex", Phone: "600", Province: "Madrid"},
			{ID: 3, Name: "Initech", Phone: domain.Sentinel, Province: domain.Sentinel},
		},
		Employees: []domain.Employee{
			{ID: 10, Name: "Ana", Level: 2},
			{ID: 11, Name: "Luis"},
		},
		IncidentTypes: []domain.IncidentType{
			{ID: 1, Name: "Red"},
			{ID: 2, Name: "Hardware"},
			{ID: 3, Name: "Software"},
		},
		Tickets: []domain.Ticket{
			{ID: 1, ClientID: 1, IncidentTypeID: 1, OpenDate: "2023-01-01", CloseDate: "2023-01-05 18:00:00", Satisfaction: 4, IsCritical: 1},
			{ID: 2, ClientID: 1, IncidentTypeID: 1, OpenDate: "2023-01-10", CloseDate: "2023-01-12", Satisfaction: 6},
			{ID: 3, ClientID: 2, IncidentTypeID: 2, OpenDate: "2023-02-01", CloseDate: "2023-02-11", Satisfaction: 9},
			{ID: 4, ClientID: 2, IncidentTypeID: 2, OpenDate: "2023-02-03", CloseDate: domain.Sentinel, Satisfaction: 1},
			{ID: 5, ClientID: 3, IncidentTypeID: 3, OpenDate: "2023-03-01", CloseDate: domain.Sentinel, Satisfaction: 1, IsMaintenance: 1},
		},
		Contacts: []domain.EmployeeContact{
			{TicketID: 1, EmployeeID: 10, Date: "2023-01-02", Hours: 1},
			{TicketID: 1, EmployeeID: 10, Date: "2023-01-03", Hours: 2},
			{TicketID: 3, EmployeeID: 10, Date: "2023-02-02", Hours: 1},
			{TicketID: 2, EmployeeID: 11, Date: "2023-01-11", Hours: 1},
			{TicketID: 5, EmployeeID: 11, Date: "2023-03-02", Hours: 1},
		},
	}
}

func loadFixture(t *testing.T, s *Store) {
	t.Helper()
	stats, err := s.Load(context.Background(), fixtureEntities())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stats.Tickets != 5 || stats.Contacts != 5 {
		t.Fatalf("unexpected load stats: %+v", stats)
	}
}

func TestInitIsRepeatable(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
}

func TestLoadReplacesPreviousContents(t *testing.T) {
	s := newTestStore(t)
	loadFixture(t, s)
	loadFixture(t, s)

	rows, err := s.TopClientsByIncidentCount(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopClientsByIncidentCount failed: %v", err)
	}
	total := 0
	for _, r := range rows {
		total += r.IncidentCount
	}
	if total != 5 {
		t.Fatalf("expected 5 tickets after reload, got %d", total)
	}
}

func TestLoadRejectsDanglingClient(t *testing.T) {
	s := newTestStore(t)
	e := fixtureEntities()
	e.Tickets = append(e.Tickets, domain.Ticket{ID: 6, ClientID: 99, IncidentTypeID: 1, OpenDate: "2023-01-01", CloseDate: domain.Sentinel})

	if _, err := s.Load(context.Background(), e); err == nil {
		t.Fatalf("expected foreign key violation")
	}
}

func TestTopClientsByIncidentCount(t *testing.T) {
	s := newTestStore(t)
	loadFixture(t, s)

	rows, err := s.TopClientsByIncidentCount(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopClientsByIncidentCount failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Acme and Globex tie on 2 tickets; the lower id comes first.
	if rows[0].Client != "Acme" || rows[0].IncidentCount != 2 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Client != "Globex" || rows[1].IncidentCount != 2 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}

	none, err := s.TopClientsByIncidentCount(context.Background(), 0)
	if err != nil {
		t.Fatalf("limit 0 failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestTopIncidentTypesExcludesOpenTickets(t *testing.T) {
	s := newTestStore(t)
	loadFixture(t, s)

	rows, err := s.TopIncidentTypesByResolutionTime(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopIncidentTypesByResolutionTime failed: %v", err)
	}
	// Software has no closed ticket and is omitted.
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].Name != "Hardware" || rows[0].AvgDays != 10 || rows[0].Tickets != 1 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	// (4 + 2) / 2; the 18:00 close time is dropped.
	if rows[1].Name != "Red" || rows[1].AvgDays != 3 || rows[1].Tickets != 2 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestTopEmployeesCountsTicketOncePerEmployee(t *testing.T) {
	s := newTestStore(t)
	loadFixture(t, s)

	rows, err := s.TopEmployeesByResolutionTime(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopEmployeesByResolutionTime failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	// Ana: tickets 1 (4 days) and 3 (10 days), ticket 1 counted once.
	if rows[0].Name != "Ana" || rows[0].AvgDays != 7 || rows[0].Tickets != 2 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	// Luis: ticket 2 (2 days); ticket 5 is still open.
	if rows[1].Name != "Luis" || rows[1].AvgDays != 2 || rows[1].Tickets != 1 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestClientMetrics(t *testing.T) {
	s := newTestStore(t)
	loadFixture(t, s)

	rows, err := s.ClientMetrics(context.Background(), 10)
	if err != nil {
		t.Fatalf("ClientMetrics failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	acme := rows[0]
	if acme.Client != "Acme" || acme.TotalIncidents != 2 {
		t.Fatalf("unexpected first row: %+v", acme)
	}
	if acme.AvgDays == nil || *acme.AvgDays != 3 {
		t.Fatalf("expected Acme avg days 3, got %v", acme.AvgDays)
	}
	if acme.AvgSatisfaction == nil || *acme.AvgSatisfaction != 5 {
		t.Fatalf("expected Acme avg satisfaction 5, got %v", acme.AvgSatisfaction)
	}
	initech := rows[2]
	if initech.Client != "Initech" || initech.AvgDays != nil {
		t.Fatalf("expected Initech with no average, got %+v", initech)
	}
}

func TestEmptyStoreReturnsEmptyRankings(t *testing.T) {
	s := newTestStore(t)

	clients, err := s.TopClientsByIncidentCount(context.Background(), 5)
	if err != nil || len(clients) != 0 {
		t.Fatalf("expected empty clients, got %v, %v", clients, err)
	}
	types, err := s.TopIncidentTypesByResolutionTime(context.Background(), 5)
	if err != nil || len(types) != 0 {
		t.Fatalf("expected empty types, got %v, %v", types, err)
	}
}

func TestNonISODatesCountAsClosed(t *testing.T) {
	s := newTestStore(t)
	rs := domain.RecordSet{
		Clients:       []domain.Record{{"id_cli": "1", "nombre": "Acme"}},
		IncidentTypes: []domain.Record{{"id_inci": "1", "nombre": "Red"}},
		Tickets: []domain.Record{
			{"cliente": "1", "tipo_incidencia": 1, "fecha_apertura": "2023/01/01", "fecha_cierre": "2023/01/05", "es_mantenimiento": 0, "es_critico": 0},
			{"cliente": "1", "tipo_incidencia": 1, "fecha_apertura": "20230101", "fecha_cierre": "20230103", "es_mantenimiento": 0, "es_critico": 0},
			{"cliente": "1", "tipo_incidencia": 1, "fecha_apertura": "2023-01-01", "fecha_cierre": "unknown", "es_mantenimiento": 0, "es_critico": 0},
		},
	}
	e, err := normalize.Prepare(rs)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if _, err := s.Load(context.Background(), e); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rows, err := s.TopIncidentTypesByResolutionTime(context.Background(), 5)
	if err != nil {
		t.Fatalf("TopIncidentTypesByResolutionTime failed: %v", err)
	}
	// (4 + 2) / 2; the "unknown" close date counts as still open.
	if len(rows) != 1 || rows[0].AvgDays != 3 || rows[0].Tickets != 2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	metrics, err := s.ClientMetrics(context.Background(), 5)
	if err != nil {
		t.Fatalf("ClientMetrics failed: %v", err)
	}
	if len(metrics) != 1 || metrics[0].TotalIncidents != 3 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestFractionalSatisfactionIsAveraged(t *testing.T) {
	s := newTestStore(t)
	e := fixtureEntities()
	e.Tickets[0].Satisfaction = 7.5
	e.Tickets[1].Satisfaction = 6

	if _, err := s.Load(context.Background(), e); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rows, err := s.ClientMetrics(context.Background(), 1)
	if err != nil {
		t.Fatalf("ClientMetrics failed: %v", err)
	}
	if rows[0].AvgSatisfaction == nil || *rows[0].AvgSatisfaction != 6.75 {
		t.Fatalf("expected Acme avg satisfaction 6.75, got %v", rows[0].AvgSatisfaction)
	}
}
