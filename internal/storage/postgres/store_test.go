package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deskinsight/internal/domain"
)

func TestTicketRowsColumnOrder(t *testing.T) {
	rows := ticketRows([]domain.Ticket{{
		ID: 7, ClientID: 1, IncidentTypeID: 2, OpenDate: "2023-01-01", CloseDate: domain.Sentinel,
		Satisfaction: 3, IsMaintenance: 1, IsCritical: 0,
	}})

	require.Len(t, rows, 1)
	assert.Equal(t, []any{int64(7), int64(1), int64(2), "2023-01-01", "None", float64(3), int16(1), int16(0)}, rows[0])
}

// Runs against a live server only when DESKINSIGHT_TEST_DATABASE_URL is set.
func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv("DESKINSIGHT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DESKINSIGHT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s := NewStore(url, zap.NewNop())
	require.NoError(t, s.Init(ctx))

	_, err := s.Load(ctx, domain.Entities{
		Clients:       []domain.Client{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}},
		IncidentTypes: []domain.IncidentType{{ID: 1, Name: "Red"}},
		Tickets: []domain.Ticket{
			{ID: 1, ClientID: 2, IncidentTypeID: 1, OpenDate: "2023-01-01", CloseDate: "2023-01-05 10:00:00"},
			{ID: 2, ClientID: 2, IncidentTypeID: 1, OpenDate: "2023-01-01", CloseDate: domain.Sentinel},
			{ID: 3, ClientID: 1, IncidentTypeID: 1, OpenDate: "2023-01-01", CloseDate: "2023-01-03"},
			{ID: 4, ClientID: 2, IncidentTypeID: 1, OpenDate: "2023-01-01", CloseDate: "unknown"},
		},
	})
	require.NoError(t, err)

	clients, err := s.TopClientsByIncidentCount(ctx, 5)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Globex", clients[0].Client)
	assert.Equal(t, 3, clients[0].IncidentCount)

	types, err := s.TopIncidentTypesByResolutionTime(ctx, 5)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.InDelta(t, 3.0, types[0].AvgDays, 1e-9)

	metrics, err := s.ClientMetrics(ctx, 5)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	require.NotNil(t, metrics[0].AvgDays)
	assert.InDelta(t, 4.0, *metrics[0].AvgDays, 1e-9)
}
