package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskinsight/internal/domain"
)

const classified = `{"tickets_emitidos": [
  {"cliente": "1", "fecha_apertura": "2023-01-01", "fecha_cierre": "2023-01-05", "es_mantenimiento": false, "tipo_incidencia": 2, "es_critico": true},
  {"cliente": 2, "fecha_apertura": "2023-01-10 08:30:00", "fecha_cierre": "2023-01-10", "es_mantenimiento": 1, "tipo_incidencia": "1", "es_critico": 0}
]}`

func TestLoadProjectsTickets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_clasified.json")
	require.NoError(t, os.WriteFile(path, []byte(classified), 0o644))

	got, err := Load(path)
	require.NoError(t, err)

	want := []domain.TrainingExample{
		{ClientID: 1, OpenEpoch: 1672531200, CloseEpoch: 1672876800, IsMaintenance: 0, IncidentTypeID: 2, IsCritical: 1},
		{ClientID: 2, OpenEpoch: 1673339400, CloseEpoch: 1673308800, IsMaintenance: 1, IncidentTypeID: 1, IsCritical: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected examples (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{1, 1672531200, 1672876800, 0, 2}, got[0].Features())
}

func TestParseRejectsSentinelDate(t *testing.T) {
	doc := `{"tickets_emitidos": [{"cliente": 1, "fecha_apertura": "2023-01-01", "fecha_cierre": "None", "es_mantenimiento": 0, "tipo_incidencia": 1, "es_critico": 0}]}`

	_, err := Parse(strings.NewReader(doc))

	var dateErr *domain.DateParseError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, domain.FieldCloseDate, dateErr.Field)
	assert.Equal(t, "None", dateErr.Value)
}

func TestParseRejectsMalformedFlag(t *testing.T) {
	doc := `{"tickets_emitidos": [{"cliente": 1, "fecha_apertura": "2023-01-01", "fecha_cierre": "2023-01-02", "es_mantenimiento": 0, "tipo_incidencia": 1, "es_critico": "sometimes"}]}`

	_, err := Parse(strings.NewReader(doc))

	var malformed *domain.MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, domain.FieldCritical, malformed.Field)
}

func examples(n int) []domain.TrainingExample {
	out := make([]domain.TrainingExample, n)
	for i := range out {
		out[i] = domain.TrainingExample{ClientID: int64(i), IsCritical: i % 2}
	}
	return out
}

func TestRandomSplitterSizes(t *testing.T) {
	cases := []struct{ n, train, test int }{
		{10, 8, 2},
		{2, 1, 1},
		{5, 4, 1},
		{11, 8, 3},
	}
	for _, tc := range cases {
		p, err := RandomSplitter{TestRatio: DefaultTestRatio}.Split(examples(tc.n))
		require.NoError(t, err, "n=%d", tc.n)
		assert.Len(t, p.Train, tc.train, "n=%d", tc.n)
		assert.Len(t, p.Test, tc.test, "n=%d", tc.n)

		seen := map[int64]bool{}
		for _, ex := range append(append([]domain.TrainingExample{}, p.Train...), p.Test...) {
			assert.False(t, seen[ex.ClientID], "row %d assigned twice", ex.ClientID)
			seen[ex.ClientID] = true
		}
		assert.Len(t, seen, tc.n)
	}
}

func TestRandomSplitterInsufficientData(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := RandomSplitter{TestRatio: DefaultTestRatio}.Split(examples(n))
		var insufficient *domain.InsufficientDataError
		if !errors.As(err, &insufficient) {
			t.Fatalf("n=%d: expected InsufficientDataError, got %v", n, err)
		}
		if insufficient.Train != 0 {
			t.Fatalf("n=%d: expected empty train partition, got %d", n, insufficient.Train)
		}
	}
}

func TestSeededSplitIsReproducible(t *testing.T) {
	seed := uint64(42)
	s := RandomSplitter{TestRatio: DefaultTestRatio, Seed: &seed}

	a, err := s.Split(examples(20))
	require.NoError(t, err)
	b, err := s.Split(examples(20))
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("seeded splits differ:\n%s", diff)
	}
	assert.Equal(t, seed, a.Seed)
}

func TestPartitionMatrixView(t *testing.T) {
	p := Partition{
		Train: []domain.TrainingExample{{ClientID: 1, OpenEpoch: 10, CloseEpoch: 20, IsMaintenance: 1, IncidentTypeID: 3, IsCritical: 1}},
		Test:  []domain.TrainingExample{{ClientID: 2, IsCritical: 0}},
	}

	assert.Equal(t, [][]float64{{1, 10, 20, 1, 3}}, p.TrainX())
	assert.Equal(t, []int{1}, p.TrainY())
	assert.Equal(t, [][]float64{{2, 0, 0, 0, 0}}, p.TestX())
	assert.Equal(t, []int{0}, p.TestY())
}
