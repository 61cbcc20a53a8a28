package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deskinsight/internal/config"
	"deskinsight/internal/explain"
	slackbot "deskinsight/internal/integrations/slack"
	"deskinsight/internal/storage/postgres"
	"deskinsight/internal/storage/sqlite"
)

const rawDoc = `{
  "clientes": [
    {"id_cli": "1", "nombre": "Acme", "telefono": "600111222"},
    {"id_cli": "2", "nombre": "Globex"}
  ],
  "empleados": [
    {"id_emp": "10", "nombre": "Ana", "nivel": 3},
    {"id_emp": "11", "nombre": "Luis"}
  ],
  "tipos_incidentes": [
    {"id_inci": "1", "nombre": "Red"},
    {"id_inci": "2", "nombre": "Hardware"}
  ],
  "tickets_emitidos": [
    {"cliente": "1", "fecha_apertura": "2023-01-01", "fecha_cierre": "2023-01-05",
     "es_mantenimiento": false, "satisfaccion_cliente": 7, "tipo_incidencia": 2, "es_critico": true,
     "contactos_con_empleados": [{"id_emp": "10", "fecha": "2023-01-02", "tiempo": 1.5}]},
    {"cliente": "2", "fecha_apertura": "2023-01-10",
     "es_mantenimiento": "1", "tipo_incidencia": 1, "es_critico": "False",
     "contactos_con_empleados": [{"id_emp": "11", "fecha": "2023-01-10", "tiempo": 0.5}]}
  ]
}`

const classifiedDoc = `{"tickets_emitidos": [
  {"cliente": 1, "fecha_apertura": "2023-01-01", "fecha_cierre": "2023-01-05", "es_mantenimiento": 0, "tipo_incidencia": 2, "es_critico": 1},
  {"cliente": 2, "fecha_apertura": "2023-01-03", "fecha_cierre": "2023-01-04", "es_mantenimiento": 1, "tipo_incidencia": 1, "es_critico": 0},
  {"cliente": 3, "fecha_apertura": "2023-02-01", "fecha_cierre": "2023-02-09", "es_mantenimiento": 0, "tipo_incidencia": 2, "es_critico": 1},
  {"cliente": 1, "fecha_apertura": "2023-02-10", "fecha_cierre": "2023-02-11", "es_mantenimiento": 1, "tipo_incidencia": 1, "es_critico": 0},
  {"cliente": 2, "fecha_apertura": "2023-03-01", "fecha_cierre": "2023-03-07", "es_mantenimiento": 0, "tipo_incidencia": 2, "es_critico": 1},
  {"cliente": 3, "fecha_apertura": "2023-03-02", "fecha_cierre": "2023-03-03", "es_mantenimiento": 1, "tipo_incidencia": 1, "es_critico": 0}
]}`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "data.json")
	datasetPath := filepath.Join(dir, "data_clasified.json")
	require.NoError(t, os.WriteFile(rawPath, []byte(rawDoc), 0o644))
	require.NoError(t, os.WriteFile(datasetPath, []byte(classifiedDoc), 0o644))

	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing-config.yaml"))
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "deskinsight.db"))
	t.Setenv("RAW_DATA_PATH", rawPath)
	t.Setenv("DATASET_PATH", datasetPath)
	t.Setenv("ARTIFACT_DIR", filepath.Join(dir, "artifacts"))
	t.Setenv("REPORT_OUTPUT_DIR", filepath.Join(dir, "reports"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SPLIT_SEED", "1")
	t.Setenv("TREE_SEED", "2")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadThenMetrics(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 clients, 2 employees, 2 incident types, 2 tickets, 2 contacts")

	out, err = execute(t, "metrics", "--clients", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.NotContains(t, out, "Globex")
	assert.Contains(t, out, "Hardware")
	assert.Contains(t, out, "Ana")
}

func TestLoadRejectsMissingFile(t *testing.T) {
	dir := setupEnv(t)

	_, err := execute(t, "load", "--file", filepath.Join(dir, "nope.json"))
	require.Error(t, err)
}

func TestMetricsRejectsNegativeLimit(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "metrics", "--employees", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid limit -1")
}

func TestPredictTree(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "predict", "--model", "tree", "--features", "1,20230101,20230105,0,2")
	require.NoError(t, err)

	var res struct {
		Model     string   `json:"model"`
		Label     string   `json:"label"`
		Artifacts []string `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "tree", res.Model)
	assert.Contains(t, []string{"critical", "not_critical"}, res.Label)
	assert.Equal(t, []string{explain.TreeFile}, res.Artifacts)
	assert.FileExists(t, filepath.Join(dir, "artifacts", explain.TreeFile))
}

func TestPredictRejectsUnknownModel(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "predict", "--model", "svm", "--features", "1,20230101,20230105,0,2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model")
}

func TestReportWritesFiles(t *testing.T) {
	dir := setupEnv(t)
	_, err := execute(t, "load")
	require.NoError(t, err)

	out, err := execute(t, "report", "--top", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	matches, err := filepath.Glob(filepath.Join(dir, "reports", "incident_report_*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# Informe: Top 5 Clientes con Métricas"))
}

func TestReportPublishRequiresSlack(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "load")
	require.NoError(t, err)

	out, err := execute(t, "report", "--publish")
	if !errors.Is(err, slackbot.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	assert.Contains(t, out, "Report written to")
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore(config.Config{DBDriver: config.DriverSQLite, DBPath: "x.db"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, s)

	s, err = OpenStore(config.Config{DBDriver: config.DriverPostgres, DatabaseURL: "postgres://localhost/x"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &postgres.Store{}, s)

	_, err = OpenStore(config.Config{DBDriver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}
