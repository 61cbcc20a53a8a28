// Package report builds the top-clients metrics document with its charts.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"deskinsight/internal/domain"
	"deskinsight/internal/format"
	"deskinsight/internal/telemetry"
)

const emptyMessage = "No hay datos disponibles."

// MetricsSource supplies the per-client rows of the report.
type MetricsSource interface {
	ClientMetrics(ctx context.Context, limit int) ([]domain.ClientMetrics, error)
}

// Report lists the files written by one build.
type Report struct {
	Path      string
	EmailPath string
	Charts    []string
	Rows      int
}

type Assembler struct {
	source    MetricsSource
	outputDir string
	logger    *zap.Logger
}

func NewAssembler(source MetricsSource, outputDir string, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{source: source, outputDir: outputDir, logger: logger}
}

// Build queries the top topN clients and writes the markdown report, its
// charts and an email draft for date.
func (a *Assembler) Build(ctx context.Context, topN int, date time.Time) (rep Report, err error) {
	ctx, span := telemetry.StartSpan(ctx, "report.build")
	defer func() { telemetry.EndSpan(span, err) }()

	rows, err := a.source.ClientMetrics(ctx, topN)
	if err != nil {
		return Report{}, fmt.Errorf("client metrics: %w", err)
	}

	stem := "incident_report_" + date.Format("20060102")
	var charts []chartFile
	if len(rows) > 0 {
		charts, err = writeCharts(a.outputDir, stem, rows)
		if err != nil {
			return Report{}, fmt.Errorf("charts: %w", err)
		}
	}

	content := render(topN, date, rows, charts)
	path, err := WriteReportFile(content, a.outputDir, stem)
	if err != nil {
		return Report{}, err
	}
	emailPath, err := WriteEmailDraftFile(content, a.outputDir, stem, Title(topN))
	if err != nil {
		return Report{}, err
	}

	rep = Report{Path: path, EmailPath: emailPath, Rows: len(rows)}
	for _, c := range charts {
		rep.Charts = append(rep.Charts, c.name)
	}
	a.logger.Info("report written", zap.String("path", path), zap.Int("clients", len(rows)), zap.Int("charts", len(charts)))
	return rep, nil
}

func Title(topN int) string {
	return fmt.Sprintf("Informe: Top %d Clientes con Métricas", topN)
}

// render produces the markdown body of the report.
func render(topN int, date time.Time, rows []domain.ClientMetrics, charts []chartFile) string {
	var b strings.Builder
	b.WriteString("# " + Title(topN) + "\n\n")
	b.WriteString("Fecha: " + date.Format("2006-01-02") + "\n\n")

	if len(rows) == 0 {
		b.WriteString(emptyMessage + "\n")
		return b.String()
	}

	t := format.NewTable(format.Markdown, "")
	t.Header("Cliente", "Incidencias", "Tiempo medio de resolución (días)", "Satisfacción media")
	for _, r := range rows {
		t.Row(r.Client, r.TotalIncidents, format.Days(r.AvgDays), format.Days(r.AvgSatisfaction))
	}
	t.AlignRight(2, 3, 4)
	b.WriteString(t.String())
	b.WriteString("\n")

	for _, c := range charts {
		b.WriteString("\n### " + c.title + "\n\n")
		fmt.Fprintf(&b, "![%s](%s)\n", c.title, c.name)
	}
	return b.String()
}
