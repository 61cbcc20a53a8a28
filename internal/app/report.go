package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	slackbot "deskinsight/internal/integrations/slack"
	"deskinsight/internal/report"
	"deskinsight/internal/telemetry"
)

// reportJob builds the client report and optionally publishes it. trigger
// labels the metrics: cli, schedule or api.
type reportJob struct {
	assembler *report.Assembler
	publisher *slackbot.Publisher
	trigger   string
	logger    *zap.Logger
}

func (j *reportJob) Build(ctx context.Context, topN int, date time.Time) (rep report.Report, err error) {
	defer func() {
		telemetry.ReportsGeneratedTotal.WithLabelValues(j.trigger, telemetry.Status(err)).Inc()
	}()
	return j.assembler.Build(ctx, topN, date)
}

func (j *reportJob) Run(ctx context.Context, topN int, date time.Time, publish bool) (report.Report, error) {
	rep, err := j.Build(ctx, topN, date)
	if err != nil {
		return rep, err
	}
	if !publish {
		return rep, nil
	}
	comment := fmt.Sprintf("Informe de incidencias del %s (%d clientes)", date.Format("2006-01-02"), rep.Rows)
	if err := j.publisher.Publish(ctx, rep.Path, report.Title(topN), comment); err != nil {
		return rep, fmt.Errorf("publish report: %w", err)
	}
	return rep, nil
}

func newReportCmd(rt *runtime) *cobra.Command {
	var flags struct {
		top     int
		publish bool
	}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the client metrics report with charts and an email draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			topN := rt.cfg.ReportTopN
			if cmd.Flags().Changed("top") {
				topN = flags.top
			}

			rep, err := rt.reportJob(store, "cli").Run(ctx, topN, time.Now().In(rt.cfg.Location), flags.publish)
			if rep.Path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", rep.Path)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&flags.top, "top", 0, "number of clients (default report_top_n)")
	cmd.Flags().BoolVar(&flags.publish, "publish", false, "upload the report to the Slack report channel")
	return cmd
}
