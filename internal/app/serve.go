package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deskinsight/internal/aggregate"
	"deskinsight/internal/httpapi"
	"deskinsight/internal/schedule"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the report scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := rt.openStore(ctx)
			if err != nil {
				return err
			}

			scheduled := rt.reportJob(store, "schedule")
			schedule.StartReportScheduler(ctx, rt.cfg.ReportSchedule, rt.cfg.Location, func(ctx context.Context) error {
				_, err := scheduled.Run(ctx, rt.cfg.ReportTopN, time.Now().In(rt.cfg.Location), scheduled.publisher.Enabled())
				return err
			}, rt.logger)

			e := httpapi.New(httpapi.Deps{
				Aggregator:  aggregate.NewService(store, rt.logger),
				Predictor:   rt.predictor(),
				Reporter:    rt.reportJob(store, "api"),
				ArtifactDir: rt.cfg.ArtifactDir,
				ReportTopN:  rt.cfg.ReportTopN,
				Location:    rt.cfg.Location,
				Logger:      rt.logger,
			})
			rt.logger.Info("starting deskinsight", zap.String("addr", rt.cfg.HTTPAddr), zap.String("db_driver", rt.cfg.DBDriver))
			return httpapi.Run(ctx, e, rt.cfg.HTTPAddr, rt.logger)
		},
	}
}
