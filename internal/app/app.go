// Package app wires configuration, storage and the pipeline stages into the
// deskinsight command line.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deskinsight/internal/aggregate"
	"deskinsight/internal/config"
	"deskinsight/internal/explain"
	"deskinsight/internal/httpx"
	slackbot "deskinsight/internal/integrations/slack"
	"deskinsight/internal/logging"
	"deskinsight/internal/model"
	"deskinsight/internal/report"
)

// runtime holds what every command needs once config is loaded.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

func Main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	rt := &runtime{}
	var configPath string

	root := &cobra.Command{
		Use:   "deskinsight",
		Short: "Service-desk incident analytics and criticality classification",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("config") {
				if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
					return err
				}
			}
			return rt.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "config file (env CONFIG_PATH)")

	root.AddCommand(
		newLoadCmd(rt),
		newMetricsCmd(rt),
		newPredictCmd(rt),
		newReportCmd(rt),
		newServeCmd(rt),
	)
	return root
}

func (rt *runtime) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	logger.Debug("config loaded",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("db_path", cfg.DBPath),
		zap.String("dataset_path", cfg.DatasetPath),
		zap.String("artifact_dir", cfg.ArtifactDir),
		zap.String("timezone", cfg.Timezone),
		zap.Duration("external_http_timeout", appliedHTTPTimeout),
	)
	rt.cfg = cfg
	rt.logger = logger
	return nil
}

func (rt *runtime) predictor() *model.Predictor {
	return model.NewPredictor(model.Config{
		DatasetPath: rt.cfg.DatasetPath,
		SplitSeed:   rt.cfg.SplitSeed,
		TreeSeed:    rt.cfg.TreeSeed,
		ForestSeed:  rt.cfg.ForestSeed,
	}, explain.New(rt.cfg.ArtifactDir, rt.logger), rt.logger)
}

func (rt *runtime) reportJob(store Store, trigger string) *reportJob {
	return &reportJob{
		assembler: report.NewAssembler(aggregate.NewService(store, rt.logger), rt.cfg.ReportOutputDir, rt.logger),
		publisher: slackbot.NewPublisher(rt.cfg.SlackBotToken, rt.cfg.ReportChannelID, httpx.ExternalHTTPClient(), rt.logger),
		trigger:   trigger,
		logger:    rt.logger,
	}
}
