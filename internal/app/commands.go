package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deskinsight/internal/aggregate"
	"deskinsight/internal/format"
	"deskinsight/internal/normalize"
)

func newLoadCmd(rt *runtime) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Normalize the raw record set and load it into the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = rt.cfg.RawDataPath
			}
			rs, err := normalize.LoadRecordSet(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			entities, err := normalize.Prepare(rs)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			stats, err := store.Load(ctx, entities)
			if err != nil {
				return fmt.Errorf("load records: %w", err)
			}
			rt.logger.Info("record set loaded", zap.String("file", file), zap.Int("tickets", stats.Tickets))
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d clients, %d employees, %d incident types, %d tickets, %d contacts\n",
				stats.Clients, stats.Employees, stats.IncidentTypes, stats.Tickets, stats.Contacts)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "raw record set (default raw_data_path)")
	return cmd
}

func newMetricsCmd(rt *runtime) *cobra.Command {
	var flags struct {
		clients   int
		incidents int
		employees int
		markdown  bool
	}
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the top clients, incident types and employees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			svc := aggregate.NewService(store, rt.logger)
			mode := format.ASCII
			if flags.markdown {
				mode = format.Markdown
			}

			clients, err := svc.TopClientsByIncidentCount(ctx, flags.clients)
			if err != nil {
				return err
			}
			types, err := svc.TopIncidentTypesByResolutionTime(ctx, flags.incidents)
			if err != nil {
				return err
			}
			employees, err := svc.TopEmployeesByResolutionTime(ctx, flags.employees)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, format.TopClients(mode, clients))
			fmt.Fprintln(out)
			fmt.Fprintln(out, format.ResolutionTimes(mode, "Incident types by resolution time", "Incident type", types))
			fmt.Fprintln(out)
			fmt.Fprintln(out, format.ResolutionTimes(mode, "Employees by resolution time", "Employee", employees))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&flags.clients, "clients", 5, "number of clients to rank")
	f.IntVar(&flags.incidents, "incidents", 5, "number of incident types to rank")
	f.IntVar(&flags.employees, "employees", 5, "number of employees to rank")
	f.BoolVar(&flags.markdown, "markdown", false, "render markdown tables")
	return cmd
}

func newPredictCmd(rt *runtime) *cobra.Command {
	var flags struct {
		model    string
		features []string
	}
	cmd := &cobra.Command{
		Use:     "predict",
		Short:   "Train a model on the classified dataset and classify one ticket",
		Example: "  deskinsight predict --model tree --features 1,20230101,20230105,0,2",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := make([]any, len(flags.features))
			for i, f := range flags.features {
				values[i] = f
			}
			res, err := rt.predictor().PredictRaw(cmd.Context(), flags.model, values)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.model, "model", "", "regression, tree or forest (required)")
	f.StringSliceVar(&flags.features, "features", nil, "client,open YYYYMMDD,close YYYYMMDD,maintenance,incident type (required)")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("features")
	return cmd
}
