package cli

import (
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/application/usecase"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/spf13/cobra"
)

func newSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show availability, response time and incident totals.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.loadDashboard(cmd.Context(), service.DefaultAlertLimit)
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(opts.out, map[string]any{"summary": d.view.Summary, "sla": d.view.SLA})
			}
			return writeSummary(opts.out, d.view)
		},
	}
}

func newIncidentsCommand(opts *options) *cobra.Command {
	var status, typ string
	var limit int

	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "List alerts newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.loadDashboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			view, err := d.filtersUC.Execute(cmd.Context(), d.session, usecase.UpdateAlertFiltersCommand{Status: status, Type: typ})
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(opts.out, view.Alerts)
			}
			return writeAlerts(opts.out, view.Alerts)
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, unresolved or resolved")
	cmd.Flags().StringVar(&typ, "type", "all", "all, down or slow")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultAlertLimit, "maximum rows")
	return cmd
}

func newSeriesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "series",
		Short: "Print response times aligned on one time axis.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.loadDashboard(cmd.Context(), service.DefaultAlertLimit)
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(opts.out, map[string]any{"series": d.view.Series, "reference_lines": d.view.ReferenceLines})
			}
			return writeSeries(opts.out, d.view.Series)
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current status wall.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			wallUC := usecase.NewRefreshStatusWallUseCase(client, nil, nil, opts.logger())
			if _, err := wallUC.Execute(cmd.Context()); err != nil {
				return err
			}
			wall := wallUC.ForSession(session.New("uptimectl", opts.now()))
			if opts.output == outputJSON {
				return writeJSON(opts.out, wall)
			}
			return writeStatusWall(opts.out, wall)
		},
	}
}
