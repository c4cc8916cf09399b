package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/application/usecase"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/internal/infrastructure/backend"
	"github.com/dreschagin/uptime-dashboard/pkg/config"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// options are the flags shared by every subcommand.
type options struct {
	backendURL string
	timeout    time.Duration
	sites      []string
	catalog    string
	start      string
	end        string
	last       time.Duration
	output     string
	logLevel   string

	now func() time.Time
	out io.Writer
}

// NewRootCommand builds uptimectl writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{now: time.Now, out: out}

	root := &cobra.Command{
		Use:   "uptimectl",
		Short: "Query uptime history from the terminal.",
		Long: `uptimectl fetches history from an uptime monitor backend and prints the
same summary, alert and series views the dashboard shows.

Examples:
  # Summary for two sites over the last day
  uptimectl summary --sites api,web

  # Unresolved down alerts in an explicit range
  uptimectl incidents --sites api --start 2024-05-01T00:00 --end 2024-05-02T00:00 --status unresolved --type down

  # Current status wall
  uptimectl status --backend http://monitor:5000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.validate()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.backendURL, "backend", "http://localhost:5000", "uptime monitor base URL")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "backend request timeout")
	flags.StringSliceVar(&opts.sites, "sites", nil, "comma separated site names")
	flags.StringVar(&opts.catalog, "catalog", "", "YAML site catalog used when --sites is empty")
	flags.StringVar(&opts.start, "start", "", "range start (YYYY-MM-DDTHH:MM)")
	flags.StringVar(&opts.end, "end", "", "range end (YYYY-MM-DDTHH:MM)")
	flags.DurationVar(&opts.last, "last", 24*time.Hour, "range length ending now, used when --start/--end are empty")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	flags.StringVar(&opts.logLevel, "log-level", "error", "log level")

	root.AddCommand(
		newSummaryCommand(opts),
		newIncidentsCommand(opts),
		newSeriesCommand(opts),
		newStatusCommand(opts),
	)
	return root
}

func (o *options) validate() error {
	switch o.output {
	case outputTable, outputJSON:
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
	if (o.start == "") != (o.end == "") {
		return errors.New("--start and --end must be given together")
	}
	if o.start == "" && o.last <= 0 {
		return errors.New("--last must be positive")
	}
	return nil
}

func (o *options) logger() *logger.Logger {
	return logger.NewWithWriter(o.logLevel, io.Discard)
}

func (o *options) client() (*backend.Client, error) {
	return backend.NewClient(o.backendURL, o.timeout, o.logger())
}

func (o *options) selectedSites() ([]string, error) {
	if len(o.sites) > 0 {
		return o.sites, nil
	}
	catalog, err := config.LoadSiteCatalog(o.catalog)
	if err != nil {
		return nil, err
	}
	return catalog.DefaultSelection(), nil
}

func (o *options) rangeParams() (string, string) {
	if o.start != "" {
		return o.start, o.end
	}
	end := o.now()
	return valueobject.FormatRequestTimestamp(end.Add(-o.last)), valueobject.FormatRequestTimestamp(end)
}

// dashboard runs one fetch through the same use cases the server uses.
type dashboard struct {
	session   *session.DashboardSession
	builder   *usecase.DashboardViewBuilder
	view      *dto.DashboardViewDTO
	filtersUC *usecase.UpdateAlertFiltersUseCase
}

func (o *options) loadDashboard(ctx context.Context, alertLimit int) (*dashboard, error) {
	client, err := o.client()
	if err != nil {
		return nil, err
	}
	sites, err := o.selectedSites()
	if err != nil {
		return nil, err
	}

	log := o.logger()
	builder := usecase.NewDashboardViewBuilder(service.NewIncidentRanker(alertLimit))
	loadUC := usecase.NewLoadDashboardUseCase(client, builder, usecase.LoadDashboardHooks{}, log)

	sess := session.New("uptimectl", o.now())
	start, end := o.rangeParams()
	view, err := loadUC.Execute(ctx, sess, usecase.LoadDashboardCommand{Sites: sites, Start: start, End: end})
	if err != nil {
		return nil, err
	}

	switch view.State {
	case dto.ViewStateEmptySelection:
		return nil, errors.New("no sites selected, use --sites or --catalog")
	case dto.ViewStateError:
		return nil, fmt.Errorf("%s (backend %s)", view.Message, strings.TrimRight(o.backendURL, "/"))
	}

	return &dashboard{
		session:   sess,
		builder:   builder,
		view:      view,
		filtersUC: usecase.NewUpdateAlertFiltersUseCase(builder, nil, log),
	}, nil
}
