package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	downColor = color.New(color.FgRed, color.Bold)
	slowColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

func stateLabel(state, label string) string {
	switch state {
	case "down":
		return downColor.Sprint(label)
	case "slow":
		return slowColor.Sprint(label)
	case "ok", "up":
		return okColor.Sprint(label)
	default:
		return label
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummary(w io.Writer, view *dto.DashboardViewDTO) error {
	s := view.Summary
	if s == nil {
		_, err := fmt.Fprintln(w, "No summary")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	rows := [][]string{
		{"Sites", s.SiteCountText},
		{"Availability", s.Availability.CombinedLabel},
		{"Avg response (s)", s.AvgResponseText},
		{"Incidents", s.IncidentsText},
		{"Breakdown", s.IncidentHint},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if view.SLA == nil || len(view.SLA.Sites) == 0 {
		return nil
	}
	sla := tablewriter.NewWriter(w)
	sla.Header([]string{"Site", "Today", "Week", "Month"})
	sla.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, site := range view.SLA.Sites {
		data = append(data, []string{site.Site, percent(site.Today), percent(site.Week), percent(site.Month)})
	}
	if err := sla.Bulk(data); err != nil {
		return err
	}
	return sla.Render()
}

func writeAlerts(w io.Writer, alerts *dto.AlertTableDTO) error {
	if alerts == nil || len(alerts.Rows) == 0 {
		msg := "No alerts"
		if alerts != nil && alerts.EmptyMessage != "" {
			msg = alerts.EmptyMessage
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Site", "Type", "Start", "End", "Duration", "Detail"})
	var data [][]string
	for _, row := range alerts.Rows {
		data = append(data, []string{
			row.SiteName,
			stateLabel(row.StatusKey, row.TypeLabel),
			row.StartText,
			row.EndText,
			row.DurationText,
			row.Detail,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if alerts.Truncated {
		_, err := fmt.Fprintln(w, alerts.Footnote)
		return err
	}
	return nil
}

func writeSeries(w io.Writer, series *dto.SeriesDTO) error {
	if series == nil || len(series.Timestamps) == 0 {
		_, err := fmt.Fprintln(w, "No response time data")
		return err
	}

	headers := []string{"Time"}
	for _, site := range series.Sites {
		headers = append(headers, site.Site)
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for i, label := range series.AxisLabels {
		row := []string{label}
		for _, site := range series.Sites {
			cell := "-"
			if i < len(site.Values) && site.Values[i] != nil {
				cell = strconv.FormatFloat(*site.Values[i], 'f', 3, 64)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d points, %s granularity\n", len(series.Timestamps), series.Granularity)
	return err
}

func writeStatusWall(w io.Writer, wall *dto.StatusWallDTO) error {
	if wall == nil || len(wall.Cards) == 0 {
		_, err := fmt.Fprintln(w, "No sites reported")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Site", "Status", "Response", "Since", "Checks"})
	var data [][]string
	for _, card := range wall.Cards {
		checks := ""
		if card.TotalChecks != nil {
			checks = strconv.Itoa(*card.TotalChecks)
		}
		data = append(data, []string{
			card.Name,
			stateLabel(card.State, card.StatusLabel),
			card.ResponseTimeText,
			card.Since,
			checks,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
