package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
)

var validUnits = map[valueobject.MetricType]string{
	valueobject.MetricAvailability: valueobject.UnitPercent,
	valueobject.MetricResponseTime: valueobject.UnitSeconds,
	valueobject.MetricIncidents:    valueobject.UnitCount,
	valueobject.MetricSites:        valueobject.UnitCount,
}

// MetricValidator checks summary metrics before they leave the process.
type MetricValidator struct {
	now func() time.Time
}

func NewMetricValidator() *MetricValidator {
	return &MetricValidator{now: time.Now}
}

func (v *MetricValidator) Validate(metric *entity.Metric) error {
	if metric == nil {
		return errors.New("metric cannot be nil")
	}
	if err := metric.Type().Validate(); err != nil {
		return err
	}
	if want := validUnits[metric.Type()]; metric.Value().Unit() != want {
		return fmt.Errorf("metric %s: unit %q, want %q", metric.Name(), metric.Value().Unit(), want)
	}
	if metric.CollectedAt().After(v.now().Add(time.Minute)) {
		return fmt.Errorf("metric %s: collected_at is in the future", metric.Name())
	}
	if metric.Type() == valueobject.MetricAvailability && metric.Value().Raw() > 100 {
		return fmt.Errorf("metric %s: availability above 100%%", metric.Name())
	}
	return nil
}

// SummaryMetrics turns a dashboard summary into the metrics batch published
// after a load. Absent averages are skipped, as are values that fail validation.
func (v *MetricValidator) SummaryMetrics(summary Summary, at time.Time) ([]*entity.Metric, error) {
	metrics := make([]*entity.Metric, 0, 5)
	var errs []error

	add := func(metricType valueobject.MetricType, name string, value float64) {
		mv, err := valueobject.NewMetricValue(value, validUnits[metricType])
		if err != nil {
			errs = append(errs, fmt.Errorf("metric %s: %w", name, err))
			return
		}
		metric, err := entity.NewMetric(metricType, name, mv, at)
		if err != nil {
			errs = append(errs, fmt.Errorf("metric %s: %w", name, err))
			return
		}
		if err := v.Validate(metric); err != nil {
			errs = append(errs, err)
			return
		}
		metric.SetDimension("source", "dashboard")
		metrics = append(metrics, metric)
	}

	if summary.AvgAvailability != nil {
		add(valueobject.MetricAvailability, "avg_availability", *summary.AvgAvailability)
	}
	if summary.AvgResponse != nil {
		add(valueobject.MetricResponseTime, "avg_response_time", *summary.AvgResponse)
	}
	add(valueobject.MetricIncidents, "down_segments", float64(summary.DownSegments))
	add(valueobject.MetricIncidents, "slow_segments", float64(summary.SlowSegments))
	add(valueobject.MetricSites, "selected_sites", float64(summary.SiteCount))

	return metrics, errors.Join(errs...)
}
