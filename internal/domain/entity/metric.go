package entity

import (
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/google/uuid"
)

// Metric is one dashboard-wide measurement derived from a history load.
type Metric struct {
	id          string
	metricType  valueobject.MetricType
	metricName  string
	value       valueobject.MetricValue
	dimensions  map[string]string
	collectedAt time.Time
}

// NewMetric creates a metric stamped with the given collection time
func NewMetric(
	metricType valueobject.MetricType,
	metricName string,
	value valueobject.MetricValue,
	collectedAt time.Time,
) (*Metric, error) {
	if err := metricType.Validate(); err != nil {
		return nil, err
	}
	if collectedAt.IsZero() {
		collectedAt = time.Now()
	}

	return &Metric{
		id:          uuid.New().String(),
		metricType:  metricType,
		metricName:  metricName,
		value:       value,
		dimensions:  make(map[string]string),
		collectedAt: collectedAt,
	}, nil
}

func (m *Metric) ID() string {
	return m.id
}

func (m *Metric) Type() valueobject.MetricType {
	return m.metricType
}

func (m *Metric) Name() string {
	return m.metricName
}

func (m *Metric) Value() valueobject.MetricValue {
	return m.value
}

// Dimensions returns a copy
func (m *Metric) Dimensions() map[string]string {
	result := make(map[string]string, len(m.dimensions))
	for k, v := range m.dimensions {
		result[k] = v
	}
	return result
}

func (m *Metric) SetDimension(key, value string) {
	m.dimensions[key] = value
}

func (m *Metric) CollectedAt() time.Time {
	return m.collectedAt
}
