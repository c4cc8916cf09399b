package valueobject

import "errors"

// MetricType is the kind of dashboard-wide metric published after a load (Value Object)
type MetricType string

const (
	MetricAvailability MetricType = "availability"
	MetricResponseTime MetricType = "response_time"
	MetricIncidents    MetricType = "incidents"
	MetricSites        MetricType = "sites"
)

func (mt MetricType) Validate() error {
	switch mt {
	case MetricAvailability, MetricResponseTime, MetricIncidents, MetricSites:
		return nil
	default:
		return errors.New("invalid metric type")
	}
}

func (mt MetricType) String() string {
	return string(mt)
}
