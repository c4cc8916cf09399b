package valueobject

import (
	"errors"
	"fmt"
)

// Units understood by metric publishers.
const (
	UnitPercent = "%"
	UnitSeconds = "s"
	UnitCount   = "count"
)

// MetricValue is a finite, non-negative measurement with a unit (Value Object)
type MetricValue struct {
	value float64
	unit  string
}

func NewMetricValue(value float64, unit string) (MetricValue, error) {
	if !IsFinite(value) {
		return MetricValue{}, fmt.Errorf("%w: value is not finite", ErrParse)
	}
	if value < 0 {
		return MetricValue{}, errors.New("value cannot be negative")
	}
	if unit == "" {
		return MetricValue{}, errors.New("unit cannot be empty")
	}

	return MetricValue{value: value, unit: unit}, nil
}

func (mv MetricValue) Raw() float64 {
	return mv.value
}

func (mv MetricValue) Unit() string {
	return mv.unit
}

func (mv MetricValue) String() string {
	return fmt.Sprintf("%.2f %s", mv.value, mv.unit)
}
