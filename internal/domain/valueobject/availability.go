package valueobject

import (
	"fmt"
	"math"
)

// MaxDisplayedNines caps the nines count rendered in labels.
// The count itself is never capped.
const MaxDisplayedNines = 9

const (
	placeholderText  = "--"
	infiniteNines    = "infinite nines"
	lessThanOneNine  = "less than one nine"
	labelSeparator   = " · "
	percentPrecision = 2
)

// Nines is the "number of nines" of an availability percentage (Value Object).
// The zero value is the null result produced for non-finite input.
type Nines struct {
	count    int
	infinite bool
	valid    bool
}

// NinesOf computes floor(-log10(1 - availability/100)) clamped to 0.
// Availability of 100 or more has infinite nines; NaN and ±Inf yield a null Nines.
// The ratio is taken in float64, so exact boundaries round down: NinesOf(99.99) is 3.
func NinesOf(availability float64) Nines {
	if math.IsNaN(availability) || math.IsInf(availability, 0) {
		return Nines{}
	}
	if availability >= 100 {
		return Nines{infinite: true, valid: true}
	}

	downtimeRatio := 1 - availability/100
	if downtimeRatio <= 0 {
		return Nines{infinite: true, valid: true}
	}

	count := int(math.Floor(-math.Log10(downtimeRatio)))
	if count < 0 {
		count = 0
	}
	return Nines{count: count, valid: true}
}

// IsNull reports whether the input availability was not a finite number.
func (n Nines) IsNull() bool {
	return !n.valid
}

// IsInfinite reports whether there was no downtime at all.
func (n Nines) IsInfinite() bool {
	return n.valid && n.infinite
}

// Count returns the finite nines count; 0 for null or infinite results.
func (n Nines) Count() int {
	if !n.valid || n.infinite {
		return 0
	}
	return n.count
}

// Label renders the nines for display. Empty for a null result.
func (n Nines) Label() string {
	switch {
	case !n.valid:
		return ""
	case n.infinite:
		return infiniteNines
	case n.count <= 0:
		return lessThanOneNine
	case n.count == 1:
		return "1 nine"
	case n.count >= MaxDisplayedNines:
		return fmt.Sprintf("%d+ nines", MaxDisplayedNines)
	default:
		return fmt.Sprintf("%d nines", n.count)
	}
}

// AvailabilityLabel is the human-readable form of an availability percentage.
type AvailabilityLabel struct {
	ValueText     string `json:"value_text"`
	NinesLabel    string `json:"nines_label"`
	CombinedLabel string `json:"combined_label"`
}

// DescribeAvailability is total over every float64, including NaN and ±Inf.
func DescribeAvailability(availability float64) AvailabilityLabel {
	valueText := FormatPercent(availability)
	ninesLabel := NinesOf(availability).Label()

	combined := valueText
	if ninesLabel != "" {
		combined = valueText + labelSeparator + ninesLabel
	}

	return AvailabilityLabel{
		ValueText:     valueText,
		NinesLabel:    ninesLabel,
		CombinedLabel: combined,
	}
}

// FormatPercent formats a percentage with two decimals, or "--" if not finite.
func FormatPercent(value float64) string {
	if !IsFinite(value) {
		return placeholderText
	}
	return fmt.Sprintf("%.*f%%", percentPrecision, value)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Placeholder is the text shown for a value that cannot be computed.
func Placeholder() string {
	return placeholderText
}
