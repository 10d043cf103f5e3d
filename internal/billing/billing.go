package billing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Policy determines how raw elapsed time maps to billable hours.
type Policy string

const (
	// PolicyHourlyRounded bills a 1 hour minimum, then rounds up to whole hours.
	PolicyHourlyRounded Policy = "hourly_rounded"
	// PolicyMinimumHour bills a 1 hour minimum, then the exact fractional duration.
	PolicyMinimumHour Policy = "minimum_hour"
	// PolicyMinutePrecise bills per minute with a 15 minute minimum.
	PolicyMinutePrecise Policy = "minute_precise"
)

// DefaultPolicy is applied when a lot does not specify one.
const DefaultPolicy = PolicyHourlyRounded

// ErrInvalidInterval is returned when the end of an interval precedes its start.
var ErrInvalidInterval = errors.New("billing: end time is before start time")

// ParsePolicy validates a policy name, falling back to the default for "".
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyHourlyRounded, PolicyMinimumHour, PolicyMinutePrecise:
		return Policy(s), nil
	case "":
		return DefaultPolicy, nil
	}
	return "", fmt.Errorf("billing: unknown policy %q", s)
}

// Quote is the result of pricing a parking interval. Cost keeps full
// precision; rounding to two decimals happens only at display time.
type Quote struct {
	Cost          float64 `json:"-"`
	BillableHours float64 `json:"billable_hours"`
	DurationHours float64 `json:"duration_hours"`
	Explanation   string  `json:"explanation"`
}

// DisplayCost returns the cost rounded to two decimal places.
func (q Quote) DisplayCost() float64 {
	return math.Round(q.Cost*100) / 100
}

// Compute prices the interval [start, end] at ratePerHour under the given
// policy. The explanation is reproducible from policy and duration alone.
func Compute(start, end time.Time, ratePerHour float64, policy Policy) (Quote, error) {
	if end.Before(start) {
		return Quote{}, ErrInvalidInterval
	}

	duration := end.Sub(start)
	durationHours := duration.Hours()

	var billable float64
	var explanation string

	switch policy {
	case PolicyMinimumHour:
		if durationHours <= 1 {
			billable = 1
			explanation = "minimum 1 hour charge"
		} else {
			billable = durationHours
			explanation = "exact duration billed"
		}
	case PolicyMinutePrecise:
		minutes := duration.Minutes()
		if minutes < 15 {
			billable = 15.0 / 60.0
			explanation = "minimum 15 minute charge"
		} else {
			billable = minutes / 60.0
			explanation = "exact duration billed per minute"
		}
	default: // PolicyHourlyRounded
		if durationHours <= 1 {
			billable = 1
			explanation = "minimum 1 hour charge"
		} else {
			billable = math.Ceil(durationHours)
			explanation = fmt.Sprintf("%s rounded up to %d hours", FormatDuration(duration), int(billable))
		}
	}

	return Quote{
		Cost:          billable * ratePerHour,
		BillableHours: billable,
		DurationHours: durationHours,
		Explanation:   explanation,
	}, nil
}

// FormatDuration renders a duration as "2h 05m" for display.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}
