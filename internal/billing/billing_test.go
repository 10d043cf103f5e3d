package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name              string
		elapsed           time.Duration
		rate              float64
		policy            Policy
		wantBillableHours float64
		wantCost          float64
		wantExplanation   string
	}{
		{
			name:              "45 minutes rounds to 1 hour minimum",
			elapsed:           45 * time.Minute,
			rate:              20,
			policy:            PolicyHourlyRounded,
			wantBillableHours: 1,
			wantCost:          20.00,
			wantExplanation:   "minimum 1 hour charge",
		},
		{
			name:              "130 minutes rounds up to 3 hours",
			elapsed:           130 * time.Minute,
			rate:              20,
			policy:            PolicyHourlyRounded,
			wantBillableHours: 3,
			wantCost:          60.00,
			wantExplanation:   "2h 10m rounded up to 3 hours",
		},
		{
			name:              "exactly one hour bills one hour",
			elapsed:           time.Hour,
			rate:              12.5,
			policy:            PolicyHourlyRounded,
			wantBillableHours: 1,
			wantCost:          12.5,
			wantExplanation:   "minimum 1 hour charge",
		},
		{
			name:              "zero duration still bills the minimum",
			elapsed:           0,
			rate:              20,
			policy:            PolicyHourlyRounded,
			wantBillableHours: 1,
			wantCost:          20,
			wantExplanation:   "minimum 1 hour charge",
		},
		{
			name:              "minimum_hour keeps fractional duration above the floor",
			elapsed:           90 * time.Minute,
			rate:              20,
			policy:            PolicyMinimumHour,
			wantBillableHours: 1.5,
			wantCost:          30.00,
			wantExplanation:   "exact duration billed",
		},
		{
			name:              "minimum_hour applies the floor below one hour",
			elapsed:           20 * time.Minute,
			rate:              20,
			policy:            PolicyMinimumHour,
			wantBillableHours: 1,
			wantCost:          20.00,
			wantExplanation:   "minimum 1 hour charge",
		},
		{
			name:              "minute_precise applies 15 minute minimum",
			elapsed:           10 * time.Minute,
			rate:              30,
			policy:            PolicyMinutePrecise,
			wantBillableHours: 0.25,
			wantCost:          7.50,
			wantExplanation:   "minimum 15 minute charge",
		},
		{
			name:              "minute_precise bills exact minutes above the minimum",
			elapsed:           90 * time.Minute,
			rate:              30,
			policy:            PolicyMinutePrecise,
			wantBillableHours: 1.5,
			wantCost:          45.00,
			wantExplanation:   "exact duration billed per minute",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := Compute(start, start.Add(tc.elapsed), tc.rate, tc.policy)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantBillableHours, quote.BillableHours, 1e-9)
			assert.InDelta(t, tc.wantCost, quote.Cost, 1e-9)
			assert.Equal(t, tc.wantExplanation, quote.Explanation)
			assert.InDelta(t, tc.elapsed.Hours(), quote.DurationHours, 1e-9)
		})
	}
}

func TestComputeInvalidInterval(t *testing.T) {
	start := time.Now()
	_, err := Compute(start, start.Add(-time.Minute), 20, PolicyHourlyRounded)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestDisplayCostRoundsToTwoDecimals(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// 100 minutes at 7/hour under minimum_hour: 7 * (100/60) = 11.666...
	quote, err := Compute(start, start.Add(100*time.Minute), 7, PolicyMinimumHour)
	require.NoError(t, err)
	assert.Greater(t, quote.Cost, 11.66)
	assert.Equal(t, 11.67, quote.DisplayCost())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy, p)

	p, err = ParsePolicy("minute_precise")
	require.NoError(t, err)
	assert.Equal(t, PolicyMinutePrecise, p)

	_, err = ParsePolicy("per_day")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h 10m", FormatDuration(130*time.Minute))
	assert.Equal(t, "0h 05m", FormatDuration(5*time.Minute))
	assert.Equal(t, "0h 00m", FormatDuration(-time.Minute))
}
