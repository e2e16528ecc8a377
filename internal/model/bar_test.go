package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBarValidate(t *testing.T) {
	ok := Bar{Date: day("2024-01-02"), Open: 100, High: 105, Low: 98, Close: 102, Volume: 1000}
	assert.NoError(t, ok.Validate())

	cases := map[string]Bar{
		"nan close":        {Open: 100, High: 105, Low: 98, Close: math.NaN()},
		"inf high":         {Open: 100, High: math.Inf(1), Low: 98, Close: 100},
		"zero low":         {Open: 100, High: 105, Low: 0, Close: 100},
		"negative volume":  {Open: 100, High: 105, Low: 98, Close: 100, Volume: -1},
		"low above open":   {Open: 97, High: 105, Low: 98, Close: 100},
		"high below close": {Open: 100, High: 101, Low: 98, Close: 102},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, b.Validate())
		})
	}
}

func TestValidateSeriesRejectsDuplicateDates(t *testing.T) {
	b := Bar{Date: day("2024-01-02"), Open: 100, High: 101, Low: 99, Close: 100}
	err := ValidateSeries([]Bar{b, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 31, DaysBetween(day("2024-01-01"), day("2024-02-01")))
	assert.Equal(t, 0, DaysBetween(day("2024-01-01"), day("2024-01-01")))
	assert.Equal(t, -1, DaysBetween(day("2024-01-02"), day("2024-01-01")))
}

func TestParseStrategyID(t *testing.T) {
	for in, want := range map[string]StrategyID{
		"BUFFETT":  StrategyValue,
		"value":    StrategyValue,
		" Marks ":  StrategyContrarian,
		"momentum": StrategyMomentum,
		"ackman":   StrategyMomentum,
		"NEURAL":   StrategyNeural,
	} {
		got, err := ParseStrategyID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStrategyID("oracle")
	assert.Error(t, err)
}

func TestErrorsAreMatchable(t *testing.T) {
	var err error = &InsufficientDataError{Bars: 1, Need: 2}
	var ide *InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 1, ide.Bars)

	err = &InvalidRangeError{Days: 0}
	assert.Contains(t, err.Error(), "days must be > 0")
	err = &InvalidRangeError{Start: day("2024-02-01"), End: day("2024-01-01")}
	assert.Contains(t, err.Error(), "2024-01-01")
}
