package stats

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pricing/internal/config"
	"agile-pricing/internal/model"
	"agile-pricing/internal/uktime"
)

func testCalculator(t *testing.T) *Calculator {
	t.Helper()
	c := NewCalculator(config.Default(), zerolog.Nop())
	// Pin the clock well past the test year so full-year walks are
	// deterministic.
	c.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, uktime.UK)
	}
	return c
}

func daySlots(t *testing.T, date string, prices ...float64) []model.PriceSlot {
	t.Helper()
	day, err := time.ParseInLocation("2006-01-02", date, uktime.UK)
	require.NoError(t, err)
	start := uktime.StartOfDay(day)
	out := make([]model.PriceSlot, 0, len(prices))
	for i, p := range prices {
		from := start.Add(time.Duration(i) * model.SlotDuration)
		out = append(out, model.PriceSlot{ValueIncVAT: p, ValidFrom: from, ValidTo: from.Add(model.SlotDuration)})
	}
	return out
}

func flatDay(t *testing.T, date string, price float64) []model.PriceSlot {
	t.Helper()
	prices := make([]float64, 48)
	for i := range prices {
		prices[i] = price
	}
	return daySlots(t, date, prices...)
}

func TestCalculateYearStatsFlatYear(t *testing.T) {
	c := testCalculator(t)
	source := SlotsByDay{"2024-01-15": flatDay(t, "2024-01-15", 20.0)}

	s := c.CalculateYearStats("AGILE-24-10-01", "H", 2024, source)

	assert.Equal(t, 2024, s.Year)
	assert.Equal(t, "H", s.RegionCode)
	assert.Equal(t, "AGILE-24-10-01", s.ProductCode)
	assert.Equal(t, 1, s.DaysProcessed)
	assert.Equal(t, 365, s.DaysFailed) // leap year, one day present

	assert.Equal(t, 3.5, s.CheapestBlock.BlockHours)
	assert.Equal(t, 20.0, s.CheapestBlock.AvgPricePPerKWh)
	assert.Equal(t, 20.0, s.DailyAverage.AvgPricePPerKWh)

	// A flat day saves nothing against its own average.
	assert.Equal(t, 0.0, s.SavingsVsDailyAverage.SavingsPPerKWh)
	assert.Equal(t, 0.0, s.SavingsVsDailyAverage.SavingsPercentage)
	assert.Equal(t, 0.0, s.SavingsVsDailyAverage.AnnualSavingGBP)

	// Against the 28.6p cap: 8.6p saved on 3.85 shiftable kWh over 365 days.
	assert.Equal(t, 28.6, s.PriceCapComparison.CapPricePPerKWh)
	assert.Equal(t, 8.6, s.PriceCapComparison.SavingsPPerKWh)
	assert.Equal(t, 120.85, s.PriceCapComparison.AnnualSavingGBP)

	assert.Equal(t, 0, s.NegativePricing.TotalNegativeSlots)
	assert.Equal(t, 0.0, s.NegativePricing.TotalPaidGBP)

	assert.Equal(t, 11.0, s.Assumptions.DailyKWh)
	assert.True(t, s.Assumptions.UsageShiftedToCheapestBlocks)
}

func TestCalculateYearStatsNegativePricing(t *testing.T) {
	c := testCalculator(t)
	// One short day: a negative slot, a zero slot, then positive prices.
	source := SlotsByDay{
		"2024-01-15": daySlots(t, "2024-01-15", -1.5, 0, 16, 18, 20, 22, 24),
	}

	s := c.CalculateYearStats("AGILE-24-10-01", "H", 2024, source)

	neg := s.NegativePricing
	assert.Equal(t, 2, neg.TotalNegativeSlots, "zero counts as negative exposure")
	assert.Equal(t, 1.0, neg.TotalNegativeHours)
	assert.Equal(t, 0.75, neg.AvgNegativePricePPerKWh)
	// (1.5 + 0) p/kWh * 3.5 kW * 0.5 h = 2.625 p = £0.03 rounded.
	assert.Equal(t, 0.03, neg.TotalPaidGBP)
	assert.Equal(t, 0.0, neg.AvgPaymentPerDayGBP)
}

func TestCalculateYearStatsSkipsMissingDays(t *testing.T) {
	c := testCalculator(t)
	source := SlotsByDay{
		"2024-01-15": flatDay(t, "2024-01-15", 20.0),
		"2024-01-17": flatDay(t, "2024-01-17", 30.0),
	}

	s := c.CalculateYearStats("AGILE-24-10-01", "H", 2024, source)

	assert.Equal(t, 2, s.DaysProcessed)
	assert.Equal(t, 364, s.DaysFailed)
	assert.Equal(t, 25.0, s.DailyAverage.AvgPricePPerKWh)
	assert.Equal(t, 25.0, s.CheapestBlock.AvgPricePPerKWh)
}

func TestCalculateYearStatsCurrentYearStopsAtToday(t *testing.T) {
	c := testCalculator(t)
	c.now = func() time.Time {
		return time.Date(2024, 1, 3, 9, 0, 0, 0, uktime.UK)
	}

	s := c.CalculateYearStats("AGILE-24-10-01", "H", 2024, SlotsByDay{})

	assert.Equal(t, 0, s.DaysProcessed)
	assert.Equal(t, 3, s.DaysFailed, "walk covers Jan 1 through today only")
}

func TestCalculateYearStatsIdempotent(t *testing.T) {
	c := testCalculator(t)
	source := SlotsByDay{"2024-01-15": daySlots(t, "2024-01-15", -1.5, 0, 16, 18, 20, 22, 24)}

	a := c.CalculateYearStats("AGILE-24-10-01", "H", 2024, source)
	b := c.CalculateYearStats("AGILE-24-10-01", "H", 2024, source)
	a.CalculationDate = time.Time{}
	b.CalculationDate = time.Time{}
	assert.Equal(t, a, b)
}

func TestNewSlotsByDayBucketsUKLocal(t *testing.T) {
	// Summer: 23:00Z belongs to the next UK date.
	day, err := time.ParseInLocation("2006-01-02", "2024-06-15", uktime.UK)
	require.NoError(t, err)
	start := uktime.StartOfDay(day)
	slots := make([]model.PriceSlot, 0, 50)
	for i := 0; i < 50; i++ {
		from := start.Add(time.Duration(i) * model.SlotDuration)
		slots = append(slots, model.PriceSlot{ValueIncVAT: 10, ValidFrom: from, ValidTo: from.Add(model.SlotDuration)})
	}

	byDay := NewSlotsByDay(slots)
	assert.Len(t, byDay.SlotsForDay("2024-06-15"), 48)
	assert.Len(t, byDay.SlotsForDay("2024-06-16"), 2)
	assert.Empty(t, byDay.SlotsForDay("2024-06-17"))
}
