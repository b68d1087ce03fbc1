package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pricing/internal/model"
)

func twoWinterDays(t *testing.T) []model.PriceSlot {
	t.Helper()
	day1 := make([]float64, 48)
	day2 := make([]float64, 48)
	for i := range day1 {
		day1[i] = 10 + float64(i%8)
		day2[i] = 12 + float64(i%8)
	}
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), day1...)
	return append(slots, makeSlots(utc("2024-01-16T00:00:00Z"), day2...)...)
}

func TestGroupByLocalDateTwoDays(t *testing.T) {
	buckets := GroupByLocalDate(twoWinterDays(t))
	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-01-15", buckets[0].Date)
	assert.Equal(t, "2024-01-16", buckets[1].Date)
	assert.Len(t, buckets[0].Slots, 48)
	assert.Len(t, buckets[1].Slots, 48)
}

func TestGroupByLocalDateUsesUKDatesDuringBST(t *testing.T) {
	// In June the UK is UTC+1: the 23:00Z and 23:30Z slots fall on the next
	// local date.
	slots := makeSlots(utc("2024-06-15T22:00:00Z"), 10, 11, 12, 13)
	buckets := GroupByLocalDate(slots)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-06-15", buckets[0].Date)
	assert.Len(t, buckets[0].Slots, 2) // 22:00Z, 22:30Z are 23:00/23:30 local
	assert.Equal(t, "2024-06-16", buckets[1].Date)
	assert.Len(t, buckets[1].Slots, 2)
}

func TestDailyAverages(t *testing.T) {
	rows := DailyAverages(twoWinterDays(t))
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-15", rows[0].Date)
	assert.Equal(t, "15/01/24", rows[0].DateDisplay)
	assert.Equal(t, "16/01/24", rows[1].DateDisplay)
	assert.InDelta(t, 13.5, rows[0].Average, 1e-9)
	assert.InDelta(t, 15.5, rows[1].Average, 1e-9)
}

func TestCheapestPerDayWithoutNow(t *testing.T) {
	days := CheapestPerDay(twoWinterDays(t), 2.0, nil)
	require.Len(t, days, 2)
	d := days[0]
	require.NotNil(t, d.Lowest)
	assert.Equal(t, 10.0, d.Lowest.ValueIncVAT)
	assert.Equal(t, 10.0, d.MinPrice)
	assert.Equal(t, 17.0, d.MaxPrice)
	require.NotNil(t, d.CheapestBlock)
	require.NotNil(t, d.WorstBlock)
	assert.Nil(t, d.CheapestRemaining)
	assert.Greater(t, d.WorstBlock.AveragePrice, d.CheapestBlock.AveragePrice)
}

func TestCheapestPerDayRemainingExclusivity(t *testing.T) {
	slots := twoWinterDays(t)
	now := utc("2024-01-15T00:00:00Z")
	days := CheapestPerDay(slots, 2.0, &now)
	for _, d := range days {
		if d.CheapestBlock == nil || d.CheapestRemaining == nil {
			continue
		}
		assert.False(t, d.CheapestRemaining.Overlaps(d.CheapestBlock),
			"remaining block must not share slots with the cheapest block on %s", d.Date)
		assert.Len(t, d.CheapestRemaining.Slots, 4)
	}
}

func TestCheapestRemainingUpcomingBlockOnlyFutureSlots(t *testing.T) {
	// Cheapest 1h block is at 02:00 and still upcoming at now=01:00, so the
	// remaining search must skip the cheap 00:00-01:00 past slots.
	prices := []float64{5, 5, 30, 30, 1, 1, 15, 15, 15, 15}
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), prices...)
	now := utc("2024-01-15T01:00:00Z")
	days := CheapestPerDay(slots, 1.0, &now)
	require.Len(t, days, 1)
	d := days[0]
	require.NotNil(t, d.CheapestBlock)
	assert.Equal(t, utc("2024-01-15T02:00:00Z"), d.CheapestBlock.Start)
	require.NotNil(t, d.CheapestRemaining)
	assert.True(t, !d.CheapestRemaining.Start.Before(now),
		"remaining block for an upcoming cheapest block must be in the future")
	assert.Equal(t, utc("2024-01-15T03:00:00Z"), d.CheapestRemaining.Start)
	assert.Equal(t, 15.0, d.CheapestRemaining.AveragePrice)
}

func TestCheapestRemainingSurvivesBlockStart(t *testing.T) {
	// Once the cheapest block has started, earlier slots of the day stay
	// eligible, so the remaining block does not silently vanish.
	prices := []float64{5, 5, 30, 30, 1, 1, 30, 30}
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), prices...)
	// Cheapest 1h block is 02:00-03:00 (price 1); now is just after it
	// began.
	now := utc("2024-01-15T02:10:00Z")
	days := CheapestPerDay(slots, 1.0, &now)
	require.Len(t, days, 1)
	d := days[0]
	require.NotNil(t, d.CheapestBlock)
	assert.Equal(t, utc("2024-01-15T02:00:00Z"), d.CheapestBlock.Start)
	require.NotNil(t, d.CheapestRemaining)
	// The best non-excluded window is the 00:00-01:00 pair at price 5,
	// which is in the past but still reported.
	assert.Equal(t, utc("2024-01-15T00:00:00Z"), d.CheapestRemaining.Start)
	assert.Equal(t, 5.0, d.CheapestRemaining.AveragePrice)
}

func TestCheapestRemainingDiscardedWhenNoValidWindow(t *testing.T) {
	// Only the cheapest block's slots are contiguous; the leftovers cannot
	// form a 1h window.
	a := makeSlots(utc("2024-01-15T02:00:00Z"), 1, 1)
	b := makeSlots(utc("2024-01-15T05:00:00Z"), 9)
	c := makeSlots(utc("2024-01-15T08:00:00Z"), 9)
	slots := append(append(a, b...), c...)
	now := utc("2024-01-15T00:00:00Z")
	days := CheapestPerDay(slots, 1.0, &now)
	require.Len(t, days, 1)
	require.NotNil(t, days[0].CheapestBlock)
	assert.Nil(t, days[0].CheapestRemaining)
}

func TestFilterFromLocalDate(t *testing.T) {
	slots := twoWinterDays(t)
	kept := FilterFromLocalDate(slots, "2024-01-16")
	require.Len(t, kept, 48)
	for _, s := range kept {
		assert.False(t, s.ValidFrom.Before(utc("2024-01-16T00:00:00Z")))
	}
	assert.Len(t, FilterFromLocalDate(slots, "2024-01-17"), 0)
	assert.Len(t, FilterFromLocalDate(slots, "2024-01-01"), 96)
}

func TestFilterFromLocalDateBSTBoundary(t *testing.T) {
	// 23:30Z on June 15 is already June 16 in the UK, so it survives a
	// filter from the 16th.
	slots := makeSlots(utc("2024-06-15T22:30:00Z"), 10, 11)
	kept := FilterFromLocalDate(slots, "2024-06-16")
	require.Len(t, kept, 1)
	assert.Equal(t, 11.0, kept[0].ValueIncVAT)
}
