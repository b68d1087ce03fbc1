package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agile-pricing/internal/model"
)

// makeSlots builds a contiguous half-hour series starting at start, one
// slot per price.
func makeSlots(start time.Time, prices ...float64) []model.PriceSlot {
	slots := make([]model.PriceSlot, len(prices))
	for i, p := range prices {
		from := start.Add(time.Duration(i) * 30 * time.Minute)
		slots[i] = model.PriceSlot{
			ValueIncVAT: p,
			ValidFrom:   from,
			ValidTo:     from.Add(30 * time.Minute),
		}
	}
	return slots
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFindLowest(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 16, 18)
	lowest := FindLowest(slots)
	require.NotNil(t, lowest)
	assert.Equal(t, 16.0, lowest.ValueIncVAT)
	assert.Equal(t, utc("2024-01-15T00:00:00Z"), lowest.ValidFrom)
}

func TestFindLowestEmpty(t *testing.T) {
	assert.Nil(t, FindLowest(nil))
}

func TestFindLowestTieBreaksEarliest(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 10, 12, 10)
	lowest := FindLowest(slots)
	require.NotNil(t, lowest)
	assert.Equal(t, utc("2024-01-15T00:00:00Z"), lowest.ValidFrom)
}

func TestFindCheapestBlockOneHour(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 20, 15, 18, 22)
	block := FindCheapestBlock(slots, 1.0)
	require.NotNil(t, block)
	assert.Equal(t, 16.5, block.AveragePrice)
	assert.Equal(t, utc("2024-01-15T00:30:00Z"), block.Start)
	assert.Equal(t, utc("2024-01-15T01:30:00Z"), block.End)
	assert.Len(t, block.Slots, 2)
}

func TestFindCheapestBlockSortsUnsortedInput(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 20, 15, 18, 22)
	reversed := []model.PriceSlot{slots[3], slots[2], slots[1], slots[0]}
	block := FindCheapestBlock(reversed, 1.0)
	require.NotNil(t, block)
	assert.Equal(t, 16.5, block.AveragePrice)
	assert.Equal(t, utc("2024-01-15T00:30:00Z"), block.Start)
}

func TestFindCheapestBlockInsufficientSlots(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 20, 15)
	assert.Nil(t, FindCheapestBlock(slots, 2.0))
	assert.Nil(t, FindCheapestBlock(nil, 1.0))
	assert.Nil(t, FindCheapestBlock(slots, 0.25))
}

func TestFindCheapestBlockFractionalDuration(t *testing.T) {
	// 3.5 hours needs 7 slots.
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 10, 11, 12, 13, 14, 15, 16, 17)
	block := FindCheapestBlock(slots, 3.5)
	require.NotNil(t, block)
	assert.Len(t, block.Slots, 7)
	assert.Equal(t, 13.0, block.AveragePrice)
	assert.Equal(t, utc("2024-01-15T00:00:00Z"), block.Start)
}

func TestFindCheapestBlockRejectsGapWindows(t *testing.T) {
	// Contiguous 00:00-02:00, missing 02:00-02:30, contiguous 02:30-05:00.
	// The missing slot sits among cheap prices so a naive window would span
	// the gap.
	before := makeSlots(utc("2024-01-15T00:00:00Z"), 5, 5, 5, 30)
	after := makeSlots(utc("2024-01-15T02:30:00Z"), 5, 10, 10, 10, 10)
	slots := append(append([]model.PriceSlot{}, before...), after...)

	block := FindCheapestBlock(slots, 2.0)
	require.NotNil(t, block)
	for i := 1; i < len(block.Slots); i++ {
		assert.True(t, block.Slots[i-1].ValidTo.Equal(block.Slots[i].ValidFrom),
			"block must not cross the gap")
	}
	// Best valid window is entirely after the gap.
	assert.Equal(t, utc("2024-01-15T02:30:00Z"), block.Start)
}

func TestFindCheapestBlockNoValidWindow(t *testing.T) {
	// Two islands of 2 slots each; no contiguous 4-slot window exists.
	a := makeSlots(utc("2024-01-15T00:00:00Z"), 5, 5)
	b := makeSlots(utc("2024-01-15T03:00:00Z"), 5, 5)
	assert.Nil(t, FindCheapestBlock(append(a, b...), 2.0))
}

func TestFindCheapestBlockDurationInvariant(t *testing.T) {
	slots := makeSlots(utc("2024-06-15T20:00:00Z"), 9, 8, 7, 6, 5, 4, 3, 2)
	for _, d := range []float64{0.5, 1.0, 1.5, 2.0, 3.5} {
		block := FindCheapestBlock(slots, d)
		require.NotNil(t, block, "duration %v", d)
		want := time.Duration(d * float64(time.Hour))
		diff := block.End.Sub(block.Start) - want
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, time.Minute, "duration %v", d)
	}
}

func TestFindWorstBlock(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 20, 15, 18, 22)
	block := FindWorstBlock(slots, 1.0)
	require.NotNil(t, block)
	assert.Equal(t, 20.0, block.AveragePrice)
	assert.Equal(t, utc("2024-01-15T01:00:00Z"), block.Start)
}

func TestMonotonicityOfAverages(t *testing.T) {
	start := utc("2024-01-15T00:00:00Z")
	a := makeSlots(start, 10, 12, 14, 16, 18, 20)
	b := makeSlots(start, 11, 13, 15, 17, 19, 21)
	for _, d := range []float64{0.5, 1.0, 2.0} {
		blockA := FindCheapestBlock(a, d)
		blockB := FindCheapestBlock(b, d)
		require.NotNil(t, blockA)
		require.NotNil(t, blockB)
		assert.LessOrEqual(t, blockA.AveragePrice, blockB.AveragePrice)
	}
}

func TestFindFutureCheapestBlock(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 1, 2, 30, 31, 10, 11)
	now := utc("2024-01-15T01:00:00Z")
	block := FindFutureCheapestBlock(slots, 1.0, now)
	require.NotNil(t, block)
	// The cheapest slots of the day are in the past; the future best is the
	// 10/11 pair.
	assert.Equal(t, utc("2024-01-15T02:00:00Z"), block.Start)
	assert.Equal(t, 10.5, block.AveragePrice)
}

func TestFindFutureCheapestBlockNoFutureSlots(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 1, 2)
	assert.Nil(t, FindFutureCheapestBlock(slots, 1.0, utc("2024-01-16T00:00:00Z")))
}

func TestDailyAverage(t *testing.T) {
	slots := makeSlots(utc("2024-01-15T00:00:00Z"), 10, 20, 30)
	avg := DailyAverage(slots)
	require.NotNil(t, avg)
	assert.InDelta(t, 20.0, *avg, 1e-9)
	assert.Nil(t, DailyAverage(nil))
}

func TestChargingCost(t *testing.T) {
	cost := ChargingCost(16.5, 10.0)
	require.NotNil(t, cost)
	assert.Equal(t, 1.65, *cost)

	assert.Nil(t, ChargingCost(0, 10))
	assert.Nil(t, ChargingCost(-5, 10))
	assert.Nil(t, ChargingCost(16.5, 0))
}
