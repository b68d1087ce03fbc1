// Package engine finds optimal charging windows in half-hourly price series.
// All functions are pure over their inputs: no I/O, no hidden state, and
// inputs are defensively re-sorted so callers may pass API responses as-is.
package engine

import (
	"math"
	"time"

	"agile-pricing/internal/model"
)

// FindLowest returns the slot with the minimum unit price, or nil for an
// empty input. Ties resolve to the earliest occurrence.
func FindLowest(slots []model.PriceSlot) *model.PriceSlot {
	if len(slots) == 0 {
		return nil
	}
	sorted := model.SortSlots(slots)
	best := sorted[0]
	for _, s := range sorted[1:] {
		if s.ValueIncVAT < best.ValueIncVAT {
			best = s
		}
	}
	return &best
}

// FindCheapestBlock finds the contiguous run of round(durationHours*2)
// half-hour slots with the lowest average price. Windows spanning a gap in
// the series are rejected outright rather than averaged across the gap.
// Returns nil if durationHours < 0.5, there are too few slots, or no
// contiguous window exists. Ties resolve to the earliest start.
func FindCheapestBlock(slots []model.PriceSlot, durationHours float64) *model.Block {
	return searchBlock(slots, durationHours, func(candidate, best float64) bool {
		return candidate < best
	})
}

// FindWorstBlock is the symmetric maximum-average search, used to show the
// window to avoid. Contiguity rules are identical to FindCheapestBlock.
func FindWorstBlock(slots []model.PriceSlot, durationHours float64) *model.Block {
	return searchBlock(slots, durationHours, func(candidate, best float64) bool {
		return candidate > best
	})
}

// FindFutureCheapestBlock restricts the search to slots starting at or after
// nowUTC. Returns nil when no future window of the requested size exists.
func FindFutureCheapestBlock(slots []model.PriceSlot, durationHours float64, nowUTC time.Time) *model.Block {
	future := make([]model.PriceSlot, 0, len(slots))
	for _, s := range slots {
		if !s.ValidFrom.Before(nowUTC) {
			future = append(future, s)
		}
	}
	return FindCheapestBlock(future, durationHours)
}

// DailyAverage returns the arithmetic mean unit price over the input, with
// no date grouping (that is the calendar aggregator's job). Nil on empty
// input.
func DailyAverage(slots []model.PriceSlot) *float64 {
	if len(slots) == 0 {
		return nil
	}
	sum := 0.0
	for _, s := range slots {
		sum += s.ValueIncVAT
	}
	avg := sum / float64(len(slots))
	return &avg
}

// ChargingCost estimates the cost in pounds of charging a battery of the
// given capacity at the given average pence-per-kWh price. Nil for missing
// or negative inputs.
func ChargingCost(avgPrice, capacityKWh float64) *float64 {
	if avgPrice <= 0 || capacityKWh <= 0 {
		return nil
	}
	cost := model.Round2(avgPrice * capacityKWh / 100)
	return &cost
}

// searchBlock slides a window of K slots over the sorted sequence, skipping
// any window whose slots are not strictly 30-minute contiguous, and keeps
// the window whose average the comparator prefers. Strict comparison means
// the earliest qualifying window wins ties.
func searchBlock(slots []model.PriceSlot, durationHours float64, better func(candidate, best float64) bool) *model.Block {
	if durationHours < 0.5 {
		return nil
	}
	k := int(math.Round(durationHours * 2))
	if k < 1 || len(slots) < k {
		return nil
	}
	sorted := model.SortSlots(slots)

	var bestSlots []model.PriceSlot
	bestAvg := 0.0
	for i := 0; i+k <= len(sorted); i++ {
		window := sorted[i : i+k]
		if !contiguousRun(window) {
			continue
		}
		sum := 0.0
		for _, s := range window {
			sum += s.ValueIncVAT
		}
		avg := sum / float64(k)
		if bestSlots == nil || better(avg, bestAvg) {
			bestSlots = window
			bestAvg = avg
		}
	}
	if bestSlots == nil {
		return nil
	}
	block, err := model.NewBlock(bestSlots, durationHours)
	if err != nil {
		// A window that passed the contiguity check cannot fail block
		// construction unless a slot itself is malformed.
		return nil
	}
	return block
}

func contiguousRun(slots []model.PriceSlot) bool {
	for i := 1; i < len(slots); i++ {
		if slots[i].Duration() != model.SlotDuration {
			return false
		}
		if !model.Contiguous(slots[i-1], slots[i]) {
			return false
		}
	}
	return len(slots) == 0 || slots[0].Duration() == model.SlotDuration
}
