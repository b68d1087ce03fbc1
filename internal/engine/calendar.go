package engine

import (
	"math"
	"time"

	"agile-pricing/internal/model"
	"agile-pricing/internal/uktime"
)

// DayBucket holds one UK-local calendar date's slots, sorted ascending.
type DayBucket struct {
	Date  string // YYYY-MM-DD, UK local
	Slots []model.PriceSlot
}

// DayResult is the per-day aggregate served to the prices page. Any field
// may be absent when the day has too little data; absence is not an error.
type DayResult struct {
	Date              string           `json:"date"`
	DateDisplay       string           `json:"date_display"`
	Lowest            *model.PriceSlot `json:"lowest,omitempty"`
	MinPrice          float64          `json:"min_price"`
	MaxPrice          float64          `json:"max_price"`
	CheapestBlock     *model.Block     `json:"cheapest_block,omitempty"`
	WorstBlock        *model.Block     `json:"worst_block,omitempty"`
	CheapestRemaining *model.Block     `json:"cheapest_remaining,omitempty"`
}

// DailyAverageRow is one date's mean price with its display label.
type DailyAverageRow struct {
	Date        string  `json:"date"`
	DateDisplay string  `json:"date_display"`
	Average     float64 `json:"average"`
}

// GroupByLocalDate buckets slots by the UK-local date of ValidFrom and
// returns the buckets in ascending date order. Bucketing must be local, not
// UTC: during BST the 23:00Z slot belongs to the next local day.
func GroupByLocalDate(slots []model.PriceSlot) []DayBucket {
	sorted := model.SortSlots(slots)
	var out []DayBucket
	for _, s := range sorted {
		date := uktime.DateString(s.ValidFrom)
		if n := len(out); n > 0 && out[n-1].Date == date {
			out[n-1].Slots = append(out[n-1].Slots, s)
			continue
		}
		out = append(out, DayBucket{Date: date, Slots: []model.PriceSlot{s}})
	}
	return out
}

// DailyAverages computes one mean price per UK-local date.
func DailyAverages(slots []model.PriceSlot) []DailyAverageRow {
	buckets := GroupByLocalDate(slots)
	out := make([]DailyAverageRow, 0, len(buckets))
	for _, b := range buckets {
		avg := DailyAverage(b.Slots)
		if avg == nil {
			continue
		}
		out = append(out, DailyAverageRow{
			Date:        b.Date,
			DateDisplay: uktime.FormatDateDisplay(b.Slots[0].ValidFrom),
			Average:     model.Round2(*avg),
		})
	}
	return out
}

// remainingTolerance bounds how far a remaining block's span may drift from
// the requested duration before the result is discarded.
const remainingTolerance = 15 * time.Minute

// CheapestPerDay computes the full DayResult for each UK-local date in the
// input. When nowUTC is non-nil it additionally computes the cheapest
// remaining block: the best window among the day's slots not claimed by the
// cheapest block. While the cheapest block is still upcoming only future
// slots are considered; once it has started the whole day's unclaimed slots
// stay eligible, so a remaining block shown earlier does not vanish the
// moment the main block begins.
func CheapestPerDay(slots []model.PriceSlot, durationHours float64, nowUTC *time.Time) []DayResult {
	buckets := GroupByLocalDate(slots)
	out := make([]DayResult, 0, len(buckets))
	for _, b := range buckets {
		r := DayResult{
			Date:        b.Date,
			DateDisplay: uktime.FormatDateDisplay(b.Slots[0].ValidFrom),
			Lowest:      FindLowest(b.Slots),
		}
		r.MinPrice, r.MaxPrice = priceRange(b.Slots)
		r.CheapestBlock = FindCheapestBlock(b.Slots, durationHours)
		r.WorstBlock = FindWorstBlock(b.Slots, durationHours)
		if nowUTC != nil && r.CheapestBlock != nil {
			r.CheapestRemaining = cheapestRemaining(b.Slots, r.CheapestBlock, durationHours, *nowUTC)
		}
		out = append(out, r)
	}
	return out
}

func cheapestRemaining(daySlots []model.PriceSlot, cheapest *model.Block, durationHours float64, nowUTC time.Time) *model.Block {
	candidates := make([]model.PriceSlot, 0, len(daySlots))
	upcoming := cheapest.Start.After(nowUTC)
	for _, s := range daySlots {
		if cheapest.Contains(s.ValidFrom) {
			continue
		}
		if upcoming && s.ValidFrom.Before(nowUTC) {
			continue
		}
		candidates = append(candidates, s)
	}
	block := FindCheapestBlock(candidates, durationHours)
	if block == nil {
		return nil
	}
	if !validRemaining(block, candidates, cheapest, durationHours) {
		// Better to show nothing than a structurally inconsistent window.
		return nil
	}
	return block
}

// validRemaining re-checks the remaining block against its inputs: every
// slot must come from the candidate set, none may overlap the day's
// cheapest block, the slot count must match the requested duration, and
// the spanned time must be within tolerance of that duration.
func validRemaining(block *model.Block, candidates []model.PriceSlot, cheapest *model.Block, durationHours float64) bool {
	allowed := make(map[time.Time]struct{}, len(candidates))
	for _, s := range candidates {
		allowed[s.ValidFrom] = struct{}{}
	}
	for _, s := range block.Slots {
		if _, ok := allowed[s.ValidFrom]; !ok {
			return false
		}
	}
	if block.Overlaps(cheapest) {
		return false
	}
	k := int(math.Round(durationHours * 2))
	if len(block.Slots) != k {
		return false
	}
	want := time.Duration(durationHours * float64(time.Hour))
	diff := block.End.Sub(block.Start) - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= remainingTolerance
}

// FilterFromLocalDate drops slots whose UK-local date is strictly before
// startDate (YYYY-MM-DD). A cache spanning yesterday and today must not
// show yesterday once local midnight has passed.
func FilterFromLocalDate(slots []model.PriceSlot, startDate string) []model.PriceSlot {
	out := make([]model.PriceSlot, 0, len(slots))
	for _, s := range slots {
		if uktime.DateString(s.ValidFrom) >= startDate {
			out = append(out, s)
		}
	}
	return out
}

func priceRange(slots []model.PriceSlot) (min, max float64) {
	if len(slots) == 0 {
		return 0, 0
	}
	min, max = slots[0].ValueIncVAT, slots[0].ValueIncVAT
	for _, s := range slots[1:] {
		if s.ValueIncVAT < min {
			min = s.ValueIncVAT
		}
		if s.ValueIncVAT > max {
			max = s.ValueIncVAT
		}
	}
	return min, max
}
