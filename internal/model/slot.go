package model

import (
	"fmt"
	"sort"
	"time"
)

// SlotDuration is the fixed length of one priced interval.
const SlotDuration = 30 * time.Minute

// PriceSlot is one half-hourly priced interval from the Agile tariff.
// Prices are pence per kWh including VAT and may be zero or negative.
// ValidFrom is inclusive, ValidTo exclusive; both are UTC instants.
//
// A correct series contains unique ValidFrom values and, once sorted
// ascending, each slot's ValidTo equals the next slot's ValidFrom.
type PriceSlot struct {
	ValueIncVAT float64   `json:"value_inc_vat"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidTo     time.Time `json:"valid_to"`
}

// Duration returns the interval length.
func (s PriceSlot) Duration() time.Duration {
	return s.ValidTo.Sub(s.ValidFrom)
}

// Validate checks the single-slot invariants: a non-zero start and an
// exactly 30-minute interval.
func (s PriceSlot) Validate() error {
	if s.ValidFrom.IsZero() || s.ValidTo.IsZero() {
		return fmt.Errorf("slot missing valid_from/valid_to")
	}
	if s.Duration() != SlotDuration {
		return fmt.Errorf("slot %s has duration %s, want 30m",
			s.ValidFrom.Format(time.RFC3339), s.Duration())
	}
	return nil
}

// SortSlots returns a copy of slots sorted ascending by ValidFrom.
// The input is never mutated; slot sequences are immutable once obtained.
func SortSlots(slots []PriceSlot) []PriceSlot {
	out := make([]PriceSlot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ValidFrom.Before(out[j].ValidFrom)
	})
	return out
}

// Contiguous reports whether b starts exactly where a ends.
func Contiguous(a, b PriceSlot) bool {
	return a.ValidTo.Equal(b.ValidFrom)
}
