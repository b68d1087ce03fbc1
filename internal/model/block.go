package model

import (
	"fmt"
	"math"
	"time"
)

// Block is a contiguous run of half-hour slots representing a candidate
// charging window. It is a derived view over its source sequence and is
// never persisted on its own; only the numeric summary ends up in a
// statistics record.
type Block struct {
	Start        time.Time   `json:"start_time"`
	End          time.Time   `json:"end_time"`
	AveragePrice float64     `json:"average_price"`
	TotalPrice   float64     `json:"total_cost"`
	Slots        []PriceSlot `json:"-"`
}

// durationTolerance absorbs rounding from zone conversion.
const durationTolerance = time.Minute

// NewBlock builds a Block over slots, validating contiguity and that the
// spanned duration matches the requested hours.
func NewBlock(slots []PriceSlot, durationHours float64) (*Block, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("block requires at least one slot")
	}
	total := 0.0
	for i, s := range slots {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && !Contiguous(slots[i-1], s) {
			return nil, fmt.Errorf("block not contiguous at %s",
				s.ValidFrom.Format(time.RFC3339))
		}
		total += s.ValueIncVAT
	}
	b := &Block{
		Start:        slots[0].ValidFrom,
		End:          slots[len(slots)-1].ValidTo,
		AveragePrice: Round2(total / float64(len(slots))),
		TotalPrice:   Round2(total),
		Slots:        slots,
	}
	want := time.Duration(durationHours * float64(time.Hour))
	got := b.End.Sub(b.Start)
	if diff := got - want; diff < -durationTolerance || diff > durationTolerance {
		return nil, fmt.Errorf("block spans %s, want %s", got, want)
	}
	return b, nil
}

// Contains reports whether the block includes a slot starting at t.
func (b *Block) Contains(t time.Time) bool {
	for _, s := range b.Slots {
		if s.ValidFrom.Equal(t) {
			return true
		}
	}
	return false
}

// Overlaps reports whether any slot is shared with another block.
func (b *Block) Overlaps(other *Block) bool {
	if other == nil {
		return false
	}
	for _, s := range b.Slots {
		if other.Contains(s.ValidFrom) {
			return true
		}
	}
	return false
}

// Round2 rounds to two decimal places, the precision used for all
// displayed and persisted prices.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
