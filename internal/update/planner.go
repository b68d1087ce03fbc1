// Package update grows the historical raw-price archive incrementally.
// The planner half is pure decision logic; the job half wires it to the
// tariff API, the archive and the statistics rebuild.
package update

import (
	"fmt"
	"time"

	"agile-pricing/internal/model"
	"agile-pricing/internal/uktime"
)

// FetchPlan is the planner's decision for one region: the UTC window to
// request and a reason code for the run log. Produced per run and consumed
// immediately; never persisted.
type FetchPlan struct {
	Region     string
	PeriodFrom time.Time
	PeriodTo   time.Time
	Reason     string
}

// Reason codes attached to fetch plans.
const (
	ReasonNoExistingData = "no_existing_data_fetch_today_and_tomorrow"
	ReasonGap            = "gap_fetch_from_last_to_through_tomorrow"
	ReasonCoversToday    = "covers_today_fetch_today_and_tomorrow"
)

// DetermineFetchPlan decides what, if anything, must be fetched to keep a
// region's series current. Nil means the data already includes tomorrow's
// prices (UK local date) and no fetch is needed.
func DetermineFetchPlan(region string, existing []model.PriceSlot, nowUK time.Time) *FetchPlan {
	nowUK = nowUK.In(uktime.UK)
	tomorrow := nowUK.AddDate(0, 0, 1)

	if includesTomorrow(existing, nowUK) {
		return nil
	}

	periodTo := uktime.EndOfDayExclusive(tomorrow)

	lastTo := latestValidTo(existing)
	if lastTo == nil {
		return &FetchPlan{
			Region:     region,
			PeriodFrom: uktime.StartOfDay(nowUK),
			PeriodTo:   periodTo,
			Reason:     ReasonNoExistingData,
		}
	}

	lastToDate := uktime.DateString(*lastTo)
	gapBoundary := uktime.DateString(nowUK.AddDate(0, 0, -2))
	if lastToDate <= gapBoundary {
		return &FetchPlan{
			Region:     region,
			PeriodFrom: *lastTo,
			PeriodTo:   periodTo,
			Reason:     ReasonGap,
		}
	}

	return &FetchPlan{
		Region:     region,
		PeriodFrom: *lastTo,
		PeriodTo:   periodTo,
		Reason:     ReasonCoversToday,
	}
}

// includesTomorrow checks only the edge entries of a sorted series: if the
// first or last slot's ValidFrom falls on a UK date after today, tomorrow's
// prices have been published and are present.
func includesTomorrow(slots []model.PriceSlot, nowUK time.Time) bool {
	if len(slots) == 0 {
		return false
	}
	sorted := model.SortSlots(slots)
	today := uktime.DateString(nowUK)
	first := uktime.DateString(sorted[0].ValidFrom)
	last := uktime.DateString(sorted[len(sorted)-1].ValidFrom)
	return first > today || last > today
}

func latestValidTo(slots []model.PriceSlot) *time.Time {
	if len(slots) == 0 {
		return nil
	}
	latest := slots[0].ValidTo
	for _, s := range slots[1:] {
		if s.ValidTo.After(latest) {
			latest = s.ValidTo
		}
	}
	return &latest
}

// DedupeAndSort merges a batch with existing data, keyed by ValidFrom with
// the first occurrence winning, and returns the result sorted ascending.
// Idempotent: applying it twice equals applying it once.
func DedupeAndSort(slots []model.PriceSlot) []model.PriceSlot {
	seen := make(map[time.Time]struct{}, len(slots))
	out := make([]model.PriceSlot, 0, len(slots))
	for _, s := range slots {
		if s.ValidFrom.IsZero() {
			continue
		}
		if _, dup := seen[s.ValidFrom]; dup {
			continue
		}
		seen[s.ValidFrom] = struct{}{}
		out = append(out, s)
	}
	return model.SortSlots(out)
}

// ValidateSeries checks a whole series for duplicates, ordering, 30-minute
// slot durations and full contiguity, returning one human-readable defect
// per violation. A non-empty result must block any write of the series:
// this is the correctness gate before the archive is persisted.
func ValidateSeries(slots []model.PriceSlot) []string {
	var defects []string
	if len(slots) == 0 {
		return defects
	}
	sorted := model.SortSlots(slots)

	seen := make(map[time.Time]struct{}, len(sorted))
	for i, s := range sorted {
		from := uktime.FormatUTC(s.ValidFrom)
		if s.ValidFrom.IsZero() || s.ValidTo.IsZero() {
			defects = append(defects, fmt.Sprintf("missing valid_from/valid_to at index=%d", i))
			continue
		}
		if _, dup := seen[s.ValidFrom]; dup {
			defects = append(defects, fmt.Sprintf("duplicate valid_from %s", from))
		}
		seen[s.ValidFrom] = struct{}{}

		if !s.ValidTo.After(s.ValidFrom) {
			defects = append(defects, fmt.Sprintf("invalid_interval %s -> %s", from, uktime.FormatUTC(s.ValidTo)))
		}
		if dur := s.Duration(); dur != model.SlotDuration {
			defects = append(defects, fmt.Sprintf("unexpected_slot_duration %s (%s)", from, dur))
		}

		if i > 0 {
			prev := sorted[i-1]
			if !s.ValidFrom.After(prev.ValidFrom) {
				defects = append(defects, fmt.Sprintf("backwards_or_equal_time at %s", from))
			}
			if !model.Contiguous(prev, s) {
				delta := s.ValidFrom.Sub(prev.ValidTo).Minutes()
				defects = append(defects, fmt.Sprintf("gap_or_overlap between %s and %s (delta_minutes=%.1f)",
					uktime.FormatUTC(prev.ValidTo), from, delta))
			}
		}
	}
	return defects
}

// ExpectedSlotCount is the number of 30-minute slots a perfectly aligned
// fetch of [from, to) should return. Callers should tolerate a small slack
// (the API may exclude an edge slot) and rely on ValidateSeries for gaps.
func ExpectedSlotCount(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Minutes() / 30)
}
