// Package stats reduces a year of half-hourly prices to the aggregate
// figures shown alongside live prices: average cheapest-block price, daily
// average, savings projections and negative-pricing exposure.
package stats

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"agile-pricing/internal/config"
	"agile-pricing/internal/engine"
	"agile-pricing/internal/model"
	"agile-pricing/internal/uktime"
)

// DaySource supplies the slot sequence for one UK-local calendar date.
// A nil or empty result marks the day as missing; missing days are counted
// as failures and skipped, never fatal.
type DaySource interface {
	SlotsForDay(date string) []model.PriceSlot
}

// SlotsByDay is a DaySource over an in-memory year of slots, bucketed by
// UK-local date.
type SlotsByDay map[string][]model.PriceSlot

func (m SlotsByDay) SlotsForDay(date string) []model.PriceSlot { return m[date] }

// NewSlotsByDay buckets a full year's slots by UK-local date.
func NewSlotsByDay(slots []model.PriceSlot) SlotsByDay {
	out := SlotsByDay{}
	for _, b := range engine.GroupByLocalDate(slots) {
		out[b.Date] = b.Slots
	}
	return out
}

// Calculator computes YearStats records. All assumptions come from the
// config value passed at construction.
type Calculator struct {
	cfg config.StatsConfig
	as  model.Assumptions
	log zerolog.Logger
	now func() time.Time
}

// NewCalculator builds a Calculator. The clock is taken from uktime so
// year-to-date runs stop at today's UK date.
func NewCalculator(cfg *config.Config, log zerolog.Logger) *Calculator {
	return &Calculator{
		cfg: cfg.Stats,
		as:  cfg.Assumptions(),
		log: log,
		now: uktime.Now,
	}
}

// CalculateYearStats walks every calendar date of the year (or up to today
// when the year is still in progress), accumulating the daily cheapest-block
// average and daily mean, and scanning every slot for prices at or below
// zero. Recomputation over the same inputs is numerically idempotent apart
// from the calculation timestamp.
func (c *Calculator) CalculateYearStats(productCode, region string, year int, source DaySource) model.YearStats {
	c.log.Info().
		Str("region", region).
		Int("year", year).
		Float64("daily_kwh", c.cfg.DailyKWh).
		Float64("charge_power_kw", c.cfg.BatteryChargePowerKW).
		Float64("price_cap_p_per_kwh", c.cfg.PriceCapPPerKWh).
		Msg("calculating year statistics")

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, uktime.UK)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, uktime.UK)
	if now := c.now(); year == now.Year() {
		end = time.Date(year, now.Month(), now.Day(), 0, 0, 0, 0, uktime.UK)
	}

	var (
		cheapestBlockPrices []float64
		dailyAverages       []float64
		negativePrices      []float64
		daysProcessed       int
		daysFailed          int
	)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		slots := source.SlotsForDay(date)
		if len(slots) == 0 {
			daysFailed++
			continue
		}
		sorted := model.SortSlots(slots)

		if block := engine.FindCheapestBlock(sorted, c.cfg.BlockDurationHours); block != nil {
			cheapestBlockPrices = append(cheapestBlockPrices, block.AveragePrice)
		}
		if avg := engine.DailyAverage(sorted); avg != nil {
			dailyAverages = append(dailyAverages, *avg)
		}
		for _, s := range sorted {
			if s.ValueIncVAT <= 0 {
				negativePrices = append(negativePrices, s.ValueIncVAT)
			}
		}
		daysProcessed++
	}

	c.log.Info().
		Str("region", region).
		Int("days_processed", daysProcessed).
		Int("days_failed", daysFailed).
		Int("negative_slots", len(negativePrices)).
		Msg("year statistics computed")

	avgCheapest := mean(cheapestBlockPrices)
	avgDaily := mean(dailyAverages)

	stats := model.YearStats{
		Year:            year,
		RegionCode:      region,
		ProductCode:     productCode,
		CalculationDate: c.now(),
		DaysProcessed:   daysProcessed,
		DaysFailed:      daysFailed,
		CheapestBlock: model.CheapestBlockStats{
			BlockHours:      c.cfg.BlockDurationHours,
			AvgPricePPerKWh: model.Round2(avgCheapest),
		},
		DailyAverage: model.DailyAverageStats{
			AvgPricePPerKWh: model.Round2(avgDaily),
		},
		SavingsVsDailyAverage: c.savingsVs(avgDaily, avgCheapest),
		PriceCapComparison:    c.capComparison(avgCheapest),
		NegativePricing:       c.negativePricing(negativePrices),
		Assumptions:           c.as,
	}
	return stats
}

// savingsVs compares the cheapest-block average against a reference daily
// price. The annual projection applies savings only to the configured
// fraction of daily consumption assumed shiftable into the cheapest block.
func (c *Calculator) savingsVs(reference, cheapest float64) model.SavingsStats {
	savings := reference - cheapest
	pct := 0.0
	if reference > 0 {
		pct = savings / reference * 100
	}
	return model.SavingsStats{
		SavingsPPerKWh:    model.Round2(savings),
		SavingsPercentage: model.Round2(pct),
		AnnualSavingGBP:   model.Round2(c.annualSavingGBP(savings)),
	}
}

func (c *Calculator) capComparison(cheapest float64) model.PriceCapStats {
	savings := c.cfg.PriceCapPPerKWh - cheapest
	return model.PriceCapStats{
		CapPricePPerKWh: c.cfg.PriceCapPPerKWh,
		SavingsPPerKWh:  model.Round2(savings),
		AnnualSavingGBP: model.Round2(c.annualSavingGBP(savings)),
	}
}

// annualSavingGBP converts a pence-per-kWh saving into pounds per year over
// the shiftable share of daily usage.
func (c *Calculator) annualSavingGBP(savingsPPerKWh float64) float64 {
	shiftedKWh := c.cfg.DailyKWh * c.cfg.CheapestBlockUsagePercent / 100
	return savingsPPerKWh * shiftedKWh * 365 / 100
}

// negativePricing treats each at-or-below-zero slot as a half-hour payment
// to the consumer for a notional fixed-power load at the assumed charge
// rate.
func (c *Calculator) negativePricing(prices []float64) model.NegativePricingStats {
	count := len(prices)
	stats := model.NegativePricingStats{
		TotalNegativeSlots: count,
		TotalNegativeHours: round1(float64(count) * 0.5),
	}
	if count == 0 {
		return stats
	}
	totalMagnitude := 0.0
	totalPaidPence := 0.0
	for _, p := range prices {
		mag := -p
		if mag < 0 {
			mag = -mag
		}
		totalMagnitude += mag
		totalPaidPence += mag * c.cfg.BatteryChargePowerKW * 0.5
	}
	stats.AvgNegativePricePPerKWh = model.Round2(totalMagnitude / float64(count))
	totalPaidGBP := totalPaidPence / 100
	stats.TotalPaidGBP = model.Round2(totalPaidGBP)
	stats.AvgPaymentPerDayGBP = round3(totalPaidGBP / 365)
	return stats
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
