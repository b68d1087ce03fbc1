package stats

import (
	"fmt"
	"math"

	"agile-pricing/internal/model"
)

// NationalRegion is the distinguished region code for the cross-region
// average record.
const NationalRegion = "national"

// CalculateNationalAverages synthesizes the national record from every
// regional YearStats already in the store for the given product and year.
//
// Every numeric field is the arithmetic mean across regions, never a sum:
// the regional figures (including negative-pricing slot, hour and payment
// counts) describe the same calendar period observed independently per
// region, so summing would overstate exposure fourteen-fold.
func (c *Calculator) CalculateNationalAverages(store Store, productCode string, year int, regions []string) (*model.YearStats, error) {
	var (
		loaded  []model.YearStats
		sources []string
	)
	for _, region := range regions {
		s, err := store.Load(region, year)
		if err != nil {
			return nil, fmt.Errorf("load stats for region %s: %w", region, err)
		}
		if s == nil || s.ProductCode != productCode {
			continue
		}
		loaded = append(loaded, *s)
		sources = append(sources, region)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no regional statistics available for %s %d", productCode, year)
	}

	c.log.Info().
		Int("regions", len(loaded)).
		Int("year", year).
		Msg("calculating national averages")

	n := float64(len(loaded))
	avgCheapest := 0.0
	avgDaily := 0.0
	negSlots := 0.0
	negHours := 0.0
	totalPaid := 0.0
	daysProcessed := 0
	for _, s := range loaded {
		avgCheapest += s.CheapestBlock.AvgPricePPerKWh
		avgDaily += s.DailyAverage.AvgPricePPerKWh
		negSlots += float64(s.NegativePricing.TotalNegativeSlots)
		negHours += s.NegativePricing.TotalNegativeHours
		totalPaid += s.NegativePricing.TotalPaidGBP
		daysProcessed += s.DaysProcessed
	}
	avgCheapest /= n
	avgDaily /= n
	negSlots /= n
	negHours /= n
	totalPaid /= n

	// The average negative-price magnitude only means something for
	// regions that actually saw negative slots.
	negMagnitude := 0.0
	negRegions := 0
	for _, s := range loaded {
		if s.NegativePricing.AvgNegativePricePPerKWh > 0 {
			negMagnitude += s.NegativePricing.AvgNegativePricePPerKWh
			negRegions++
		}
	}
	if negRegions > 0 {
		negMagnitude /= float64(negRegions)
	}

	avgPaymentPerDay := 0.0
	if totalPaid > 0 {
		avgPaymentPerDay = totalPaid / 365
	}

	// Assumptions and cap rate are shared across regions; take them from
	// the first record.
	first := loaded[0]

	national := model.YearStats{
		Year:              year,
		RegionCode:        NationalRegion,
		ProductCode:       productCode,
		CalculationDate:   c.now(),
		DaysProcessed:     int(float64(daysProcessed) / n),
		DaysFailed:        0,
		IsNationalAverage: true,
		SourceRegions:     sources,
		CheapestBlock: model.CheapestBlockStats{
			BlockHours:      c.cfg.BlockDurationHours,
			AvgPricePPerKWh: model.Round2(avgCheapest),
		},
		DailyAverage: model.DailyAverageStats{
			AvgPricePPerKWh: model.Round2(avgDaily),
		},
		SavingsVsDailyAverage: c.savingsVs(avgDaily, avgCheapest),
		PriceCapComparison: model.PriceCapStats{
			CapPricePPerKWh: first.PriceCapComparison.CapPricePPerKWh,
			SavingsPPerKWh:  model.Round2(first.PriceCapComparison.CapPricePPerKWh - avgCheapest),
			AnnualSavingGBP: model.Round2(c.annualSavingGBP(first.PriceCapComparison.CapPricePPerKWh - avgCheapest)),
		},
		NegativePricing: model.NegativePricingStats{
			TotalNegativeSlots:      int(math.Round(negSlots)),
			TotalNegativeHours:      round1(negHours),
			AvgNegativePricePPerKWh: model.Round2(negMagnitude),
			TotalPaidGBP:            model.Round2(totalPaid),
			AvgPaymentPerDayGBP:     round3(avgPaymentPerDay),
		},
		Assumptions: first.Assumptions,
	}
	return &national, nil
}
