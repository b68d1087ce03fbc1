package model

import "time"

// YearStats is the persisted annual aggregate for one region, or the
// synthesized national record averaged across regions. Recalculation
// fully overwrites the stored record; there is no merge semantics.
type YearStats struct {
	Year              int       `json:"year"`
	RegionCode        string    `json:"region_code"`
	ProductCode       string    `json:"product_code"`
	CalculationDate   time.Time `json:"calculation_date"`
	DaysProcessed     int       `json:"days_processed"`
	DaysFailed        int       `json:"days_failed"`
	IsNationalAverage bool      `json:"is_national_average,omitempty"`
	SourceRegions     []string  `json:"source_regions,omitempty"`

	CheapestBlock         CheapestBlockStats   `json:"cheapest_block"`
	DailyAverage          DailyAverageStats    `json:"daily_average"`
	SavingsVsDailyAverage SavingsStats         `json:"savings_vs_daily_average"`
	PriceCapComparison    PriceCapStats        `json:"price_cap_comparison"`
	NegativePricing       NegativePricingStats `json:"negative_pricing"`
	Assumptions           Assumptions          `json:"assumptions"`
}

// CheapestBlockStats is the average price of the daily cheapest block.
type CheapestBlockStats struct {
	BlockHours      float64 `json:"block_hours"`
	AvgPricePPerKWh float64 `json:"avg_price_p_per_kwh"`
}

// DailyAverageStats is the mean daily unit price across the year.
type DailyAverageStats struct {
	AvgPricePPerKWh float64 `json:"avg_price_p_per_kwh"`
}

// SavingsStats compares the cheapest-block average to a reference price.
type SavingsStats struct {
	SavingsPPerKWh    float64 `json:"savings_p_per_kwh"`
	SavingsPercentage float64 `json:"savings_percentage"`
	AnnualSavingGBP   float64 `json:"annual_saving_gbp"`
}

// PriceCapStats compares the cheapest-block average to the Ofgem cap rate.
type PriceCapStats struct {
	CapPricePPerKWh float64 `json:"cap_price_p_per_kwh"`
	SavingsPPerKWh  float64 `json:"savings_p_per_kwh"`
	AnnualSavingGBP float64 `json:"annual_saving_gbp"`
}

// NegativePricingStats summarizes exposure to slots priced at or below zero.
type NegativePricingStats struct {
	TotalNegativeSlots      int     `json:"total_negative_slots"`
	TotalNegativeHours      float64 `json:"total_negative_hours"`
	AvgNegativePricePPerKWh float64 `json:"avg_negative_price_p_per_kwh"`
	TotalPaidGBP            float64 `json:"total_paid_gbp"`
	AvgPaymentPerDayGBP     float64 `json:"avg_payment_per_day_gbp"`
}

// Assumptions records the consumption model used for savings projections.
type Assumptions struct {
	DailyKWh                     float64 `json:"daily_kwh"`
	BatteryChargePowerKW         float64 `json:"battery_charge_power_kw"`
	CheapestBlockUsagePercent    float64 `json:"cheapest_block_usage_percent"`
	UsageShiftedToCheapestBlocks bool    `json:"usage_shifted_to_cheapest_blocks"`
}
