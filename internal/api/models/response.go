package models

import (
	"time"

	"agile-pricing/internal/engine"
	"agile-pricing/internal/model"
)

// PricesResponse is the full payload behind the prices page: today's (and,
// once published, tomorrow's) slots with local display times, the derived
// windows, and the chart series.
type PricesResponse struct {
	Region        string                   `json:"region"`
	RegionName    string                   `json:"region_name"`
	ProductCode   string                   `json:"product_code"`
	DurationHours float64                  `json:"duration_hours"`
	Prices        []PriceRow               `json:"prices"`
	Lowest        *LowestPrice             `json:"lowest,omitempty"`
	CheapestBlock *BlockView               `json:"cheapest_block,omitempty"`
	WorstBlock    *BlockView               `json:"worst_block,omitempty"`
	FutureBlock   *BlockView               `json:"future_cheapest_block,omitempty"`
	EstimatedCost *float64                 `json:"estimated_cost_gbp,omitempty"`
	DailyAverages []engine.DailyAverageRow `json:"daily_averages"`
	Chart         engine.ChartData         `json:"chart"`
}

// PriceRow is one slot with its UK-local display fields.
type PriceRow struct {
	ValueIncVAT float64   `json:"value_inc_vat"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidTo     time.Time `json:"valid_to"`
	TimeUK      string    `json:"time_uk"`
	DateUK      string    `json:"date_uk"`
	InCheapest  bool      `json:"in_cheapest_block"`
}

// LowestPrice is the single cheapest half-hour slot.
type LowestPrice struct {
	Price      float64   `json:"price"`
	TimeFrom   time.Time `json:"time_from"`
	TimeTo     time.Time `json:"time_to"`
	TimeFromUK string    `json:"time_from_uk"`
	TimeToUK   string    `json:"time_to_uk"`
}

// BlockView is a charging window rendered for display.
type BlockView struct {
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	StartTimeUK  string    `json:"start_time_uk"`
	EndTimeUK    string    `json:"end_time_uk"`
	AveragePrice float64   `json:"average_price"`
	TotalCost    float64   `json:"total_cost"`
}

// DailyResponse is the per-calendar-day breakdown.
type DailyResponse struct {
	Region        string             `json:"region"`
	DurationHours float64            `json:"duration_hours"`
	Days          []engine.DayResult `json:"days"`
}

// StatsResponse wraps a persisted annual statistics record.
type StatsResponse struct {
	Stats model.YearStats `json:"stats"`
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine code and human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
