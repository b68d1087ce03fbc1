package engine

import (
	"time"

	"agile-pricing/internal/model"
	"agile-pricing/internal/uktime"
)

// ChartData is the series shape consumed by the price chart: one label,
// price and UTC timestamp per slot, plus the indices to highlight.
type ChartData struct {
	Labels               []string    `json:"labels"`
	Prices               []float64   `json:"prices"`
	Times                []time.Time `json:"times"`
	CheapestBlockIndices []int       `json:"cheapest_block_indices"`
	LowestPriceIndex     *int        `json:"lowest_price_index"`
}

// FormatChartData builds chart labels in UK local time. The first slot of
// each local date gets a DD/MM HH:MM label; later slots on the same date
// get HH:MM only, which keeps the axis readable across midnight.
func FormatChartData(slots []model.PriceSlot, cheapest *model.Block, lowest *model.PriceSlot) ChartData {
	sorted := model.SortSlots(slots)
	data := ChartData{
		Labels: make([]string, 0, len(sorted)),
		Prices: make([]float64, 0, len(sorted)),
		Times:  make([]time.Time, 0, len(sorted)),
	}
	prevDate := ""
	for i, s := range sorted {
		date := uktime.DateString(s.ValidFrom)
		if date != prevDate {
			data.Labels = append(data.Labels, uktime.FormatShort(s.ValidFrom))
		} else {
			data.Labels = append(data.Labels, uktime.FormatTime(s.ValidFrom))
		}
		data.Prices = append(data.Prices, s.ValueIncVAT)
		data.Times = append(data.Times, s.ValidFrom)
		prevDate = date

		if cheapest != nil && cheapest.Contains(s.ValidFrom) {
			data.CheapestBlockIndices = append(data.CheapestBlockIndices, i)
		}
		if lowest != nil && data.LowestPriceIndex == nil && s.ValidFrom.Equal(lowest.ValidFrom) {
			idx := i
			data.LowestPriceIndex = &idx
		}
	}
	if data.CheapestBlockIndices == nil {
		data.CheapestBlockIndices = []int{}
	}
	return data
}
