package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agile-pricing/internal/api/models"
	"agile-pricing/internal/cache"
	"agile-pricing/internal/config"
	"agile-pricing/internal/engine"
	"agile-pricing/internal/model"
	"agile-pricing/internal/octopus"
	"agile-pricing/internal/uktime"
)

// SlotSource fetches the live unit-rate series for a product+region.
type SlotSource interface {
	GetUnitRates(ctx context.Context, productCode, region string, periodFrom, periodTo time.Time) (*octopus.RatesResult, error)
}

// PricesHandler serves the live price analysis endpoints.
type PricesHandler struct {
	cfg    *config.Config
	source SlotSource
	cache  *cache.Cache
	log    zerolog.Logger
	now    func() time.Time
}

func NewPricesHandler(cfg *config.Config, source SlotSource, priceCache *cache.Cache, log zerolog.Logger) *PricesHandler {
	return &PricesHandler{
		cfg:    cfg,
		source: source,
		cache:  priceCache,
		log:    log,
		now:    time.Now,
	}
}

type pricesQuery struct {
	Region   string  `form:"region" binding:"required"`
	Product  string  `form:"product"`
	Duration float64 `form:"duration"`
	Capacity float64 `form:"capacity"`
}

// GetPrices handles GET /api/v1/prices. It returns today's (plus, once
// published, tomorrow's) slots with the cheapest/worst/future windows for
// the requested duration.
func (h *PricesHandler) GetPrices(c *gin.Context) {
	var q pricesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	if !octopus.ValidRegion(q.Region) {
		badRequest(c, "INVALID_REGION", "unknown region code")
		return
	}
	product := q.Product
	if product == "" {
		product = h.cfg.Octopus.ProductCode
	}
	// Out-of-range durations fall back to the 4 hour default rather than
	// erroring, matching the page's behavior.
	if q.Duration < 0.5 || q.Duration > 6.0 {
		q.Duration = 4.0
	}

	slots, err := h.loadPrices(c.Request.Context(), product, q.Region)
	if err != nil {
		h.log.Error().Err(err).Str("region", q.Region).Msg("failed to fetch prices")
		upstreamError(c, err)
		return
	}
	// Drop yesterday's slots that may linger in the cached series.
	now := h.now()
	slots = engine.FilterFromLocalDate(slots, uktime.DateString(now))
	slots = model.SortSlots(slots)

	lowest := engine.FindLowest(slots)
	cheapest := engine.FindCheapestBlock(slots, q.Duration)
	worst := engine.FindWorstBlock(slots, q.Duration)
	future := engine.FindFutureCheapestBlock(slots, q.Duration, now.UTC())

	resp := models.PricesResponse{
		Region:        q.Region,
		RegionName:    octopus.RegionNames[q.Region],
		ProductCode:   product,
		DurationHours: q.Duration,
		Prices:        priceRows(slots, cheapest),
		Lowest:        lowestView(lowest),
		CheapestBlock: blockView(cheapest),
		WorstBlock:    blockView(worst),
		FutureBlock:   blockView(future),
		DailyAverages: engine.DailyAverages(slots),
		Chart:         engine.FormatChartData(slots, cheapest, lowest),
	}
	if cheapest != nil && q.Capacity > 0 {
		resp.EstimatedCost = engine.ChargingCost(cheapest.AveragePrice, q.Capacity)
	}
	c.JSON(http.StatusOK, resp)
}

// GetDaily handles GET /api/v1/prices/daily: the per-calendar-day
// decomposition including the cheapest-remaining window.
func (h *PricesHandler) GetDaily(c *gin.Context) {
	var q pricesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	if !octopus.ValidRegion(q.Region) {
		badRequest(c, "INVALID_REGION", "unknown region code")
		return
	}
	product := q.Product
	if product == "" {
		product = h.cfg.Octopus.ProductCode
	}
	if q.Duration < 0.5 || q.Duration > 6.0 {
		q.Duration = 4.0
	}

	slots, err := h.loadPrices(c.Request.Context(), product, q.Region)
	if err != nil {
		h.log.Error().Err(err).Str("region", q.Region).Msg("failed to fetch prices")
		upstreamError(c, err)
		return
	}
	nowUTC := h.now().UTC()
	days := engine.CheapestPerDay(slots, q.Duration, &nowUTC)

	c.JSON(http.StatusOK, models.DailyResponse{
		Region:        q.Region,
		DurationHours: q.Duration,
		Days:          days,
	})
}

// loadPrices serves from the response cache when fresh, otherwise fetches
// from the API (from the start of today UK time onward) and refreshes the
// cache in place.
func (h *PricesHandler) loadPrices(ctx context.Context, product, region string) ([]model.PriceSlot, error) {
	if cached := h.cache.Get(product, region); cached != nil {
		return cached, nil
	}
	periodFrom := uktime.StartOfDay(uktime.ToUK(h.now()))
	result, err := h.source.GetUnitRates(ctx, product, region, periodFrom, time.Time{})
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(product, region, result.Slots); err != nil {
		// A cache write failure only costs the next request a refetch.
		h.log.Warn().Err(err).Str("region", region).Msg("failed to write price cache")
	}
	return result.Slots, nil
}

func priceRows(slots []model.PriceSlot, cheapest *model.Block) []models.PriceRow {
	rows := make([]models.PriceRow, len(slots))
	for i, s := range slots {
		rows[i] = models.PriceRow{
			ValueIncVAT: s.ValueIncVAT,
			ValidFrom:   s.ValidFrom,
			ValidTo:     s.ValidTo,
			TimeUK:      uktime.FormatTime(s.ValidFrom),
			DateUK:      uktime.FormatDate(s.ValidFrom),
			InCheapest:  cheapest != nil && cheapest.Contains(s.ValidFrom),
		}
	}
	return rows
}

func lowestView(s *model.PriceSlot) *models.LowestPrice {
	if s == nil {
		return nil
	}
	return &models.LowestPrice{
		Price:      s.ValueIncVAT,
		TimeFrom:   s.ValidFrom,
		TimeTo:     s.ValidTo,
		TimeFromUK: uktime.FormatTime(s.ValidFrom),
		TimeToUK:   uktime.FormatTime(s.ValidTo),
	}
}

func blockView(b *model.Block) *models.BlockView {
	if b == nil {
		return nil
	}
	return &models.BlockView{
		StartTime:    b.Start,
		EndTime:      b.End,
		StartTimeUK:  uktime.FormatTime(b.Start),
		EndTimeUK:    uktime.FormatTime(b.End),
		AveragePrice: b.AveragePrice,
		TotalCost:    b.TotalPrice,
	}
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}

func upstreamError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	if apiErr, ok := err.(*octopus.APIError); ok && apiErr.StatusCode == http.StatusTooManyRequests {
		status = http.StatusTooManyRequests
	}
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: "UPSTREAM_ERROR", Message: "Unable to fetch current prices"},
	})
}
