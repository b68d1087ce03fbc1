package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agile-pricing/internal/api/models"
	"agile-pricing/internal/octopus"
	"agile-pricing/internal/stats"
	"agile-pricing/internal/uktime"
)

// StatsHandler serves persisted annual statistics records.
type StatsHandler struct {
	store stats.Store
	log   zerolog.Logger
}

func NewStatsHandler(store stats.Store, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{store: store, log: log}
}

// GetStats handles GET /api/v1/stats. region defaults to the national
// average record, year to the current UK year.
func (h *StatsHandler) GetStats(c *gin.Context) {
	region := c.DefaultQuery("region", stats.NationalRegion)
	if region != stats.NationalRegion && !octopus.ValidRegion(region) {
		badRequest(c, "INVALID_REGION", "unknown region code")
		return
	}
	year := uktime.Now().Year()
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			badRequest(c, "INVALID_YEAR", "year must be an integer")
			return
		}
		year = parsed
	}

	record, err := h.store.Load(region, year)
	if err != nil {
		h.log.Error().Err(err).Str("region", region).Int("year", year).Msg("failed to load stats")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "STATS_UNAVAILABLE", Message: "Unable to load statistics"},
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "No statistics for that region and year yet"},
		})
		return
	}
	c.JSON(http.StatusOK, models.StatsResponse{Stats: *record})
}

// ListRegions handles GET /api/v1/regions.
func ListRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"regions": octopus.Regions()})
}
