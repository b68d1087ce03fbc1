// Package cache is the file-based response cache for live price lookups:
// one persistent JSON file per product+region, refreshed in place when it
// expires. This keeps the site responsive without hammering the tariff API
// on every page view.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agile-pricing/internal/model"
	"agile-pricing/internal/uktime"
)

// entry is the on-disk cache record. Expiry lives inside the record so a
// stale process restart cannot resurrect old prices.
type entry struct {
	Product   string            `json:"product_code"`
	Region    string            `json:"region_code"`
	CachedAt  time.Time         `json:"cached_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Prices    []model.PriceSlot `json:"prices"`
}

// Cache stores API responses on disk with a short default TTL.
type Cache struct {
	dir string
	ttl time.Duration
	log zerolog.Logger
	now func() time.Time
}

func New(dir string, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{dir: dir, ttl: ttl, log: log, now: time.Now}
}

func (c *Cache) path(product, region string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(product)
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.json", safe, region))
}

// Get returns cached prices for a product+region, or nil when the cache is
// absent, unreadable or expired.
func (c *Cache) Get(product, region string) []model.PriceSlot {
	raw, err := os.ReadFile(c.path(product, region))
	if err != nil {
		return nil
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warn().Err(err).Str("region", region).Msg("discarding unreadable cache file")
		return nil
	}
	if c.now().After(e.ExpiresAt) {
		return nil
	}
	return e.Prices
}

// Set stores prices for a product+region, overwriting any previous record.
// The default expiry is the short TTL; when the series already includes
// tomorrow's prices (UK local date) the next refresh cannot change anything
// until the following afternoon's publication, so expiry moves out to
// 16:00 UK tomorrow.
func (c *Cache) Set(product, region string, prices []model.PriceSlot) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	now := c.now()
	e := entry{
		Product:   product,
		Region:    region,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	if exp := c.nextDayExpiry(prices, now); exp != nil {
		e.ExpiresAt = *exp
	}
	e.Prices = model.SortSlots(prices)

	raw, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	path := c.path(product, region)
	tmp, err := os.CreateTemp(c.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	c.log.Debug().
		Str("region", region).
		Time("expires_at", e.ExpiresAt).
		Int("slots", len(e.Prices)).
		Msg("cached prices")
	return nil
}

// nextDayExpiry checks the edge entries of a sorted series: if either falls
// on a UK date after today, next-day prices are published and the entry can
// live until 16:00 UK tomorrow. Nil means use the default TTL.
func (c *Cache) nextDayExpiry(prices []model.PriceSlot, now time.Time) *time.Time {
	if len(prices) == 0 {
		return nil
	}
	sorted := model.SortSlots(prices)
	first := uktime.ToUK(sorted[0].ValidFrom)
	last := uktime.ToUK(sorted[len(sorted)-1].ValidFrom)
	today := uktime.DateString(now)
	if uktime.DateString(first) <= today && uktime.DateString(last) <= today {
		return nil
	}
	latest := first
	if last.After(first) {
		latest = last
	}
	exp := time.Date(latest.Year(), latest.Month(), latest.Day(), 16, 0, 0, 0, uktime.UK)
	return &exp
}
