// Package octopus is the client for the Octopus Energy public tariff API.
package octopus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"agile-pricing/internal/model"
	"agile-pricing/internal/uktime"
)

// Client fetches half-hourly unit rates. Responses arrive in reverse
// chronological order and paginated; callers get the merged, parsed slot
// list and sort it themselves.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     zerolog.Logger
}

// NewClient creates an API client. An empty baseURL defaults to the public
// endpoint.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.octopus.energy/v1"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// APIError is a non-2xx response from the Octopus API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("octopus API returned status %d for %s", e.StatusCode, e.URL)
}

// rateRow is the wire shape of one unit-rate entry.
type rateRow struct {
	ValueIncVAT float64 `json:"value_inc_vat"`
	ValidFrom   string  `json:"valid_from"`
	ValidTo     string  `json:"valid_to"`
}

type ratesPage struct {
	Count   int       `json:"count"`
	Next    string    `json:"next"`
	Results []rateRow `json:"results"`
}

// RatesResult is a fetched unit-rate series plus fetch metadata for
// archive provenance.
type RatesResult struct {
	Slots   []model.PriceSlot
	Pages   int
	Skipped int // records discarded for unparseable timestamps
}

const pageSize = 96 // two full days of half-hour slots

// GetUnitRates fetches all unit rates for a product+region over the UTC
// window [periodFrom, periodTo), following pagination to the end. A record
// with an unparseable timestamp is skipped and counted, not fatal; HTTP
// and decode failures are.
func (c *Client) GetUnitRates(ctx context.Context, productCode, region string, periodFrom, periodTo time.Time) (*RatesResult, error) {
	if productCode == "" || region == "" {
		return nil, fmt.Errorf("product code and region are required")
	}

	tariffCode := fmt.Sprintf("E-1R-%s-%s", productCode, region)
	u, err := url.Parse(fmt.Sprintf("%s/products/%s/electricity-tariffs/%s/standard-unit-rates/",
		c.BaseURL, productCode, tariffCode))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("period_from", uktime.FormatUTC(periodFrom))
	if !periodTo.IsZero() {
		q.Set("period_to", uktime.FormatUTC(periodTo))
	}
	q.Set("page_size", fmt.Sprint(pageSize))
	u.RawQuery = q.Encode()

	result := &RatesResult{}
	next := u.String()
	for next != "" {
		c.log.Debug().Str("url", next).Str("region", region).Msg("fetching unit rates page")
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		result.Pages++
		for _, row := range page.Results {
			slot, err := parseRow(row)
			if err != nil {
				result.Skipped++
				c.log.Warn().Err(err).Str("region", region).Msg("skipping malformed rate record")
				continue
			}
			result.Slots = append(result.Slots, slot)
		}
		next = page.Next
	}

	c.log.Info().
		Str("region", region).
		Int("slots", len(result.Slots)).
		Int("pages", result.Pages).
		Int("skipped", result.Skipped).
		Msg("unit rates fetched")
	return result, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*ratesPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	var page ratesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}

func parseRow(row rateRow) (model.PriceSlot, error) {
	from, err := uktime.ParseUTC(row.ValidFrom)
	if err != nil {
		return model.PriceSlot{}, err
	}
	to, err := uktime.ParseUTC(row.ValidTo)
	if err != nil {
		return model.PriceSlot{}, err
	}
	return model.PriceSlot{ValueIncVAT: row.ValueIncVAT, ValidFrom: from, ValidTo: to}, nil
}
