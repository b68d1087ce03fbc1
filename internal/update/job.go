package update

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"agile-pricing/internal/archive"
	"agile-pricing/internal/config"
	"agile-pricing/internal/octopus"
	"agile-pricing/internal/stats"
	"agile-pricing/internal/uktime"
)

// slotCountSlack is how far a fetch may fall short of the expected slot
// count before it is worth a warning; the API occasionally excludes an
// edge slot, and ValidateSeries catches true gaps.
const slotCountSlack = 2

// RateFetcher is the slice of the tariff client the job needs.
type RateFetcher interface {
	GetUnitRates(ctx context.Context, productCode, region string, periodFrom, periodTo time.Time) (*octopus.RatesResult, error)
}

// Job is the daily batch run: per region, decide what to fetch, fetch it,
// validate the merged series and persist the archive; once every region
// has succeeded, rebuild the per-region and national statistics. Any
// region failure aborts the statistics step for the whole run, so partial
// aggregates are never published.
type Job struct {
	cfg        *config.Config
	fetcher    RateFetcher
	archives   *archive.Store
	calculator *stats.Calculator
	statsStore stats.Store
	log        zerolog.Logger
	now        func() time.Time
}

func NewJob(cfg *config.Config, fetcher RateFetcher, archives *archive.Store, calculator *stats.Calculator, statsStore stats.Store, log zerolog.Logger) *Job {
	return &Job{
		cfg:        cfg,
		fetcher:    fetcher,
		archives:   archives,
		calculator: calculator,
		statsStore: statsStore,
		log:        log,
		now:        uktime.Now,
	}
}

// Run executes the update for the given regions and year. Regions are
// processed concurrently and independently; a failure in one does not stop
// the others, but any failure skips the downstream statistics rebuild.
func (j *Job) Run(ctx context.Context, regions []string, year int) error {
	runID := uuid.NewString()
	log := j.log.With().Str("run_id", runID).Int("year", year).Logger()
	log.Info().Strs("regions", regions).Msg("starting incremental update run")

	errs := make([]error, len(regions))
	var g errgroup.Group
	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			if err := j.updateRegion(ctx, log, region, year); err != nil {
				errs[i] = fmt.Errorf("region %s: %w", region, err)
				return errs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil {
				log.Error().Err(e).Msg("region update failed")
			}
		}
		return fmt.Errorf("update run %s failed, statistics not regenerated: %w", runID, err)
	}

	if err := j.RebuildStats(year, regions); err != nil {
		return fmt.Errorf("rebuild statistics: %w", err)
	}
	log.Info().Msg("incremental update run complete")
	return nil
}

func (j *Job) updateRegion(ctx context.Context, log zerolog.Logger, region string, year int) error {
	log = log.With().Str("region", region).Logger()

	arch, err := j.archives.Load(region, year)
	if err != nil {
		return err
	}
	if arch == nil {
		arch = &archive.Archive{Region: region, Year: year}
	}

	plan := DetermineFetchPlan(region, arch.Prices, j.now())
	if plan == nil {
		log.Info().Msg("archive already includes tomorrow, nothing to fetch")
		return nil
	}
	log.Info().
		Str("reason", plan.Reason).
		Time("period_from", plan.PeriodFrom).
		Time("period_to", plan.PeriodTo).
		Msg("fetch plan determined")

	result, err := j.fetcher.GetUnitRates(ctx, j.cfg.Octopus.ProductCode, region, plan.PeriodFrom, plan.PeriodTo)
	if err != nil {
		return fmt.Errorf("fetch %s to %s: %w",
			uktime.FormatUTC(plan.PeriodFrom), uktime.FormatUTC(plan.PeriodTo), err)
	}

	expected := ExpectedSlotCount(plan.PeriodFrom, plan.PeriodTo)
	if len(result.Slots) < expected-slotCountSlack {
		log.Warn().
			Int("got", len(result.Slots)).
			Int("expected", expected).
			Msg("fetch returned fewer slots than expected")
	}

	merged := DedupeAndSort(append(arch.Prices, result.Slots...))
	if defects := ValidateSeries(merged); len(defects) > 0 {
		for _, d := range defects {
			log.Error().Str("defect", d).Msg("merged series failed validation")
		}
		return fmt.Errorf("merged series has %d defects, refusing to persist", len(defects))
	}

	arch.Prices = merged
	arch.UpdatedAt = j.now()
	arch.Fetches = append(arch.Fetches, archive.FetchRecord{
		FetchedAt:  j.now(),
		PeriodFrom: plan.PeriodFrom,
		PeriodTo:   plan.PeriodTo,
		Pages:      result.Pages,
		SlotCount:  len(result.Slots),
		Reason:     plan.Reason,
	})
	if err := j.archives.Save(arch); err != nil {
		return err
	}
	log.Info().Int("total_slots", len(merged)).Msg("archive updated")
	return nil
}

// RebuildStats recomputes and overwrites every region's YearStats from its
// archive, then the national average record.
func (j *Job) RebuildStats(year int, regions []string) error {
	product := j.cfg.Octopus.ProductCode
	for _, region := range regions {
		arch, err := j.archives.Load(region, year)
		if err != nil {
			return err
		}
		if arch == nil {
			return fmt.Errorf("no archive for region %s year %d", region, year)
		}
		s := j.calculator.CalculateYearStats(product, region, year, stats.NewSlotsByDay(arch.Prices))
		if err := j.statsStore.Save(s); err != nil {
			return fmt.Errorf("save stats for region %s: %w", region, err)
		}
	}
	national, err := j.calculator.CalculateNationalAverages(j.statsStore, product, year, regions)
	if err != nil {
		return err
	}
	return j.statsStore.Save(*national)
}

// ValidateArchives checks each region's stored series and returns a map of
// region to defect list for any region whose archive fails validation.
func (j *Job) ValidateArchives(year int, regions []string) (map[string][]string, error) {
	defects := map[string][]string{}
	for _, region := range regions {
		arch, err := j.archives.Load(region, year)
		if err != nil {
			return nil, err
		}
		if arch == nil {
			continue
		}
		if d := ValidateSeries(arch.Prices); len(d) > 0 {
			defects[region] = d
		}
	}
	return defects, nil
}
