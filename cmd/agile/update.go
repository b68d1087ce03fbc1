package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"agile-pricing/internal/archive"
	"agile-pricing/internal/config"
	"agile-pricing/internal/logging"
	"agile-pricing/internal/octopus"
	"agile-pricing/internal/stats"
	"agile-pricing/internal/uktime"
	"agile-pricing/internal/update"
)

func regionList(flag string) ([]string, error) {
	if flag == "" {
		return octopus.RegionCodes(), nil
	}
	var out []string
	for _, r := range strings.Split(flag, ",") {
		r = strings.TrimSpace(r)
		if !octopus.ValidRegion(r) {
			return nil, fmt.Errorf("unknown region code %q", r)
		}
		out = append(out, r)
	}
	return out, nil
}

func buildJob(cfg *config.Config) *update.Job {
	client := octopus.NewClient(cfg.Octopus.BaseURL,
		time.Duration(cfg.Octopus.TimeoutSeconds)*time.Second, logging.New("octopus"))
	archives := archive.NewStore(cfg.Data.RawDir)
	statsStore := stats.NewFileStore(cfg.Data.StatsDir)
	calculator := stats.NewCalculator(cfg, logging.New("stats"))
	return update.NewJob(cfg, client, archives, calculator, statsStore, logging.New("update"))
}

func updateCmd() *cobra.Command {
	var regionsFlag string
	var year int
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Incrementally fetch new prices into the archive and rebuild statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			regions, err := regionList(regionsFlag)
			if err != nil {
				return err
			}
			if year == 0 {
				year = uktime.Now().Year()
			}
			job := buildJob(cfg)
			return job.Run(cmd.Context(), regions, year)
		},
	}
	cmd.Flags().StringVar(&regionsFlag, "regions", "", "comma-separated region codes (default: all)")
	cmd.Flags().IntVar(&year, "year", 0, "target year (default: current UK year)")
	return cmd
}
