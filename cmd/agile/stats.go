package main

import (
	"github.com/spf13/cobra"

	"agile-pricing/internal/config"
	"agile-pricing/internal/uktime"
)

func statsCmd() *cobra.Command {
	var regionsFlag string
	var year int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Regenerate per-region and national annual statistics from the archive",
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
			return job.RebuildStats(year, regions)
		},
	}
	cmd.Flags().StringVar(&regionsFlag, "regions", "", "comma-separated region codes (default: all)")
	cmd.Flags().IntVar(&year, "year", 0, "target year (default: current UK year)")
	return cmd
}
