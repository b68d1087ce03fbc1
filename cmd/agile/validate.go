package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agile-pricing/internal/config"
	"agile-pricing/internal/uktime"
)

func validateCmd() *cobra.Command {
	var regionsFlag string
	var year int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every region's archived series for gaps, duplicates and ordering defects",
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
			defects, err := job.ValidateArchives(year, regions)
			if err != nil {
				return err
			}
			if len(defects) == 0 {
				fmt.Println("all archives valid")
				return nil
			}
			for region, list := range defects {
				for _, d := range list {
					fmt.Printf("%s: %s\n", region, d)
				}
			}
			return fmt.Errorf("%d region(s) have invalid archives", len(defects))
		},
	}
	cmd.Flags().StringVar(&regionsFlag, "regions", "", "comma-separated region codes (default: all)")
	cmd.Flags().IntVar(&year, "year", 0, "target year (default: current UK year)")
	return cmd
}
