package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/NomadCrew/feedback-collector/apiclient"
	"github.com/NomadCrew/feedback-collector/config"
	"github.com/NomadCrew/feedback-collector/report"
	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch every response and print the summary",
	Long: `report fetches all responses from the collection API with the admin
password (ADMIN_PASSWORD) and prints the totals, per-category counts and
rating means and the q1 answer distribution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		records, err := fetchAll(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		s := report.Summarize(records)
		if reportJSON {
			return writeJSON(cmd.OutOrStdout(), s)
		}
		return report.WriteText(cmd.OutOrStdout(), s)
	},
}

func fetchAll(ctx context.Context, cfg *config.Config) ([]report.Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Admin.Password == "" {
		return nil, errors.New("ADMIN_PASSWORD is required")
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	records, err := client.FetchAll(ctx, cfg.Admin.Password)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return nil, fmt.Errorf("incorrect admin password: %w", err)
	}
	return records, err
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(reportCmd)
}
