package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/NomadCrew/feedback-collector/report"
	"github.com/NomadCrew/feedback-collector/services/archive"
	"github.com/spf13/cobra"
)

var (
	exportOut     string
	exportArchive bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every response to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if exportArchive && !cfg.Archive.Enabled {
			return errors.New("--archive needs ARCHIVE_ENABLED=true and a bucket")
		}

		records, err := fetchAll(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, records); err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d responses to %s\n", len(records), exportOut)

		if !exportArchive {
			return nil
		}
		archiver, err := archive.NewFromConfig(cmd.Context(), cfg.Archive)
		if err != nil {
			return err
		}
		key, err := archiver.UploadCSV(cmd.Context(), exportOut, buf.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "archived to s3://%s/%s\n", cfg.Archive.Bucket, key)
		return nil
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", report.ExportFilename, "Output CSV file")
	exportCmd.Flags().BoolVar(&exportArchive, "archive", false, "Also upload the file to the configured bucket")
	rootCmd.AddCommand(exportCmd)
}
