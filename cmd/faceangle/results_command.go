package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"faceangle/internal/analysis"
	"faceangle/internal/classify"
	"faceangle/internal/config"
	"faceangle/internal/dataset"
	"faceangle/internal/results"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored analysis runs",
	}

	resultsCmd.AddCommand(newResultsListCommand(ctx))
	resultsCmd.AddCommand(newResultsShowCommand(ctx))
	resultsCmd.AddCommand(newResultsExportCommand(ctx))

	return resultsCmd
}

func newResultsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := results.Open(cfg.Paths.ResultsDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs stored yet; run `faceangle analyze` first.")
				return nil
			}
			fmt.Fprintln(out, runsTable(runs))
			return nil
		},
	}
}

func newResultsShowCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var partitionFlag string
	var levelFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one run's result records",
		Long: `Show prints the result records of a stored run. Select the run by ID, or
by partition to pick that partition's most recent run. An optional level
filter narrows the output to HA, LA, or NA records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			level, err := levelOrDefault(levelFlag)
			if err != nil {
				return err
			}

			store, err := results.Open(cfg.Paths.ResultsDB)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := resolveRun(cmd.Context(), store, runID, partitionFlag)
			if err != nil {
				return err
			}

			records, err := store.RunRecords(cmd.Context(), run.ID, level)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s), created %s, source %s\n",
				run.ID, run.Partition, run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.Source)
			if len(records) == 0 {
				fmt.Fprintln(out, "No result records (every model fit was skipped).")
				return nil
			}
			fmt.Fprintln(out, recordsTable(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier")
	cmd.Flags().StringVarP(&partitionFlag, "partition", "p", "", "Show the latest run for this partition")
	cmd.Flags().StringVarP(&levelFlag, "level", "l", "", "Filter records to one activation level (HA, LA, NA)")
	return cmd
}

func newResultsExportCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var partitionFlag string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export a stored run's result CSVs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = cfg.Paths.OutputDir
			} else {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return err
				}
				dir = expanded
			}

			store, err := results.Open(cfg.Paths.ResultsDB)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := resolveRun(cmd.Context(), store, runID, partitionFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, level := range analysis.ModeledLevels {
				records, err := store.RunRecords(cmd.Context(), run.ID, level)
				if err != nil {
					return err
				}
				path := filepath.Join(dir, results.ResultFileName(run.Partition, level))
				if err := results.WriteRecordsCSV(path, records); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d %s records to %s\n", len(records), level, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier")
	cmd.Flags().StringVarP(&partitionFlag, "partition", "p", "", "Export the latest run for this partition")
	cmd.Flags().StringVarP(&outputDir, "dir", "d", "", "Destination directory (defaults to paths.output_dir)")
	return cmd
}

// levelOrDefault narrows a --level flag to a known activation level.
func levelOrDefault(value string) (classify.Activation, error) {
	switch classify.Activation(value) {
	case "":
		return "", nil
	case classify.ActivationHigh, classify.ActivationLow, classify.ActivationNone:
		return classify.Activation(value), nil
	default:
		return "", fmt.Errorf("unknown activation level %q (expected HA, LA, or NA)", value)
	}
}

// resolveRun picks a run by explicit ID, or falls back to the newest run for
// the given partition. Exactly one selector is required.
func resolveRun(ctx context.Context, store *results.Store, runID, partitionFlag string) (results.Run, error) {
	runID = strings.TrimSpace(runID)
	partitionFlag = strings.TrimSpace(partitionFlag)

	switch {
	case runID != "" && partitionFlag != "":
		return results.Run{}, fmt.Errorf("use either --run or --partition, not both")
	case runID != "":
		return store.GetRun(ctx, runID)
	case partitionFlag != "":
		partition, err := dataset.ParsePartition(partitionFlag)
		if err != nil {
			return results.Run{}, err
		}
		return store.LatestRun(ctx, partition)
	default:
		return results.Run{}, fmt.Errorf("select a run with --run or --partition")
	}
}
