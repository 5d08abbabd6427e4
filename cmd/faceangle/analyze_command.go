package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"faceangle/internal/analysis"
	"faceangle/internal/dataset"
	"faceangle/internal/results"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var partitionFlag string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify a partition's frames and estimate camera effects",
		Long: `Analyze loads a partition's frame table, classifies every blendshape into
HA/LA/NA activation levels, fits the camera-effect model per (blendshape,
level), stores the run in the results database, and exports the result and
classified-table CSVs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			partition, err := dataset.ParsePartition(partitionFlag)
			if err != nil {
				return err
			}

			input := inputPath
			if !filepath.IsAbs(input) {
				input = filepath.Join(cfg.Paths.DataDir, input)
			}

			// One analyze at a time; concurrent runs would interleave
			// exports and database writes.
			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, "faceangle.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire analyze lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another analyze is already running (lock %s)", lock.Path())
			}
			defer func() { _ = lock.Unlock() }()

			table, err := dataset.LoadFile(input, dataset.LoadOptions{StrictChannels: cfg.Analysis.StrictChannels})
			if err != nil {
				return err
			}
			logger.Info("dataset loaded",
				"partition", string(partition),
				"rows", len(table.Rows),
				"blendshapes", len(table.Channels))

			pipeline := analysis.New(table, partition, analysis.FromConfig(cfg), logger)
			result, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			store, err := results.Open(cfg.Paths.ResultsDB)
			if err != nil {
				return err
			}
			defer store.Close()

			var records []analysis.Record
			for _, level := range analysis.ModeledLevels {
				records = append(records, result.Records[level]...)
			}
			run, err := store.SaveRun(cmd.Context(), results.Run{
				Partition:    partition,
				Multiplier:   cfg.Analysis.Multiplier,
				MinThreshold: cfg.Analysis.MinThreshold,
				Source:       filepath.Base(input),
			}, records)
			if err != nil {
				return err
			}

			if err := exportRun(cfg.Paths.OutputDir, partition, result, table); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s): %d result rows from %d blendshapes\n", run.ID, partition, len(records), len(table.Channels))
			if len(records) > 0 {
				fmt.Fprintln(out, recordsTable(records))
			}
			fmt.Fprintf(out, "Exports written to %s\n", cfg.Paths.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Frame table CSV (absolute, or relative to paths.data_dir)")
	cmd.Flags().StringVarP(&partitionFlag, "partition", "p", "", "Dataset partition: vertical-up or vertical-down")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("partition")
	return cmd
}

func exportRun(outputDir string, partition dataset.Partition, result *analysis.RunResult, table *dataset.Table) error {
	for _, level := range analysis.ModeledLevels {
		path := filepath.Join(outputDir, results.ResultFileName(partition, level))
		if err := results.WriteRecordsCSV(path, result.Records[level]); err != nil {
			return err
		}
	}
	auditPath := filepath.Join(outputDir, results.AuditFileName(partition))
	return results.WriteAuditCSV(auditPath, table, result.Classified)
}
