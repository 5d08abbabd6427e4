package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"faceangle/internal/analysis"
	"faceangle/internal/classify"
	"faceangle/internal/dataset"
)

// ResultFileName names the per-(partition, level) result table export.
func ResultFileName(partition dataset.Partition, level classify.Activation) string {
	return fmt.Sprintf("results_%s_%s.csv", partition, level)
}

// AuditFileName names the classified working-table export for a partition.
func AuditFileName(partition dataset.Partition) string {
	return fmt.Sprintf("classified_%s.csv", partition)
}

// WriteRecordsCSV writes one result table.
func WriteRecordsCSV(path string, records []analysis.Record) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"Blendshape", "Activation", "Camera", "Intercept", "Effect", "EffectPct",
		"StdErr", "TStat", "PValue", "Correlation", "NumGroups", "Samples",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.Blendshape,
			string(record.Level),
			string(record.Camera),
			formatFloat(record.Intercept),
			formatFloat(record.Effect),
			strconv.Itoa(record.EffectPct),
			formatFloat(record.StdErr),
			formatFloat(record.TStat),
			formatFloat(record.PValue),
			formatFloat(record.Correlation),
			strconv.Itoa(record.NumGroups),
			strconv.Itoa(record.Samples),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", record.Blendshape, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// WriteAuditCSV writes the working table with its derived labels in long
// format: one row per (frame row, blendshape). Frames observed by a single
// camera carry an empty activation.
func WriteAuditCSV(path string, t *dataset.Table, classified []*classify.Result) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"ID", "Participant", "Camera", "FrameNr", "Blendshape", "Value", "Classification", "Activation"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, result := range classified {
		channel, ok := t.ChannelIndex(result.Blendshape)
		if !ok {
			return fmt.Errorf("%w: classified blendshape %q not in table", dataset.ErrSchema, result.Blendshape)
		}
		for i, row := range t.Rows {
			record := []string{
				row.ID,
				row.Participant,
				string(row.Camera),
				strconv.Itoa(row.FrameNr),
				result.Blendshape,
				formatFloat(t.Value(i, channel)),
				result.Class[i].String(),
				string(result.Activation[row.Key()]),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write audit row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return file, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
