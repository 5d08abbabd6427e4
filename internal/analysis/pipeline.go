package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"faceangle/internal/classify"
	"faceangle/internal/dataset"
	"faceangle/internal/logging"
	"faceangle/internal/mixedmodel"
)

// Pipeline runs the full activation-classification and effect-estimation
// recipe over one partition's frame table.
type Pipeline struct {
	table     *dataset.Table
	partition dataset.Partition
	opts      Options
	logger    *slog.Logger
}

// New constructs a pipeline. A nil logger falls back to a no-op logger.
func New(table *dataset.Table, partition dataset.Partition, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{table: table, partition: partition, opts: opts, logger: logger}
}

// RunResult is the terminal output of one partition run: result records per
// modeled activation level plus the derived labels for audit export.
type RunResult struct {
	Partition  dataset.Partition
	Records    map[classify.Activation][]Record
	Classified []*classify.Result
}

// Run executes the pipeline: per blendshape, classification and fusion; per
// (blendshape, activation level), subset extraction, model fitting with the
// degeneracy fallback, and record aggregation. Classification errors abort
// the partition; fitting skips are logged and produce no record.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	if err := dataset.ValidatePartition(p.table, p.partition); err != nil {
		return nil, err
	}
	comparison := p.partition.Comparison()

	result := &RunResult{
		Partition: p.partition,
		Records:   make(map[classify.Activation][]Record, len(ModeledLevels)),
	}

	for _, blendshape := range p.table.Channels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		classified, err := classify.Blendshape(p.table, blendshape, p.partition, p.opts.Params)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", blendshape, err)
		}
		result.Classified = append(result.Classified, classified)
		p.logger.Debug("classified blendshape",
			slog.String("blendshape", blendshape),
			slog.Int("fused_frames", len(classified.Activation)))

		channel, _ := p.table.ChannelIndex(blendshape)
		for _, level := range ModeledLevels {
			rows := classify.Subset(p.table, classified, level)
			record, ok, err := p.fitSubset(blendshape, channel, level, comparison, rows)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			result.Records[level] = append(result.Records[level], record)
		}
	}
	return result, nil
}

func (p *Pipeline) fitSubset(blendshape string, channel int, level classify.Activation, comparison dataset.Camera, rows []int) (Record, bool, error) {
	data := mixedmodel.Data{
		Response:    make([]float64, len(rows)),
		Camera:      make([]float64, len(rows)),
		Recording:   make([]string, len(rows)),
		Participant: make([]string, len(rows)),
	}
	for i, rowIdx := range rows {
		row := p.table.Rows[rowIdx]
		data.Response[i] = p.table.Value(rowIdx, channel)
		data.Recording[i] = row.ID
		data.Participant[i] = row.Participant
		if row.Camera == dataset.CameraReference {
			data.Camera[i] = p.opts.ReferenceContrast
		} else {
			data.Camera[i] = p.opts.ComparisonContrast
		}
	}

	outcome, err := mixedmodel.Fit(data, mixedmodel.Options{SingularTolerance: p.opts.SingularTolerance})
	if err != nil {
		return Record{}, false, fmt.Errorf("fit %s %s: %w", blendshape, level, err)
	}
	if !outcome.Fitted() {
		p.logger.Info("model skipped",
			slog.String("blendshape", blendshape),
			slog.String("level", string(level)),
			slog.String("reason", string(outcome.Reason)),
			slog.Int("rows", len(rows)))
		return Record{}, false, nil
	}

	correlation := cameraCorrelation(p.table, channel, rows, comparison)
	record := buildRecord(blendshape, level, comparison, outcome.Model, correlation)
	p.logger.Debug("model fitted",
		slog.String("blendshape", blendshape),
		slog.String("level", string(level)),
		slog.Int("groups", record.NumGroups),
		slog.Int("samples", record.Samples))
	return record, true, nil
}
