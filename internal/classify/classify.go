package classify

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"faceangle/internal/dataset"
)

// Classification is the per-camera label of one frame for one blendshape.
type Classification uint8

const (
	NotActivated Classification = iota
	Activated
	HighlyActivated
)

func (c Classification) String() string {
	switch c {
	case HighlyActivated:
		return "HighlyActivated"
	case Activated:
		return "Activated"
	default:
		return "NotActivated"
	}
}

// Activation is the fused two-camera label of one frame for one blendshape.
type Activation string

const (
	ActivationHigh Activation = "HA"
	ActivationLow  Activation = "LA"
	ActivationNone Activation = "NA"
)

// Params holds the classification constants. Thread these through explicitly;
// classification must stay a pure function of raw values and fixed thresholds.
type Params struct {
	// Multiplier scales the standard deviation in the high-activation
	// threshold: mean + Multiplier*sd.
	Multiplier float64
	// MinThreshold is the floor below which a frame is never activated.
	MinThreshold float64
}

// Threshold derives the high-activation threshold for one (recording, camera)
// value sequence. A sequence of fewer than two samples has its standard
// deviation defined as zero.
func Threshold(values []float64, multiplier float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return values[0]
	}
	mean, sd := stat.MeanStdDev(values, nil)
	return mean + multiplier*sd
}

// Level labels a single value against the recording's high-activation
// threshold and the fixed minimal threshold.
func Level(value, threshold, minThreshold float64) Classification {
	switch {
	case value > threshold:
		return HighlyActivated
	case value >= minThreshold:
		return Activated
	default:
		return NotActivated
	}
}

// Fuse merges the two cameras' classifications of one frame. HA requires
// both cameras to agree on HighlyActivated, NA requires both to agree on
// NotActivated, and every other combination is LA. The rule is symmetric in
// its arguments.
func Fuse(reference, comparison Classification) Activation {
	switch {
	case reference == HighlyActivated && comparison == HighlyActivated:
		return ActivationHigh
	case reference == NotActivated && comparison == NotActivated:
		return ActivationNone
	default:
		return ActivationLow
	}
}

// Result carries the derived labels of one blendshape over one partition.
// Class is parallel to the table's rows. Activation is defined only on frame
// keys present for both cameras; frames observed by a single camera receive
// no label and belong to no activation subset.
type Result struct {
	Blendshape string
	Class      []Classification
	Activation map[dataset.FrameKey]Activation
}

type group struct {
	id     string
	camera dataset.Camera
}

// Blendshape classifies every frame of one blendshape channel and fuses the
// two cameras' labels. Thresholds are computed per (recording, camera) group
// and never shared across recordings or cameras. A missing channel or a
// duplicate (recording, frame, camera) row is a fatal schema violation.
func Blendshape(t *dataset.Table, name string, partition dataset.Partition, p Params) (*Result, error) {
	channel, ok := t.ChannelIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: missing blendshape column %q", dataset.ErrSchema, name)
	}
	comparison := partition.Comparison()

	// Grouped aggregation: collect row indices per (recording, camera),
	// derive each group's threshold, then label the group's rows.
	groups := make(map[group][]int)
	for i, row := range t.Rows {
		g := group{id: row.ID, camera: row.Camera}
		groups[g] = append(groups[g], i)
	}

	class := make([]Classification, len(t.Rows))
	for _, rowIdx := range groups {
		values := make([]float64, len(rowIdx))
		for j, i := range rowIdx {
			values[j] = t.Value(i, channel)
		}
		threshold := Threshold(values, p.Multiplier)
		for _, i := range rowIdx {
			class[i] = Level(t.Value(i, channel), threshold, p.MinThreshold)
		}
	}

	refClass := make(map[dataset.FrameKey]Classification)
	cmpClass := make(map[dataset.FrameKey]Classification)
	for i, row := range t.Rows {
		key := row.Key()
		switch row.Camera {
		case dataset.CameraReference:
			if _, dup := refClass[key]; dup {
				return nil, fmt.Errorf("%w: duplicate reference row for recording %s frame %d", dataset.ErrSchema, row.ID, row.FrameNr)
			}
			refClass[key] = class[i]
		case comparison:
			if _, dup := cmpClass[key]; dup {
				return nil, fmt.Errorf("%w: duplicate comparison row for recording %s frame %d", dataset.ErrSchema, row.ID, row.FrameNr)
			}
			cmpClass[key] = class[i]
		default:
			return nil, fmt.Errorf("%w: camera %s outside pair {%s, %s}", dataset.ErrCameraPair, row.Camera, dataset.CameraReference, comparison)
		}
	}

	// Fusion is total over the intersection of the two cameras' frame keys.
	activation := make(map[dataset.FrameKey]Activation, len(refClass))
	for key, ref := range refClass {
		cmp, ok := cmpClass[key]
		if !ok {
			continue
		}
		activation[key] = Fuse(ref, cmp)
	}

	return &Result{Blendshape: name, Class: class, Activation: activation}, nil
}

// Subset returns the indices of the rows (both cameras) whose fused
// activation equals level. The returned slice preserves table row order; the
// table itself is never mutated.
func Subset(t *dataset.Table, r *Result, level Activation) []int {
	var rows []int
	for i, row := range t.Rows {
		if r.Activation[row.Key()] == level {
			rows = append(rows, i)
		}
	}
	return rows
}
