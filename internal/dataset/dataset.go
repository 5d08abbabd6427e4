package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors for input validation. Schema problems are fatal for the
// partition being processed; the pipeline never attempts partial recovery
// from malformed rows.
var (
	ErrSchema     = errors.New("schema violation")
	ErrCameraPair = errors.New("camera pair violation")
)

// Camera identifies one capture angle. C0 is the reference camera; C1 and C2
// are the vertical-up and vertical-down comparison cameras.
type Camera string

const (
	CameraReference Camera = "C0"
	CameraUp        Camera = "C1"
	CameraDown      Camera = "C2"
)

// Partition names one camera-pair dataset.
type Partition string

const (
	PartitionVerticalUp   Partition = "vertical-up"
	PartitionVerticalDown Partition = "vertical-down"
)

// Comparison returns the comparison camera of the partition's pair.
func (p Partition) Comparison() Camera {
	if p == PartitionVerticalDown {
		return CameraDown
	}
	return CameraUp
}

// ParsePartition maps a CLI string to a Partition.
func ParsePartition(value string) (Partition, error) {
	switch Partition(value) {
	case PartitionVerticalUp, PartitionVerticalDown:
		return Partition(value), nil
	default:
		return "", fmt.Errorf("unknown partition %q (expected %q or %q)", value, PartitionVerticalUp, PartitionVerticalDown)
	}
}

// FrameKey identifies one physical instant of one recording. Rows sharing a
// FrameKey but differing in camera are temporally aligned observations.
type FrameKey struct {
	ID      string
	FrameNr int
}

// Row is one time-sampled observation from one camera. Values is indexed by
// the owning Table's channel list.
type Row struct {
	ID          string
	Participant string
	Camera      Camera
	FrameNr     int
	Values      []float64
}

// Key returns the row's recording/frame identity, shared across cameras.
func (r Row) Key() FrameKey {
	return FrameKey{ID: r.ID, FrameNr: r.FrameNr}
}

// Table is the immutable in-memory frame table for one partition. Derived
// classification labels are kept outside the table (see package classify) so
// raw values are never revised after load.
type Table struct {
	Channels []string
	Rows     []Row

	channelIndex map[string]int
}

// NewTable builds a table over the given channel list and rows.
func NewTable(channels []string, rows []Row) *Table {
	index := make(map[string]int, len(channels))
	for i, name := range channels {
		index[name] = i
	}
	return &Table{Channels: channels, Rows: rows, channelIndex: index}
}

// ChannelIndex returns the column position of a blendshape channel.
func (t *Table) ChannelIndex(name string) (int, bool) {
	idx, ok := t.channelIndex[name]
	return idx, ok
}

// Value returns the blendshape value of one row by channel position.
func (t *Table) Value(row, channel int) float64 {
	return t.Rows[row].Values[channel]
}

// Participants returns the distinct participant identifiers in row order of
// first appearance.
func (t *Table) Participants() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.Rows {
		if _, ok := seen[row.Participant]; ok {
			continue
		}
		seen[row.Participant] = struct{}{}
		out = append(out, row.Participant)
	}
	return out
}

// Recordings returns the distinct recording identifiers in row order of
// first appearance.
func (t *Table) Recordings() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.Rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		out = append(out, row.ID)
	}
	return out
}
