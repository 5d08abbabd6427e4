package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadOptions controls CSV parsing.
type LoadOptions struct {
	// StrictChannels rejects blendshape columns outside the canonical list.
	StrictChannels bool
}

// Meta column names recognized in the input header. Frame and FrameNr are
// interchangeable; the remaining columns are blendshape channels.
const (
	columnID          = "ID"
	columnParticipant = "Participant"
	columnCamera      = "Camera"
	columnFrame       = "Frame"
	columnFrameNr     = "FrameNr"
)

// LoadFile reads a frame table from a CSV file.
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	table, err := Load(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Load reads a frame table from CSV data. The header must contain ID,
// Participant, Camera, and Frame (or FrameNr) columns; every other column is
// treated as a numeric blendshape channel.
func Load(r io.Reader, opts LoadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrSchema, err)
	}

	meta := map[string]int{columnID: -1, columnParticipant: -1, columnCamera: -1, columnFrame: -1}
	var channels []string
	var channelCols []int
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		switch name {
		case columnID:
			meta[columnID] = i
		case columnParticipant:
			meta[columnParticipant] = i
		case columnCamera:
			meta[columnCamera] = i
		case columnFrame, columnFrameNr:
			meta[columnFrame] = i
		default:
			if opts.StrictChannels && !IsCanonicalChannel(name) {
				return nil, fmt.Errorf("%w: unknown blendshape column %q", ErrSchema, name)
			}
			channels = append(channels, name)
			channelCols = append(channelCols, i)
		}
	}
	for _, required := range []string{columnID, columnParticipant, columnCamera, columnFrame} {
		if meta[required] < 0 {
			want := required
			if required == columnFrame {
				want = "Frame/FrameNr"
			}
			return nil, fmt.Errorf("%w: missing column %s", ErrSchema, want)
		}
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no blendshape columns", ErrSchema)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSchema, line, err)
		}

		camera := Camera(strings.TrimSpace(record[meta[columnCamera]]))
		switch camera {
		case CameraReference, CameraUp, CameraDown:
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected camera %q", ErrSchema, line, camera)
		}

		frameNr, err := strconv.Atoi(strings.TrimSpace(record[meta[columnFrame]]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: frame number: %v", ErrSchema, line, err)
		}

		values := make([]float64, len(channelCols))
		for j, col := range channelCols {
			value, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: column %s: %v", ErrSchema, line, channels[j], err)
			}
			values[j] = value
		}

		rows = append(rows, Row{
			ID:          strings.TrimSpace(record[meta[columnID]]),
			Participant: strings.TrimSpace(record[meta[columnParticipant]]),
			Camera:      camera,
			FrameNr:     frameNr,
			Values:      values,
		})
	}

	return NewTable(channels, rows), nil
}
