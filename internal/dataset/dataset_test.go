package dataset

import (
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `ID,Participant,Camera,FrameNr,jawOpen,browInnerUp
r1,p1,C0,1,4.5,0.2
r1,p1,C0,2,5.0,0.3
r1,p1,C1,1,3.9,0.1
r1,p1,C1,2,4.1,0.2
r2,p2,C0,1,1.0,7.5
r2,p2,C1,1,0.9,6.8
`

func TestLoadParsesRowsAndChannels(t *testing.T) {
	table, err := Load(strings.NewReader(sampleCSV), LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Channels) != 2 || table.Channels[0] != "jawOpen" || table.Channels[1] != "browInnerUp" {
		t.Fatalf("unexpected channels: %v", table.Channels)
	}
	if len(table.Rows) != 6 {
		t.Fatalf("unexpected row count: %d", len(table.Rows))
	}

	row := table.Rows[0]
	if row.ID != "r1" || row.Participant != "p1" || row.Camera != CameraReference || row.FrameNr != 1 {
		t.Fatalf("unexpected first row: %+v", row)
	}
	if row.Values[0] != 4.5 || row.Values[1] != 0.2 {
		t.Fatalf("unexpected values: %v", row.Values)
	}

	idx, ok := table.ChannelIndex("browInnerUp")
	if !ok || idx != 1 {
		t.Fatalf("unexpected channel index: %d %v", idx, ok)
	}
	if got := table.Participants(); len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Fatalf("unexpected participants: %v", got)
	}
	if got := table.Recordings(); len(got) != 2 || got[0] != "r1" || got[1] != "r2" {
		t.Fatalf("unexpected recordings: %v", got)
	}
}

func TestLoadAcceptsFrameHeaderAlias(t *testing.T) {
	csv := "ID,Participant,Camera,Frame,jawOpen\nr1,p1,C0,7,1.0\n"
	table, err := Load(strings.NewReader(csv), LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Rows[0].FrameNr != 7 {
		t.Fatalf("unexpected frame number: %d", table.Rows[0].FrameNr)
	}
}

func TestLoadRejectsMissingColumn(t *testing.T) {
	csv := "ID,Camera,FrameNr,jawOpen\nr1,C0,1,1.0\n"
	_, err := Load(strings.NewReader(csv), LoadOptions{})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestLoadRejectsUnknownCamera(t *testing.T) {
	csv := "ID,Participant,Camera,FrameNr,jawOpen\nr1,p1,C9,1,1.0\n"
	_, err := Load(strings.NewReader(csv), LoadOptions{})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestLoadRejectsNonNumericValue(t *testing.T) {
	csv := "ID,Participant,Camera,FrameNr,jawOpen\nr1,p1,C0,1,oops\n"
	_, err := Load(strings.NewReader(csv), LoadOptions{})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestLoadStrictChannelsRejectsUnknownName(t *testing.T) {
	csv := "ID,Participant,Camera,FrameNr,notAChannel\nr1,p1,C0,1,1.0\n"
	if _, err := Load(strings.NewReader(csv), LoadOptions{StrictChannels: true}); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if _, err := Load(strings.NewReader(csv), LoadOptions{}); err != nil {
		t.Fatalf("lenient load should accept unknown channel: %v", err)
	}
}

func TestValidatePartitionAcceptsMatchingPair(t *testing.T) {
	table, err := Load(strings.NewReader(sampleCSV), LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ValidatePartition(table, PartitionVerticalUp); err != nil {
		t.Fatalf("ValidatePartition: %v", err)
	}
}

func TestValidatePartitionRejectsWrongComparisonCamera(t *testing.T) {
	table, err := Load(strings.NewReader(sampleCSV), LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ValidatePartition(table, PartitionVerticalDown); !errors.Is(err, ErrCameraPair) {
		t.Fatalf("expected camera pair error, got %v", err)
	}
}

func TestValidatePartitionRejectsDuplicateRow(t *testing.T) {
	csv := "ID,Participant,Camera,FrameNr,jawOpen\nr1,p1,C0,1,1.0\nr1,p1,C0,1,2.0\nr1,p1,C1,1,1.0\n"
	table, err := Load(strings.NewReader(csv), LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ValidatePartition(table, PartitionVerticalUp); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestParsePartition(t *testing.T) {
	if p, err := ParsePartition("vertical-up"); err != nil || p.Comparison() != CameraUp {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	if p, err := ParsePartition("vertical-down"); err != nil || p.Comparison() != CameraDown {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	if _, err := ParsePartition("sideways"); err == nil {
		t.Fatal("expected error for unknown partition")
	}
}
