package results

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"faceangle/internal/analysis"
	"faceangle/internal/classify"
	"faceangle/internal/dataset"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecords() []analysis.Record {
	return []analysis.Record{
		{
			Blendshape: "jawOpen", Level: classify.ActivationHigh, Camera: dataset.CameraUp,
			Intercept: 40.5, Effect: 1.0, EffectPct: 2, StdErr: 0.18, TStat: 5.64,
			PValue: 0.0001, Correlation: 1.0, NumGroups: 2, Samples: 32,
		},
		{
			Blendshape: "browInnerUp", Level: classify.ActivationLow, Camera: dataset.CameraUp,
			Intercept: 6.9, Effect: -0.4, EffectPct: 6, StdErr: 0.05, TStat: -8.12,
			PValue: 0.0, Correlation: 0.97, NumGroups: 1, Samples: 128,
		},
	}
}

func TestSaveRunAndReadBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.SaveRun(ctx, Run{
		Partition:    dataset.PartitionVerticalUp,
		Multiplier:   0.5,
		MinThreshold: 3,
		Source:       "frames.csv",
	}, sampleRecords())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("expected generated identity, got %+v", run)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Partition != dataset.PartitionVerticalUp || got.Multiplier != 0.5 || got.Source != "frames.csv" {
		t.Fatalf("unexpected run: %+v", got)
	}

	records, err := store.RunRecords(ctx, run.ID, "")
	if err != nil {
		t.Fatalf("RunRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected record count: %d", len(records))
	}

	ha, err := store.RunRecords(ctx, run.ID, classify.ActivationHigh)
	if err != nil {
		t.Fatalf("RunRecords HA: %v", err)
	}
	if len(ha) != 1 || ha[0].Blendshape != "jawOpen" || ha[0].Samples != 32 {
		t.Fatalf("unexpected HA records: %+v", ha)
	}
	if ha[0].Effect != 1.0 || ha[0].NumGroups != 2 {
		t.Fatalf("record fields lost in round trip: %+v", ha[0])
	}
}

func TestLatestRunPerPartition(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := Run{Partition: dataset.PartitionVerticalUp, CreatedAt: time.Now().UTC().Add(-time.Hour)}
	if _, err := store.SaveRun(ctx, older, nil); err != nil {
		t.Fatalf("SaveRun older: %v", err)
	}
	newer, err := store.SaveRun(ctx, Run{Partition: dataset.PartitionVerticalUp}, nil)
	if err != nil {
		t.Fatalf("SaveRun newer: %v", err)
	}
	if _, err := store.SaveRun(ctx, Run{Partition: dataset.PartitionVerticalDown}, nil); err != nil {
		t.Fatalf("SaveRun other partition: %v", err)
	}

	latest, err := store.LatestRun(ctx, dataset.PartitionVerticalUp)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest.ID != newer.ID {
		t.Fatalf("latest run: got %s want %s", latest.ID, newer.ID)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("unexpected run count: %d", len(runs))
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.LatestRun(context.Background(), dataset.PartitionVerticalUp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ResultFileName(dataset.PartitionVerticalUp, classify.ActivationHigh))

	if err := WriteRecordsCSV(path, sampleRecords()[:1]); err != nil {
		t.Fatalf("WriteRecordsCSV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "Blendshape,Activation,Camera,") {
		t.Fatalf("unexpected header: %q", text)
	}
	if !strings.Contains(text, "jawOpen,HA,C1,40.5,1,2,0.18,5.64,0.0001,1,2,32") {
		t.Fatalf("unexpected record line: %q", text)
	}
}

func TestWriteAuditCSV(t *testing.T) {
	rows := []dataset.Row{
		{ID: "r1", Participant: "p1", Camera: dataset.CameraReference, FrameNr: 1, Values: []float64{4.5}},
		{ID: "r1", Participant: "p1", Camera: dataset.CameraUp, FrameNr: 1, Values: []float64{5.5}},
		{ID: "r1", Participant: "p1", Camera: dataset.CameraReference, FrameNr: 2, Values: []float64{1.0}},
	}
	table := dataset.NewTable([]string{"jawOpen"}, rows)
	classified := []*classify.Result{{
		Blendshape: "jawOpen",
		Class:      []classify.Classification{classify.Activated, classify.Activated, classify.NotActivated},
		Activation: map[dataset.FrameKey]classify.Activation{
			{ID: "r1", FrameNr: 1}: classify.ActivationLow,
		},
	}}

	path := filepath.Join(t.TempDir(), AuditFileName(dataset.PartitionVerticalUp))
	if err := WriteAuditCSV(path, table, classified); err != nil {
		t.Fatalf("WriteAuditCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("unexpected line count: %d", len(lines))
	}
	if lines[1] != "r1,p1,C0,1,jawOpen,4.5,Activated,LA" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	// Frame 2 exists only for the reference camera: no activation label.
	if lines[3] != "r1,p1,C0,2,jawOpen,1,NotActivated," {
		t.Fatalf("unexpected unlabeled row: %q", lines[3])
	}
}
