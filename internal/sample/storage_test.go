package sample_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cxg1987/specbench/internal/sample"
)

func TestCreateRunDir(t *testing.T) {
	base := t.TempDir()
	runDir, err := sample.CreateRunDir(base)
	if err != nil {
		t.Fatalf("CreateRunDir: %v", err)
	}
	info, err := os.Stat(runDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("run dir not created: %v", err)
	}
	latest, err := filepath.EvalSymlinks(filepath.Join(base, "latest"))
	if err != nil {
		t.Fatalf("latest symlink: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(runDir)
	if latest != resolved {
		t.Errorf("latest points to %s, want %s", latest, resolved)
	}
}

func TestWriteReadRun(t *testing.T) {
	runDir := t.TempDir()
	meta := &sample.RunMeta{
		MachineType: "n1-standard-4",
		NumCPUs:     4,
		Subset:      "int",
		DurationS:   5400,
	}
	samples := []sample.Sample{
		{Metric: "SPECint(R)_base2006", Value: 22.7, Metadata: map[string]string{"num_cpus": "4"}},
		{Metric: "400.perlbench", Value: 23.4, Metadata: map[string]string{"num_cpus": "4"}},
	}

	if err := sample.WriteRun(runDir, meta, samples); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}

	gotMeta, err := sample.ReadRunMeta(filepath.Join(runDir, "meta.json"))
	if err != nil {
		t.Fatalf("ReadRunMeta: %v", err)
	}
	if *gotMeta != *meta {
		t.Errorf("meta round trip: got %+v, want %+v", gotMeta, meta)
	}

	gotSamples, err := sample.ReadSamples(filepath.Join(runDir, "samples.json"))
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if len(gotSamples) != 2 {
		t.Fatalf("samples: got %d, want 2", len(gotSamples))
	}
	if gotSamples[0].Metric != "SPECint(R)_base2006" || gotSamples[0].Value != 22.7 {
		t.Errorf("first sample: %+v", gotSamples[0])
	}
	if gotSamples[1].Metadata["num_cpus"] != "4" {
		t.Errorf("metadata lost: %+v", gotSamples[1])
	}
}

func TestReadSamplesMissing(t *testing.T) {
	if _, err := sample.ReadSamples(filepath.Join(t.TempDir(), "samples.json")); err == nil {
		t.Error("expected error for missing samples file")
	}
}
