package report_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cxg1987/specbench/internal/report"
	"github.com/cxg1987/specbench/internal/sample"
)

func writeRun(t *testing.T, base, stamp string, samples []sample.Sample) {
	t.Helper()
	runDir := filepath.Join(base, "runs", stamp)
	meta := &sample.RunMeta{MachineType: "n1-standard-4", NumCPUs: 4, Subset: "int"}
	if err := sample.WriteRun(runDir, meta, samples); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
}

func TestGenerateTable(t *testing.T) {
	base := t.TempDir()
	writeRun(t, base, "2026-08-01T10-00-00", []sample.Sample{
		{Metric: "SPECint(R)_base2006", Value: 22.7},
		{Metric: "400.perlbench", Value: 23.4},
	})
	writeRun(t, base, "2026-08-02T10-00-00", []sample.Sample{
		{Metric: "SPECint(R)_base2006", Value: 23.1},
		{Metric: "400.perlbench", Value: 23.0},
	})

	var buf bytes.Buffer
	if err := report.Generate(filepath.Join(base, "runs"), "table", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "SPECint(R)_base2006") {
		t.Error("expected suite aggregate in output")
	}
	if !strings.Contains(out, "400.perlbench") {
		t.Error("expected detail metric in output")
	}
	if !strings.Contains(out, "22.90") {
		t.Errorf("expected mean 22.90 in output:\n%s", out)
	}
}

func TestGenerateJSON(t *testing.T) {
	base := t.TempDir()
	writeRun(t, base, "2026-08-01T10-00-00", []sample.Sample{
		{Metric: "SPECfp(R)_base2006", Value: 17.5},
	})

	var buf bytes.Buffer
	if err := report.Generate(filepath.Join(base, "runs"), "json", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var summaries []report.MetricSummary
	if err := json.Unmarshal(buf.Bytes(), &summaries); err != nil {
		t.Fatalf("parsing json output: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries: got %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.Metric != "SPECfp(R)_base2006" || s.Runs != 1 || s.MeanScore != 17.5 {
		t.Errorf("summary: %+v", s)
	}
	if s.MinScore != 17.5 || s.MaxScore != 17.5 {
		t.Errorf("min/max: %+v", s)
	}
}

func TestGenerateMarkdown(t *testing.T) {
	base := t.TempDir()
	writeRun(t, base, "2026-08-01T10-00-00", []sample.Sample{
		{Metric: "470.lbm", Value: 37.7},
	})

	var buf bytes.Buffer
	if err := report.Generate(filepath.Join(base, "runs"), "markdown", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(buf.String(), "| 470.lbm | 1 | 37.70 | 37.70 | 37.70 |") {
		t.Errorf("markdown output:\n%s", buf.String())
	}
}

func TestPrintSamples(t *testing.T) {
	samples := []sample.Sample{
		{Metric: "SPECint(R)_base2006", Value: 22.7, Metadata: map[string]string{"machine_type": "n1-standard-4", "num_cpus": "4"}},
		{Metric: "400.perlbench", Value: 23.4, Metadata: map[string]string{"machine_type": "n1-standard-4", "num_cpus": "4"}},
	}
	var buf bytes.Buffer
	if err := report.PrintSamples(&buf, samples); err != nil {
		t.Fatalf("PrintSamples: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "400.perlbench") {
		t.Error("expected detail metric in output")
	}
	if !strings.Contains(out, "machine_type=n1-standard-4 num_cpus=4") {
		t.Errorf("expected metadata line in output:\n%s", out)
	}
}
