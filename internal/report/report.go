package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cxg1987/specbench/internal/sample"
)

type MetricSummary struct {
	Metric    string  `json:"metric"`
	Runs      int     `json:"runs"`
	MeanScore float64 `json:"mean_score"`
	MinScore  float64 `json:"min_score"`
	MaxScore  float64 `json:"max_score"`
}

// Generate reads stored samples under resultsDir and produces a per-metric
// summary across runs.
func Generate(resultsDir, format string, w io.Writer) error {
	samples, err := collectSamples(resultsDir)
	if err != nil {
		return err
	}

	summaries := aggregate(samples)

	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func collectSamples(resultsDir string) ([]sample.Sample, error) {
	var samples []sample.Sample
	err := filepath.Walk(resultsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Name() == "samples.json" {
			parsed, err := sample.ReadSamples(path)
			if err != nil {
				return nil
			}
			samples = append(samples, parsed...)
		}
		return nil
	})
	return samples, err
}

func aggregate(samples []sample.Sample) []MetricSummary {
	type accum struct {
		count int
		sum   float64
		min   float64
		max   float64
	}
	byMetric := map[string]*accum{}

	for _, s := range samples {
		a, ok := byMetric[s.Metric]
		if !ok {
			a = &accum{min: s.Value, max: s.Value}
			byMetric[s.Metric] = a
		}
		a.count++
		a.sum += s.Value
		if s.Value < a.min {
			a.min = s.Value
		}
		if s.Value > a.max {
			a.max = s.Value
		}
	}

	var summaries []MetricSummary
	for metric, a := range byMetric {
		summaries = append(summaries, MetricSummary{
			Metric:    metric,
			Runs:      a.count,
			MeanScore: a.sum / float64(a.count),
			MinScore:  a.min,
			MaxScore:  a.max,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Metric < summaries[j].Metric
	})
	return summaries
}

func writeTable(summaries []MetricSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tRUNS\tMEAN\tMIN\tMAX")
	fmt.Fprintln(tw, strings.Repeat("-", 60))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\n",
			s.Metric, s.Runs, s.MeanScore, s.MinScore, s.MaxScore)
	}
	return tw.Flush()
}

func writeMarkdown(summaries []MetricSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Metric | Runs | Mean | Min | Max |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %d | %.2f | %.2f | %.2f |\n",
			s.Metric, s.Runs, s.MeanScore, s.MinScore, s.MaxScore)
	}
	return nil
}

func writeJSON(summaries []MetricSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

// PrintSamples writes one run's samples as a table, with the shared
// metadata on a trailing line.
func PrintSamples(w io.Writer, samples []sample.Sample) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE\tUNIT")
	for _, s := range samples {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", s.Metric, s.Value, s.Unit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(samples) > 0 && len(samples[0].Metadata) > 0 {
		keys := make([]string, 0, len(samples[0].Metadata))
		for k := range samples[0].Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, k+"="+samples[0].Metadata[k])
		}
		fmt.Fprintf(w, "metadata: %s\n", strings.Join(parts, " "))
	}
	return nil
}
