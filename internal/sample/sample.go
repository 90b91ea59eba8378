package sample

// Sample is one measured quantity destined for a metrics sink: either a
// suite aggregate score or a single sub-benchmark score.
type Sample struct {
	Metric   string            `json:"metric"`
	Value    float64           `json:"value"`
	Unit     string            `json:"unit"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RunMeta describes one benchmark run alongside its samples.
type RunMeta struct {
	MachineType string `json:"machine_type"`
	NumCPUs     int    `json:"num_cpus"`
	Subset      string `json:"subset"`
	DurationS   int    `json:"duration_s"`
}
