package cmd

import "testing"

func TestParseMetadata(t *testing.T) {
	meta := parseMetadata("n1-standard-4", 4)
	if meta["machine_type"] != "n1-standard-4" {
		t.Errorf("machine_type: %q", meta["machine_type"])
	}
	if meta["num_cpus"] != "4" {
		t.Errorf("num_cpus: %q", meta["num_cpus"])
	}

	meta = parseMetadata("", 0)
	if meta["machine_type"] != "unknown" {
		t.Errorf("default machine_type: %q", meta["machine_type"])
	}
	if meta["num_cpus"] != "0" {
		t.Errorf("default num_cpus: %q", meta["num_cpus"])
	}
}
