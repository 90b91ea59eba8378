// Package speccpu prepares, runs and scores the SPEC CPU2006 suite on a
// single machine. The suite ships as a licensed tarball that must be staged
// locally before a run; see https://www.spec.org/cpu2006/.
package speccpu

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/cxg1987/specbench/internal/sample"
	"github.com/cxg1987/specbench/internal/vm"
)

const (
	Tarball    = "cpu2006v1.2.tgz"
	suiteDir   = "cpu2006"
	configFile = "linux64-x64-gcc47.cfg"

	// Only reference runs generate SPEC scores. The log id is hardcoded as
	// 001, which would change with different runspec parameters.
	intLog = "CINT2006.001.ref.txt"
	fpLog  = "CFP2006.001.ref.txt"
)

var toolchainPackages = []string{"build-essential", "gfortran"}

// Subset selects which suite variants to run and parse.
type Subset string

const (
	SubsetInt Subset = "int"
	SubsetFP  Subset = "fp"
	SubsetAll Subset = "all"
)

func ParseSubset(s string) (Subset, error) {
	switch Subset(s) {
	case SubsetInt, SubsetFP, SubsetAll:
		return Subset(s), nil
	}
	return "", fmt.Errorf("unknown benchmark subset %q (want int, fp or all)", s)
}

// LogFiles returns the result logs the subset produces, in parse order.
func (s Subset) LogFiles() []string {
	var logs []string
	if s == SubsetInt || s == SubsetAll {
		logs = append(logs, intLog)
	}
	if s == SubsetFP || s == SubsetAll {
		logs = append(logs, fpLog)
	}
	return logs
}

// PrepareError reports a missing suite archive. It fires before any remote
// state is touched, so there is nothing to clean up.
type PrepareError struct {
	Path string
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("suite archive %s not found; stage it before running", e.Path)
}

// Benchmark drives one end-to-end suite execution on one machine:
// Prepare, Run, Cleanup, strictly in that order, no retries.
type Benchmark struct {
	DataDir string
	Subset  Subset

	// Remote paths, set by Prepare and read by Run and Cleanup.
	tarPath string
	specDir string
}

// Prepare verifies the staged archive, installs the compiler toolchain and
// unpacks the suite into the machine's scratch directory.
func (b *Benchmark) Prepare(ctx context.Context, v vm.VM) error {
	local := filepath.Join(b.DataDir, Tarball)
	if _, err := os.Stat(local); err != nil {
		return &PrepareError{Path: local}
	}
	for _, pkg := range toolchainPackages {
		if err := v.InstallPackage(ctx, pkg); err != nil {
			return fmt.Errorf("installing %s: %w", pkg, err)
		}
	}
	scratch := v.ScratchDir()
	b.tarPath = path.Join(scratch, Tarball)
	b.specDir = path.Join(scratch, suiteDir)
	if _, err := v.RemoteCommand(ctx, "chmod 777 "+scratch); err != nil {
		return fmt.Errorf("opening scratch dir: %w", err)
	}
	if err := v.PushFile(ctx, local, scratch); err != nil {
		return fmt.Errorf("pushing suite archive: %w", err)
	}
	if _, err := v.RemoteCommand(ctx, fmt.Sprintf("cd %s && tar xvfz %s", scratch, Tarball)); err != nil {
		return fmt.Errorf("extracting suite archive: %w", err)
	}
	return nil
}

// Run executes the suite and parses its result logs into samples. The run
// command's own stdout is not parsed; scores come from the fixed-name logs
// under the suite's result directory.
func (b *Benchmark) Run(ctx context.Context, v vm.VM) ([]sample.Sample, error) {
	if b.specDir == "" {
		return nil, fmt.Errorf("run before prepare")
	}
	cmd := fmt.Sprintf("cd %s; . ./shrc; ./bin/relocate; . ./shrc; rm -rf result; "+
		"runspec --config=%s --tune=base --size=ref --noreportable -rate %d %s",
		b.specDir, configFile, v.NumCPUs(), b.Subset)
	if _, err := v.RemoteCommand(ctx, cmd); err != nil {
		return nil, fmt.Errorf("running suite: %w", err)
	}
	return b.ParseOutput(ctx, v)
}

// ParseOutput reads the result log for each selected subset from the machine
// and concatenates their samples in log-file order.
func (b *Benchmark) ParseOutput(ctx context.Context, v vm.VM) ([]sample.Sample, error) {
	if b.specDir == "" {
		return nil, fmt.Errorf("parse before prepare")
	}
	metadata := map[string]string{
		"machine_type": v.MachineType(),
		"num_cpus":     strconv.Itoa(v.NumCPUs()),
	}
	var samples []sample.Sample
	for _, log := range b.Subset.LogFiles() {
		out, err := v.RemoteCommand(ctx, fmt.Sprintf("cat %s/result/%s", b.specDir, log))
		if err != nil {
			return nil, fmt.Errorf("reading result log %s: %w", log, err)
		}
		parsed, err := ParseReport(out, metadata)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", log, err)
		}
		samples = append(samples, parsed...)
	}
	return samples, nil
}

// Cleanup removes the extracted suite and staged archive from the machine
// and uninstalls the toolchain packages Prepare installed.
func (b *Benchmark) Cleanup(ctx context.Context, v vm.VM) error {
	if b.specDir == "" {
		return fmt.Errorf("cleanup before prepare")
	}
	if _, err := v.RemoteCommand(ctx, "rm -rf "+b.specDir); err != nil {
		return fmt.Errorf("removing suite dir: %w", err)
	}
	if _, err := v.RemoteCommand(ctx, "rm -f "+b.tarPath); err != nil {
		return fmt.Errorf("removing suite archive: %w", err)
	}
	for _, pkg := range toolchainPackages {
		if err := v.UninstallPackage(ctx, pkg); err != nil {
			return fmt.Errorf("uninstalling %s: %w", pkg, err)
		}
	}
	return nil
}
