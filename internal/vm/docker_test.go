package vm_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cxg1987/specbench/internal/config"
	"github.com/cxg1987/specbench/internal/vm"
)

func TestDockerVM(t *testing.T) {
	if os.Getenv("SPECBENCH_DOCKER_TESTS") == "" {
		t.Skip("set SPECBENCH_DOCKER_TESTS=1 to run Docker tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	machine, err := vm.StartDocker(ctx, &config.DockerTarget{
		Image:       "alpine:latest",
		ScratchDir:  "/scratch",
		MachineType: "alpine:latest",
	})
	if err != nil {
		t.Fatalf("StartDocker: %v", err)
	}
	defer machine.Close()

	out, err := machine.RemoteCommand(ctx, "echo hello")
	if err != nil {
		t.Fatalf("RemoteCommand: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("output: got %q, want %q", out, "hello")
	}

	if _, err := machine.RemoteCommand(ctx, "false"); err == nil {
		t.Error("expected error for failing command")
	}

	local := filepath.Join(t.TempDir(), "payload.txt")
	if err := os.WriteFile(local, []byte("payload"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := machine.PushFile(ctx, local, machine.ScratchDir()); err != nil {
		t.Fatalf("PushFile: %v", err)
	}
	out, err = machine.RemoteCommand(ctx, "cat /scratch/payload.txt")
	if err != nil {
		t.Fatalf("reading pushed file: %v", err)
	}
	if out != "payload" {
		t.Errorf("pushed content: got %q, want %q", out, "payload")
	}
}
