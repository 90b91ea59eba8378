// Package vm abstracts the machine a benchmark runs on. Implementations
// exist for real hosts reached over SSH and for local Docker containers;
// both expose the same blocking, single-owner primitives.
package vm

import (
	"context"
	"fmt"

	"github.com/cxg1987/specbench/internal/config"
)

type VM interface {
	// RemoteCommand runs a shell command on the machine and returns its
	// combined output. It blocks until the command finishes.
	RemoteCommand(ctx context.Context, cmd string) (string, error)
	// PushFile copies a local file into a directory on the machine.
	PushFile(ctx context.Context, localPath, remoteDir string) error
	InstallPackage(ctx context.Context, name string) error
	UninstallPackage(ctx context.Context, name string) error
	ScratchDir() string
	MachineType() string
	NumCPUs() int
	Close() error
}

// Connect establishes a VM for the configured target.
func Connect(ctx context.Context, target *config.Target) (VM, error) {
	switch target.Kind {
	case "ssh":
		return DialSSH(ctx, &target.SSH)
	case "docker":
		return StartDocker(ctx, &target.Docker)
	default:
		return nil, fmt.Errorf("unknown target kind %q", target.Kind)
	}
}
