package vm

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"

	"github.com/cxg1987/specbench/internal/config"
)

// DockerVM runs the suite in a long-lived local container standing in for a
// provisioned host. Commands go through exec; file pushes use the archive
// copy API.
type DockerVM struct {
	cli         *client.Client
	containerID string
	scratch     string
	machineType string
	numCPUs     int
}

func StartDocker(ctx context.Context, cfg *config.DockerTarget) (*DockerVM, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	containerCfg := &container.Config{
		Image:  cfg.Image,
		Cmd:    []string{"sleep", "infinity"},
		Labels: map[string]string{"specbench": "true"},
	}
	initTrue := true
	hostCfg := &container.HostConfig{Init: &initTrue}
	numCPUs := cfg.CPUs
	if numCPUs > 0 {
		hostCfg.NanoCPUs = int64(numCPUs) * 1e9
	} else {
		numCPUs = runtime.NumCPU()
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("creating container: %w", err)
	}

	v := &DockerVM{
		cli:         cli,
		containerID: createResp.ID,
		scratch:     cfg.ScratchDir,
		machineType: cfg.MachineType,
		numCPUs:     numCPUs,
	}
	if _, err := cli.ContainerStart(ctx, createResp.ID, client.ContainerStartOptions{}); err != nil {
		v.Close()
		return nil, fmt.Errorf("starting container: %w", err)
	}
	if _, err := v.RemoteCommand(ctx, "mkdir -p "+v.scratch); err != nil {
		v.Close()
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	return v, nil
}

func (v *DockerVM) RemoteCommand(ctx context.Context, cmd string) (string, error) {
	execResp, err := v.cli.ExecCreate(ctx, v.containerID, client.ExecCreateOptions{
		Cmd:          []string{"sh", "-c", cmd},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("creating exec for %q: %w", cmd, err)
	}

	attach, err := v.cli.ExecAttach(ctx, execResp.ID, client.ExecAttachOptions{})
	if err != nil {
		return "", fmt.Errorf("attaching to exec for %q: %w", cmd, err)
	}
	defer attach.Close()

	var combined bytes.Buffer
	if _, err := stdcopy.StdCopy(&combined, &combined, attach.Reader); err != nil {
		return "", fmt.Errorf("reading output of %q: %w", cmd, err)
	}

	inspect, err := v.cli.ExecInspect(ctx, execResp.ID, client.ExecInspectOptions{})
	if err != nil {
		return "", fmt.Errorf("inspecting exec for %q: %w", cmd, err)
	}
	if inspect.ExitCode != 0 {
		return combined.String(), fmt.Errorf("command %q exited %d: %s", cmd, inspect.ExitCode, combined.String())
	}
	return combined.String(), nil
}

func (v *DockerVM) PushFile(ctx context.Context, localPath, remoteDir string) error {
	archive, err := tarFile(localPath)
	if err != nil {
		return err
	}
	defer archive.Close()
	if _, err := v.cli.CopyToContainer(ctx, v.containerID, client.CopyToContainerOptions{
		DestinationPath: remoteDir,
		Content:         archive,
	}); err != nil {
		return fmt.Errorf("copying %s to container: %w", localPath, err)
	}
	return nil
}

// tarFile wraps a single file in the tar stream the copy API expects. The
// archive is streamed, not buffered; the suite tarball runs to gigabytes.
func tarFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pr, pw := io.Pipe()
	go func() {
		defer f.Close()
		tw := tar.NewWriter(pw)
		hdr := &tar.Header{
			Name: filepath.Base(path),
			Mode: 0o644,
			Size: info.Size(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			pw.CloseWithError(fmt.Errorf("writing tar header: %w", err))
			return
		}
		if _, err := io.Copy(tw, f); err != nil {
			pw.CloseWithError(fmt.Errorf("archiving %s: %w", path, err))
			return
		}
		if err := tw.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("closing tar: %w", err))
			return
		}
		pw.Close()
	}()
	return pr, nil
}

func (v *DockerVM) InstallPackage(ctx context.Context, name string) error {
	_, err := v.RemoteCommand(ctx, "DEBIAN_FRONTEND=noninteractive apt-get -qq -y install "+name)
	return err
}

func (v *DockerVM) UninstallPackage(ctx context.Context, name string) error {
	_, err := v.RemoteCommand(ctx, "DEBIAN_FRONTEND=noninteractive apt-get -qq -y remove "+name)
	return err
}

func (v *DockerVM) ScratchDir() string { return v.scratch }

func (v *DockerVM) MachineType() string { return v.machineType }

func (v *DockerVM) NumCPUs() int { return v.numCPUs }

func (v *DockerVM) Close() error {
	_, err := v.cli.ContainerRemove(context.Background(), v.containerID, client.ContainerRemoveOptions{Force: true})
	closeErr := v.cli.Close()
	if err != nil {
		return fmt.Errorf("removing container: %w", err)
	}
	return closeErr
}
