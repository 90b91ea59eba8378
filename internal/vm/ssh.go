package vm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/cxg1987/specbench/internal/config"
)

// SSHVM drives an already-provisioned host over SSH. One session is opened
// per command; the connection itself is held for the VM's lifetime.
type SSHVM struct {
	client      *ssh.Client
	scratch     string
	machineType string
	numCPUs     int
}

func DialSSH(ctx context.Context, cfg *config.SSHTarget) (*SSHVM, error) {
	var auths []ssh.AuthMethod

	if cfg.KeyFile != "" {
		signer, err := loadSigner(cfg.KeyFile, cfg.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("load key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auths = append(auths, ssh.Password(cfg.Password))
	}
	// Try SSH agent if available
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			ag := agent.NewClient(conn)
			auths = append(auths, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	hostKeyCB, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	dialTimeout := time.Duration(cfg.DialTimeoutS) * time.Second
	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         dialTimeout,
	}

	target := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", target, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, target, clientCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", target, err)
	}

	v := &SSHVM{
		client:      ssh.NewClient(c, chans, reqs),
		scratch:     cfg.ScratchDir,
		machineType: cfg.MachineType,
	}
	if v.numCPUs, err = v.probeCPUs(ctx); err != nil {
		v.client.Close()
		return nil, err
	}
	return v, nil
}

func hostKeyCallback(cfg *config.SSHTarget) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	knownHostsPath := cfg.KnownHosts
	if knownHostsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving known_hosts: %w", err)
		}
		knownHostsPath = filepath.Join(home, ".ssh", "known_hosts")
	}
	if _, err := os.Stat(knownHostsPath); err != nil {
		return nil, fmt.Errorf("known_hosts file not found at %s and strict_host_key is enabled", knownHostsPath)
	}
	cb, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("known_hosts: %w", err)
	}
	return cb, nil
}

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(key)
}

func (v *SSHVM) probeCPUs(ctx context.Context) (int, error) {
	out, err := v.RemoteCommand(ctx, "nproc")
	if err != nil {
		return 0, fmt.Errorf("probing cpu count: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parsing cpu count %q: %w", out, err)
	}
	return n, nil
}

func (v *SSHVM) RemoteCommand(ctx context.Context, cmd string) (string, error) {
	type result struct {
		out []byte
		err error
	}

	sess, err := v.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("opening session: %w", err)
	}
	defer sess.Close()

	ch := make(chan result, 1)
	go func() {
		out, err := sess.CombinedOutput(cmd)
		ch <- result{out, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			var ee *ssh.ExitError
			if errors.As(r.err, &ee) {
				return string(r.out), fmt.Errorf("remote command %q exited %d: %s", cmd, ee.ExitStatus(), lastLine(r.out))
			}
			return string(r.out), fmt.Errorf("remote command %q: %w", cmd, r.err)
		}
		return string(r.out), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (v *SSHVM) PushFile(ctx context.Context, localPath, remoteDir string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	sess, err := v.client.NewSession()
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	defer sess.Close()
	sess.Stdin = f

	dest := path.Join(remoteDir, filepath.Base(localPath))
	if out, err := sess.CombinedOutput("cat > " + dest); err != nil {
		return fmt.Errorf("pushing %s to %s: %s: %w", localPath, dest, out, err)
	}
	return nil
}

func (v *SSHVM) InstallPackage(ctx context.Context, name string) error {
	_, err := v.RemoteCommand(ctx, "sudo DEBIAN_FRONTEND=noninteractive apt-get -qq -y install "+name)
	return err
}

func (v *SSHVM) UninstallPackage(ctx context.Context, name string) error {
	_, err := v.RemoteCommand(ctx, "sudo DEBIAN_FRONTEND=noninteractive apt-get -qq -y remove "+name)
	return err
}

func (v *SSHVM) ScratchDir() string { return v.scratch }

func (v *SSHVM) MachineType() string { return v.machineType }

func (v *SSHVM) NumCPUs() int { return v.numCPUs }

func (v *SSHVM) Close() error { return v.client.Close() }

func lastLine(out []byte) string {
	trimmed := strings.TrimRight(string(out), "\n")
	if i := strings.LastIndexByte(trimmed, '\n'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
