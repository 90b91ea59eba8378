package vm

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestTarFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpu2006v1.2.tgz")
	content := []byte("archive payload")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	r, err := tarFile(path)
	if err != nil {
		t.Fatalf("tarFile: %v", err)
	}
	defer r.Close()

	tr := tar.NewReader(r)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("reading tar header: %v", err)
	}
	if hdr.Name != "cpu2006v1.2.tgz" {
		t.Errorf("entry name: got %q, want %q", hdr.Name, "cpu2006v1.2.tgz")
	}
	if hdr.Size != int64(len(content)) {
		t.Errorf("entry size: got %d, want %d", hdr.Size, len(content))
	}
	data, err := io.ReadAll(tr)
	if err != nil {
		t.Fatalf("reading entry: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("entry content: got %q, want %q", data, content)
	}
	if _, err := tr.Next(); err != io.EOF {
		t.Errorf("expected a single entry, got %v", err)
	}
}

// The archive must stream through the pipe rather than being buffered up
// front, so payloads far larger than the pipe buffer round-trip intact.
func TestTarFileLargePayload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpu2006v1.2.tgz")
	content := bytes.Repeat([]byte("0123456789abcdef"), 1<<16) // 1 MiB
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	r, err := tarFile(path)
	if err != nil {
		t.Fatalf("tarFile: %v", err)
	}
	defer r.Close()

	tr := tar.NewReader(r)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("reading tar header: %v", err)
	}
	if hdr.Size != int64(len(content)) {
		t.Errorf("entry size: got %d, want %d", hdr.Size, len(content))
	}
	data, err := io.ReadAll(tr)
	if err != nil {
		t.Fatalf("reading entry: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("entry content mismatch: got %d bytes, want %d", len(data), len(content))
	}
}
