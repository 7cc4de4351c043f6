package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// setupCLITestEnv isolates HOME and the working directory so no real
// configuration file is picked up, and returns the temp directory.
func setupCLITestEnv(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("WEBMFIX_LOG_LEVEL", "")
	t.Chdir(base)

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	return base
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// sampleRecording assembles a streamed WebM the way MediaRecorder writes
// it: EBML header, unknown-size Segment, Info, unknown-size Cluster.
func sampleRecording(duration float64, scale uint32) []byte {
	info := []byte{0x2A, 0xD7, 0xB1, 0x84} // TimecodeScale, 4 bytes
	info = binary.BigEndian.AppendUint32(info, scale)
	info = append(info, 0x44, 0x89, 0x88) // Duration, 8 bytes
	info = binary.BigEndian.AppendUint64(info, math.Float64bits(duration))

	buf := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x87, 0x42, 0x82, 0x84, 'w', 'e', 'b', 'm'}
	buf = append(buf, 0x18, 0x53, 0x80, 0x67, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
	buf = append(buf, 0x15, 0x49, 0xA9, 0x66, byte(0x80|len(info)))
	buf = append(buf, info...)
	buf = append(buf, 0x1F, 0x43, 0xB6, 0x75, 0xFF, 0xE7, 0x81, 0x00, 0xA3, 0x81, 0x00)
	return buf
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
