package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckBinariesMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{
		Name:    "Nonexistent",
		Command: "hermes-test-no-such-binary",
	}})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("missing binary reported available")
	}
	if statuses[0].Detail == "" {
		t.Fatal("missing binary should carry a detail message")
	}
}

func TestCheckBinariesUnconfigured(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "Empty", Command: "  "}})
	if statuses[0].Available || statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected status: %+v", statuses[0])
	}
}

func TestCheckBinariesFound(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture binary is a shell script")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "fakeenc")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	statuses := CheckBinaries([]Requirement{{Name: "FakeEnc", Command: "fakeenc"}})
	if !statuses[0].Available {
		t.Fatalf("expected binary to be found: %+v", statuses[0])
	}
	if statuses[0].Command != bin {
		t.Fatalf("expected resolved path %q, got %q", bin, statuses[0].Command)
	}
}

func TestFFmpegDefaultsCommand(t *testing.T) {
	status := FFmpeg("")
	if status.Name != "FFmpeg" {
		t.Fatalf("unexpected status: %+v", status)
	}
}
