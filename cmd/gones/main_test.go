package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestROM(t *testing.T) string {
	t.Helper()
	rom := make([]byte, 16+16*1024+8*1024)
	copy(rom[0:4], []byte("NES\x1A"))
	rom[4] = 1
	rom[5] = 1
	path := filepath.Join(t.TempDir(), "test.nes")
	if err := os.WriteFile(path, rom, 0644); err != nil {
		t.Fatalf("failed to write test ROM: %v", err)
	}
	return path
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	if !names["run"] || !names["rom-info"] {
		t.Fatalf("expected run and rom-info subcommands, got %v", names)
	}
}

func TestRomInfoCommandRunsAgainstValidROM(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"rom-info", writeTestROM(t)})
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandHeadlessCompletesWithoutError(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"run", "--nogui", "--frames", "2", writeTestROM(t)})
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
