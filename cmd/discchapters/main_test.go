package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"discchapters/internal/report"
)

// writePlaylist writes a one-item playlist of total seconds with marks evenly
// spaced entry marks.
func writePlaylist(t *testing.T, path string, total float64, marks int) {
	t.Helper()
	be := binary.BigEndian
	ticks := func(s float64) uint32 { return uint32(s * 45000) }

	var list []byte
	list = be.AppendUint16(list, 0)
	list = be.AppendUint16(list, 1)
	list = be.AppendUint16(list, 0)
	item := make([]byte, 22)
	be.PutUint16(item[0:], 20)
	copy(item[2:], "00000M2TS")
	be.PutUint32(item[18:], ticks(total))
	list = append(list, item...)

	var markSec []byte
	markSec = be.AppendUint16(markSec, uint16(marks))
	for i := 0; i < marks; i++ {
		rec := make([]byte, 14)
		rec[1] = 1
		be.PutUint32(rec[4:], ticks(total*float64(i)/float64(marks)))
		be.PutUint16(rec[8:], 0xFFFF)
		markSec = append(markSec, rec...)
	}

	out := []byte("MPLS0200")
	out = be.AppendUint32(out, 20)
	out = be.AppendUint32(out, uint32(24+len(list)))
	out = be.AppendUint32(out, 0)
	out = be.AppendUint32(out, uint32(len(list)))
	out = append(out, list...)
	out = be.AppendUint32(out, uint32(len(markSec)))
	out = append(out, markSec...)
	writeFile(t, path, out)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type cliTestEnv struct {
	discRoot   string
	configPath string
	cachePath  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("DISCCHAPTERS_LOG_LEVEL", "")

	env := &cliTestEnv{
		discRoot:   filepath.Join(base, "disc"),
		configPath: filepath.Join(base, "config.toml"),
		cachePath:  filepath.Join(base, "cache", "chapters.db"),
	}
	writePlaylist(t, filepath.Join(env.discRoot, "BDMV", "PLAYLIST", "00000.mpls"), 600, 4)
	writePlaylist(t, filepath.Join(env.discRoot, "BDMV", "PLAYLIST", "00001.mpls"), 120, 2)
	writeFile(t, filepath.Join(env.discRoot, "VIDEO_TS", "VTS_01_0.IFO"), []byte("short"))

	content := fmt.Sprintf("[logging]\nlevel = \"warn\"\n\n[cache]\nenabled = true\npath = %q\n", env.cachePath)
	writeFile(t, env.configPath, []byte(content))
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestShowDefaultsToTSVWhenPiped(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"show", env.discRoot}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != report.TSVHeader {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 chapters, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[4], "4\t00:02:30.00\t00:10:00.00\t") {
		t.Fatalf("unexpected last row %q", lines[4])
	}
}

func TestShowTableIncludesSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	playlist := filepath.Join(env.discRoot, "BDMV", "PLAYLIST", "00000.mpls")

	out, _, err := runCLI(t, []string{"show", playlist, "--format", "table"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "00000.mpls - (Blu-ray) Items: 1   Marks: 4   Duration: 00:10:00.00")
	requireContains(t, out, "Cumulative")
}

func TestShowRowSelection(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"show", env.discRoot, "--rows", "2-3"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "2\t") || !strings.HasPrefix(lines[2], "3\t") {
		t.Fatalf("unexpected selection output:\n%s", out)
	}

	_, _, err = runCLI(t, []string{"show", env.discRoot, "--rows", "9"}, env.configPath)
	if !errors.Is(err, report.ErrBadSelection) {
		t.Fatalf("expected ErrBadSelection, got %v", err)
	}
}

func TestShowJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"show", env.discRoot, "-f", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if rep.Kind != "Blu-ray" || len(rep.Rows) != 4 || rep.Marks != 4 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestShowRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"show", env.discRoot, "--format", "xml"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestScanReportsEveryFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"scan", env.discRoot, "--workers", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 files, got:\n%s", out)
	}
	requireContains(t, lines[1], "00000.mpls\tBlu-ray\t4\t00:10:00.00\tok")
	requireContains(t, lines[3], "VTS_01_0.IFO\tDVD\t-\t-\t")
}

func TestCacheListAndClear(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"show", env.discRoot}, env.configPath); err != nil {
		t.Fatalf("show: %v", err)
	}
	out, _, err := runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "00000.mpls\tBlu-ray\t4\t")

	out, _, err = runCLI(t, []string{"scan", env.discRoot}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "ok (cached)")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 2 cached result(s)")
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.configPath)
	requireContains(t, out, "enabled = true")
}

func TestLogLevelFlagValidated(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"--log-level", "loud", "show", env.discRoot}, env.configPath); err == nil {
		t.Fatal("expected invalid log level to fail")
	}
}

func TestTruncateLeft(t *testing.T) {
	if got := truncateLeft("00000.mpls", 40); got != "00000.mpls" {
		t.Fatalf("short value changed: %q", got)
	}
	long := strings.Repeat("a", 30) + "00000.mpls"
	if got := truncateLeft(long, 12); got != "...0000.mpls" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLeft(long, 3); len(got) != 10 {
		t.Fatalf("expected minimum width of 10, got %q", got)
	}

	accented := strings.Repeat("é", 20) + ".mpls"
	got := truncateLeft(accented, 12)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got)
	}
	if got != "..."+strings.Repeat("é", 4)+".mpls" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
