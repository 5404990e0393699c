package hisn

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execRoot(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hisn.db")
	for i := 0; i < 2; i++ {
		if _, err := execRoot(t, "--db", path, "init"); err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "hisn.yaml")); err != nil {
		t.Fatalf("expected default config next to db: %v", err)
	}
}

func TestZikrCountAndProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hisn.db")
	out, err := execRoot(t, "--db", path, "zikr", "count", "m2", "--times", "5")
	if err != nil {
		t.Fatalf("zikr count: %v", err)
	}
	if !strings.Contains(out, "3/3") || !strings.Contains(out, "Completed") {
		t.Fatalf("expected completed 3/3, got %q", out)
	}
	zikrTimes = 1

	out, err = execRoot(t, "--db", path, "progress")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !strings.Contains(out, "Completed: 1/11") {
		t.Fatalf("unexpected progress output %q", out)
	}
}

func TestDataClearRequiresConfirmation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hisn.db")
	if _, err := execRoot(t, "--db", path, "data", "clear"); err == nil {
		t.Fatalf("expected clear without --yes to fail")
	}
}

func TestDoctorPassesAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hisn.db")
	if _, err := execRoot(t, "--db", path, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := execRoot(t, "--db", path, "doctor")
	if err != nil {
		t.Fatalf("doctor on fresh db: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Corrupt records: none") {
		t.Fatalf("unexpected doctor output %q", out)
	}
}
