package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitDisabledDiscards(t *testing.T) {
	var out bytes.Buffer
	if err := Init(Options{Enabled: false, Writer: &out}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	L.Error("should vanish")
	if out.Len() != 0 {
		t.Fatalf("disabled logger wrote %q", out.String())
	}
}

func TestInitTextWriter(t *testing.T) {
	var out bytes.Buffer
	if err := Init(Options{Enabled: true, Writer: &out, Level: slog.LevelDebug}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Init(Options{}) })

	L.Debug("scan", "offset", 4010)
	if !strings.Contains(out.String(), "offset=4010") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestInitJSONLevelFilter(t *testing.T) {
	var out bytes.Buffer
	if err := Init(Options{Enabled: true, Writer: &out, JSON: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Init(Options{}) })

	L.Debug("hidden")
	L.Info("shown", "k", "v")
	got := out.String()
	if strings.Contains(got, "hidden") {
		t.Fatalf("debug record passed the info level: %q", got)
	}
	if !strings.Contains(got, `"msg":"shown"`) || !strings.Contains(got, `"k":"v"`) {
		t.Fatalf("unexpected JSON output %q", got)
	}
}

func TestInitLogDirRetention(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, logPrefix+time.Now().AddDate(0, 0, -retentionDays-1).Format("2006-01-02")+logSuffix)
	unrelated := filepath.Join(dir, "keep.txt")
	for _, p := range []string{stale, unrelated} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", p, err)
		}
	}

	if err := Init(Options{Enabled: true, LogDir: dir}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Init(Options{}) })
	L.Info("hello")

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale log not removed: %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(today)
	if err != nil {
		t.Fatalf("today's log missing: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file content %q", data)
	}
}
