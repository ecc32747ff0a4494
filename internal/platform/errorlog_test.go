package platform

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestErrorLogHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewErrorLogHandler(&buf, slog.LevelWarn))

	logger.Info("ignored")
	logger.With("command", "connect").Error("wg-quick failed", "target", "mullvad-se-sto", "error", errors.New("exit status 1"))

	line := buf.String()
	if strings.Contains(line, "ignored") {
		t.Fatalf("info record written to error log: %q", line)
	}
	re := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] ERROR wg-quick failed command=connect target=mullvad-se-sto error="exit status 1"\n$`)
	if !re.MatchString(line) {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestNewLoggerFansOut(t *testing.T) {
	var console, errLog bytes.Buffer
	logger := newLogger(&console, "error", &errLog)

	logger.Warn("server list missing")

	if console.Len() != 0 {
		t.Errorf("console got warn at error level: %q", console.String())
	}
	if !strings.Contains(errLog.String(), "WARN server list missing") {
		t.Errorf("error log = %q, want warn record", errLog.String())
	}
}

func TestOpenErrorLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mullvad", "error.log")
	for _, msg := range []string{"first\n", "second\n"} {
		f, err := OpenErrorLog(path)
		if err != nil {
			t.Fatal(err)
		}
		f.WriteString(msg)
		f.Close()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("log = %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelWarn,
		"loud":  slog.LevelWarn,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/.config/mullvad"); got != "/home/tester/.config/mullvad" {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/etc/wireguard"); got != "/etc/wireguard" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestOpenErrorLogUnwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "mullvad")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenErrorLog(filepath.Join(blocker, "error.log")); !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}
