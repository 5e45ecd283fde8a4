package hostcli

import (
	"bufio"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestRepeat(t *testing.T) {
	if got := repeat('=', 5); got != "=====" {
		t.Errorf("repeat('=', 5) = %q, want %q", got, "=====")
	}
	if got := repeat('-', 0); got != "" {
		t.Errorf("repeat('-', 0) = %q, want empty string", got)
	}
}

// capture redirects stdout for the duration of fn and returns what was
// written to it, with color codes disabled so the text is deterministic.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	prevNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prevNoColor }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	prevStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = prevStdout }()

	fn()

	w.Close()
	var sb strings.Builder
	io.Copy(&sb, bufio.NewReader(r))
	return sb.String()
}

func TestBannerOutput(t *testing.T) {
	out := capture(t, func() { Banner("hello") })
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "=====" {
		t.Errorf("unexpected banner output: %q", out)
	}
}

func TestOKErrorWarnInfo(t *testing.T) {
	out := capture(t, func() { OK("value=%d", 7) })
	if strings.TrimSpace(out) != "value=7" {
		t.Errorf("OK output = %q", out)
	}

	out = capture(t, func() { Error("bad: %s", "oops") })
	if strings.TrimSpace(out) != "bad: oops" {
		t.Errorf("Error output = %q", out)
	}

	out = capture(t, func() { Warn("careful") })
	if strings.TrimSpace(out) != "careful" {
		t.Errorf("Warn output = %q", out)
	}

	out = capture(t, func() { Info("fyi") })
	if strings.TrimSpace(out) != "fyi" {
		t.Errorf("Info output = %q", out)
	}
}

func TestPromptNoTrailingNewline(t *testing.T) {
	out := capture(t, func() { Prompt("> ") })
	if out != "> " {
		t.Errorf("Prompt output = %q, want %q", out, "> ")
	}
}
