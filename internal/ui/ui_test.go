package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 4, 8, "░░░░░░░░   0%"},
		{2, 4, 8, "████░░░░  50%"},
		{4, 4, 8, "████████ 100%"},
		{0, 0, 5, "░░░░░   0%"},
		{1, 2, 1, "██░░░  50%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d, %d) = %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestPanelPadsToWidestLine(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	Panel(&buf, []string{"ab", "\033[32mlonger\033[0m"})

	want := strings.Join([]string{
		"+--------+",
		"| ab     |",
		"| \033[32mlonger\033[0m |",
		"+--------+",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("Panel output:\n%q\nwant:\n%q", got, want)
	}
}

func TestOKAndFailSkipColorOffTerminal(t *testing.T) {
	SetTheme("classic")
	var buf bytes.Buffer
	OK(&buf, "saved")
	Fail(&buf, "nope")
	if got, want := buf.String(), "✔ saved\n✖ nope\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSetThemeFallsBack(t *testing.T) {
	defer SetTheme("classic")
	SetTheme("unknown")
	if Current().Name != "classic" {
		t.Errorf("expected classic, got %q", Current().Name)
	}
	SetTheme("NEON")
	if Current().BoxChecked != "◼" {
		t.Errorf("expected neon box, got %q", Current().BoxChecked)
	}
}

func TestColorForcing(t *testing.T) {
	SetTheme("classic")
	defer SetColorForcing(false, false)

	var buf bytes.Buffer
	SetColorForcing(true, false)
	OK(&buf, "saved")
	if got, want := buf.String(), "\033[32m✔ saved\033[0m\n"; got != want {
		t.Errorf("forced: got %q, want %q", got, want)
	}

	buf.Reset()
	SetColorForcing(true, true)
	OK(&buf, "saved")
	if got, want := buf.String(), "✔ saved\n"; got != want {
		t.Errorf("disabled wins: got %q, want %q", got, want)
	}
}

func TestIsTheme(t *testing.T) {
	for _, name := range Themes {
		if !IsTheme(name) {
			t.Errorf("IsTheme(%q) = false", name)
		}
	}
	if !IsTheme("Mono") {
		t.Error("theme names are case-insensitive")
	}
	if IsTheme("sepia") {
		t.Error("IsTheme(sepia) = true")
	}
}
