package interactive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adamancini/tether/internal/update"
)

func TestPrompterPrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Response
	}{
		{"yes lowercase", "y\n", ResponseYes},
		{"yes full", "yes\n", ResponseYes},
		{"yes uppercase", "Y\n", ResponseYes},
		{"yes with spaces", "  yes  \n", ResponseYes},
		{"no lowercase", "n\n", ResponseNo},
		{"no full", "no\n", ResponseNo},
		{"empty defaults to no", "\n", ResponseNo},
		{"invalid defaults to no", "maybe\n", ResponseNo},
		{"EOF defaults to no", "", ResponseNo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := strings.NewReader(tt.input)
			out := &bytes.Buffer{}
			p := NewPrompterWithIO(in, out)

			got := p.prompt("Test prompt")
			if got != tt.want {
				t.Errorf("prompt() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Errorf("prompt output missing choices: %q", out.String())
			}
		})
	}
}

func TestConfirmUpdate(t *testing.T) {
	tests := []struct {
		name        string
		info        update.Info
		input       string
		want        bool
		wantOutput  []string
		avoidOutput []string
	}{
		{
			name: "upgrade accepted",
			info: update.Info{
				CurrentVersion: "1.0.0",
				LatestVersion:  "1.1.0",
				Direction:      update.DirectionUpgrade,
				ReleaseNotes:   "Faster startup\nFixed crash",
			},
			input:       "y\n",
			want:        true,
			wantOutput:  []string{"+ 1.0.0 -> 1.1.0 (upgrade)", "Release notes:", "  Fixed crash", "Install 1.1.0?"},
			avoidOutput: []string{"Warning", "Aborted"},
		},
		{
			name: "downgrade warned",
			info: update.Info{
				CurrentVersion: "2.0.0",
				LatestVersion:  "1.9.0",
				Direction:      update.DirectionDowngrade,
			},
			input:       "yes\n",
			want:        true,
			wantOutput:  []string{"- 2.0.0 -> 1.9.0 (downgrade)", "Warning: 1.9.0 is older"},
			avoidOutput: []string{"Release notes"},
		},
		{
			name: "declined",
			info: update.Info{
				CurrentVersion: "build-41",
				LatestVersion:  "build-42",
				Direction:      update.DirectionChanged,
			},
			input:      "n\n",
			want:       false,
			wantOutput: []string{"~ build-41 -> build-42 (change)", "Aborted."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			p := NewPrompterWithIO(strings.NewReader(tt.input), out)

			if got := p.ConfirmUpdate(&tt.info); got != tt.want {
				t.Errorf("ConfirmUpdate() = %v, want %v", got, tt.want)
			}

			for _, s := range tt.wantOutput {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output missing %q:\n%s", s, out.String())
				}
			}
			for _, s := range tt.avoidOutput {
				if strings.Contains(out.String(), s) {
					t.Errorf("output should not contain %q:\n%s", s, out.String())
				}
			}
		})
	}
}

func TestDirectionSymbolVerb(t *testing.T) {
	tests := []struct {
		direction  update.Direction
		wantSymbol string
		wantVerb   string
	}{
		{update.DirectionUpgrade, "+", "upgrade"},
		{update.DirectionDowngrade, "-", "downgrade"},
		{update.DirectionChanged, "~", "change"},
		{update.DirectionNone, " ", "no change"},
	}

	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			symbol, verb := directionSymbolVerb(tt.direction)
			if symbol != tt.wantSymbol || verb != tt.wantVerb {
				t.Errorf("directionSymbolVerb(%s) = (%q, %q), want (%q, %q)", tt.direction, symbol, verb, tt.wantSymbol, tt.wantVerb)
			}
		})
	}
}

func TestProgressLine(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewProgressLine(out, "tether-linux-amd64")

	for i := 0; i < 10; i++ {
		p.Chunk(100, 1000)
	}
	p.Done()

	got := out.String()
	if !strings.Contains(got, "100% (1000 B/1000 B)") {
		t.Errorf("final progress missing:\n%q", got)
	}
	if !strings.Contains(got, " 10% (100 B/1000 B)") {
		t.Errorf("first progress missing:\n%q", got)
	}
	if strings.Count(got, "\r") != 10 {
		t.Errorf("expected 10 redraws, got %d", strings.Count(got, "\r"))
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("Done() should end the line")
	}
}

func TestProgressLineUnknownTotal(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewProgressLine(out, "tether")

	p.Chunk(2048, -1)
	if !strings.Contains(out.String(), "2.0 KiB") {
		t.Errorf("unknown total should print bytes, got %q", out.String())
	}
}

func TestProgressLineSkipsSamePercent(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewProgressLine(out, "tether")

	p.Chunk(1, 1000)
	p.Chunk(1, 1000)

	if strings.Count(out.String(), "\r") != 1 {
		t.Errorf("same percentage should not redraw: %q", out.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}
