// Package interactive provides terminal prompts and progress output for
// foreground updates.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/adamancini/tether/internal/update"
)

// Response represents the user's response to a prompt.
type Response int

const (
	ResponseYes Response = iota // Proceed with the update
	ResponseNo                  // Keep the running version
)

// Prompter handles interactive update confirmation.
type Prompter struct {
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// prompt displays a question and reads a yes/no answer. Anything but yes,
// including end of input, is no.
func (p *Prompter) prompt(format string, args ...interface{}) Response {
	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/N] ")

	if !p.scanner.Scan() {
		_, _ = fmt.Fprintln(p.out)
		return ResponseNo
	}

	switch strings.ToLower(strings.TrimSpace(p.scanner.Text())) {
	case "y", "yes":
		return ResponseYes
	default:
		return ResponseNo
	}
}

// ConfirmUpdate describes the offered version and asks whether to install it.
// Downgrades are called out before the question.
func (p *Prompter) ConfirmUpdate(info *update.Info) bool {
	symbol, verb := directionSymbolVerb(info.Direction)
	_, _ = fmt.Fprintf(p.out, "  %s %s -> %s (%s)\n", symbol, info.CurrentVersion, info.LatestVersion, verb)

	if notes := strings.TrimSpace(info.ReleaseNotes); notes != "" {
		_, _ = fmt.Fprintln(p.out, "\nRelease notes:")
		for _, line := range strings.Split(notes, "\n") {
			_, _ = fmt.Fprintf(p.out, "  %s\n", line)
		}
		_, _ = fmt.Fprintln(p.out)
	}

	if info.Direction == update.DirectionDowngrade {
		_, _ = fmt.Fprintf(p.out, "Warning: %s is older than the running version %s.\n", info.LatestVersion, info.CurrentVersion)
	}

	if p.prompt("Install %s?", info.LatestVersion) == ResponseYes {
		return true
	}
	_, _ = fmt.Fprintln(p.out, "Aborted.")
	return false
}

// Symbols for output
const (
	upgradeSymbol   = "+"
	downgradeSymbol = "-"
	changedSymbol   = "~"
)

// directionSymbolVerb returns the symbol and verb for a version change.
func directionSymbolVerb(d update.Direction) (symbol, verb string) {
	switch d {
	case update.DirectionUpgrade:
		return upgradeSymbol, "upgrade"
	case update.DirectionDowngrade:
		return downgradeSymbol, "downgrade"
	case update.DirectionChanged:
		return changedSymbol, "change"
	default:
		return " ", "no change"
	}
}
