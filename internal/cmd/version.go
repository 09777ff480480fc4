package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adamancini/tether/internal/app"
	"github.com/adamancini/tether/internal/config"
	"github.com/adamancini/tether/internal/interactive"
	"github.com/adamancini/tether/internal/output"
	"github.com/adamancini/tether/internal/update"
)

var (
	checkOnly bool
	doUpdate  bool
	assumeYes bool
)

func (b BuildInfo) String() string {
	return fmt.Sprintf("tether version %s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information and check for updates",
		Long: `Display the current tether version and optionally check for or install updates.

Any version different from the running one is offered, including older ones.

Examples:
  tether version                # Show current version
  tether version --check        # Check what the update source offers
  tether version --update       # Download and install the offered version
  tether version --update --yes # Install without asking`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Check for updates without installing")
	cmd.Flags().BoolVar(&doUpdate, "update", false, "Update to the offered version")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runVersion(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	w := newWriter(out)

	// If no flags, just show version
	if !checkOnly && !doUpdate {
		return w.Write(buildInfo)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	checker, err := app.NewChecker(buildInfo.Version, cfg.Update)
	if err != nil {
		return fmt.Errorf("no update source configured: %w", err)
	}

	if checkOnly {
		return runCheck(ctx, out, w, checker)
	}

	if buildInfo.Version == update.DevVersion && !cfg.Update.AllowDev {
		return fmt.Errorf("dev builds are not updated unless update.allow_dev is set")
	}
	return performUpdate(ctx, out, cfg, checker)
}

func runCheck(ctx context.Context, out io.Writer, w *output.Writer, checker update.Checker) error {
	info, err := checker.CheckForUpdate(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	if err := w.WriteFields(info, infoFields(info)); err != nil {
		return err
	}

	if w.Format() == output.FormatText && info.Available {
		_, _ = fmt.Fprintf(out, "\nRun 'tether version --update' to install\n")
	}
	return nil
}

func infoFields(info *update.Info) output.Fields {
	status := "up to date"
	if info.Available {
		status = fmt.Sprintf("%s available", info.Direction)
	}
	return output.Fields{
		{Label: "Current version", Value: info.CurrentVersion},
		{Label: "Offered version", Value: info.LatestVersion},
		{Label: "Status", Value: status},
		{Label: "Download", Value: info.AssetURL},
		{Label: "Release", Value: info.ReleaseURL},
		{Label: "Release notes", Value: info.ReleaseNotes},
	}
}

func performUpdate(ctx context.Context, out io.Writer, cfg *config.Config, checker update.Checker) error {
	installer, err := update.NewSelfReplacer()
	if err != nil {
		return err
	}

	opts, err := app.SupervisorOptions(cfg.Update)
	if err != nil {
		return err
	}

	declined := false
	var progress *interactive.ProgressLine
	opts = append(opts, update.WithConfirm(func(info *update.Info) bool {
		if !assumeYes && interactive.IsTerminal() {
			if !interactive.NewPrompterWithIO(os.Stdin, out).ConfirmUpdate(info) {
				declined = true
				return false
			}
		}
		if isTerminalWriter(out) {
			progress = interactive.NewProgressLine(out, info.AssetName)
		}
		return true
	}))
	opts = append(opts,
		update.WithChunkObserver(func(n, total int64) {
			if progress != nil {
				progress.Chunk(n, total)
			}
		}),
		update.WithDownloadComplete(func() {
			if progress != nil {
				progress.Done()
			}
		}),
	)

	// A foreground update leaves restarting to the user
	restarter := update.RestarterFunc(func() error { return nil })

	supervisor := update.New(buildInfo.Version, checker, update.NewHTTPDownloader(), installer, restarter, opts...)
	res := supervisor.Run(ctx)

	switch {
	case res.Err != nil:
		return fmt.Errorf("update failed: %w", res.Err)
	case declined:
		return nil
	case res.State == update.StateUpToDate:
		_, _ = fmt.Fprintln(out, "Already running the offered version")
		return nil
	}

	_, _ = fmt.Fprintf(out, "Installed %s to %s\n", res.Info.LatestVersion, installer.Target())
	_, _ = fmt.Fprintln(out, "Restart tether to use the new version")
	return nil
}

// isTerminalWriter reports whether w is a terminal, for the progress line.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
