package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/tether/internal/config"
	"github.com/adamancini/tether/internal/output"
)

const redacted = "********"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the tether configuration",
		Long: `Inspect the configuration tether resolves at startup.

Config files are searched in this order:
  --config flag, $TETHER_CONFIG, the executable's directory,
  $XDG_CONFIG_HOME/tether, ~/.tether

Accepted names are tether.yaml, tether.yml, tether.toml and tether.json.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath(cmd.OutOrStdout())
		},
	})

	return cmd
}

func runConfigShow(out io.Writer) error {
	cfg, _, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	shown := *cfg
	if shown.Update.GitHub.Token != "" {
		shown.Update.GitHub.Token = redacted
	}

	w := newWriter(out)
	if w.Format() == output.FormatText {
		// Text mode shows the config as YAML, the documented file format
		w = output.NewWriter(out, output.FormatYAML)
	}
	return w.Write(shown)
}

func runConfigPath(out io.Writer) error {
	path, err := config.Find(configPath)
	if err != nil {
		return err
	}
	if path == "" {
		_, _ = fmt.Fprintln(out, "no config file found, using defaults")
		return nil
	}
	_, err = fmt.Fprintln(out, path)
	return err
}
