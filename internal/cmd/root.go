package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/tether/internal/config"
	"github.com/adamancini/tether/internal/logging"
	"github.com/adamancini/tether/internal/output"
)

var (
	// Global flags
	outputFormat string
	configPath   string
	logFile      string
	verbose      bool
	quiet        bool
)

// BuildInfo is the version stamped into the binary at link time.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

var buildInfo = BuildInfo{Version: "dev", Commit: "none", Date: "unknown"}

// Execute runs the tether CLI.
func Execute(info BuildInfo) error {
	return newRootCmd(info).Execute()
}

func newRootCmd(info BuildInfo) *cobra.Command {
	buildInfo = info

	rootCmd := &cobra.Command{
		Use:   "tether",
		Short: "Host launcher for a bundled sidecar with self-update",
		Long: `tether starts the bundled sidecar executable and keeps itself up to date.

On start it launches the sidecar next to the binary, then checks the configured
update source in the background and, when a different version is offered,
downloads it, installs it over the running binary and relaunches.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := output.ParseFormat(outputFormat); err != nil {
				return err
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to tether config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log to this file instead of stderr (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion function for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return output.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// loadConfig resolves the config file and configures logging from it.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.Resolve(configPath)
	if err != nil {
		return nil, "", err
	}

	file := cfg.Log.File
	if logFile != "" {
		file = logFile
	}
	if err := logging.Init(logging.Options{
		Level:   cfg.Log.Level,
		File:    file,
		Verbose: verbose,
		Quiet:   quiet,
	}); err != nil {
		return nil, "", fmt.Errorf("failed to initialize logging: %w", err)
	}

	return cfg, path, nil
}

// newWriter returns an output writer for the global -o flag.
func newWriter(w io.Writer) *output.Writer {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		format = output.FormatText
	}
	return output.NewWriter(w, format)
}
