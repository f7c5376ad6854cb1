package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/apischema/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "apischema",
		Short: "Layered API resource schema compiler",
		Long: color.CyanString(`apischema - layered API resource schema compiler

apischema reads resource and validation schema files contributed by core,
feature and project code, merges them in layer order, validates the result
and generates one resource class per resource and api type.

Layers (lowest to highest precedence):
  • core     vendor code
  • feature  paths containing /SprykerFeature/
  • project  paths containing /Pyz/`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("dir", "d", ".", "Project directory holding apischema.yml")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewDebugCommand())
	rootCmd.AddCommand(NewClearCommand())
	rootCmd.AddCommand(NewWarmupCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the apischema version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			w := cmd.OutOrStdout()
			title := ui.Color(noColor, color.FgCyan, color.Bold)
			value := ui.Color(noColor, color.FgWhite)

			title.Fprint(w, "apischema version: ")
			value.Fprintln(w, Version)

			title.Fprint(w, "Git commit: ")
			value.Fprintln(w, GitCommit)

			title.Fprint(w, "Build date: ")
			value.Fprintln(w, BuildDate)

			title.Fprint(w, "Go version: ")
			value.Fprintln(w, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		ui.Color(noColor, color.FgRed, color.Bold).Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
