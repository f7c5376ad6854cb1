package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/apischema/internal/cli/config"
	"github.com/conduit-lang/apischema/internal/cli/ui"
	"github.com/conduit-lang/apischema/internal/pipeline"
)

// env is what every command works with once configuration is loaded
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
	noColor bool
}

// loadEnv reads the configuration from the --dir flag and builds the logger
func loadEnv(cmd *cobra.Command) (*env, error) {
	dir, _ := cmd.Flags().GetString("dir")
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor {
		color.NoColor = true
	}

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err, noColor))
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		logger:  newLogger(cfg),
		out:     cmd.OutOrStdout(),
		noColor: noColor,
	}
	e.logger.Debug("configuration loaded",
		zap.String("file", cfg.File),
		zap.Strings("source_directories", cfg.SourceDirectories),
		zap.String("generated_dir", cfg.GeneratedDir),
	)
	return e, nil
}

// newLogger is replaced in tests to observe command logging
var newLogger = func(cfg *config.Config) *zap.Logger {
	return cfg.NewLogger()
}

func (e *env) orchestrator(opts ...pipeline.Option) (*pipeline.Orchestrator, error) {
	opts = append([]pipeline.Option{pipeline.WithLogger(e.logger)}, opts...)
	return pipeline.New(e.cfg.Pipeline(), opts...)
}

// resolveAPIType matches requested against the configured api types. An
// unknown type is offered as a choice when prompting is allowed.
func (e *env) resolveAPIType(requested string, interactive bool) (string, error) {
	if apiType, ok := e.cfg.ResolveAPIType(requested); ok {
		return apiType, nil
	}

	if interactive {
		choice, err := askAPIType(
			fmt.Sprintf("Api type %q is not configured. Choose one:", requested),
			e.cfg.APITypes,
			ui.FindBestMatch(requested, e.cfg.APITypes, nil),
		)
		if err != nil {
			return "", err
		}
		return choice, nil
	}

	fmt.Fprint(e.out, ui.APITypeNotFoundError(requested, e.cfg.APITypes, e.noColor))
	return "", fmt.Errorf("api type %q is not configured (configured: %s)", requested, strings.Join(e.cfg.APITypes, ", "))
}

// askAPIType prompts for one of options; replaced in tests
var askAPIType = func(message string, options []string, suggested string) (string, error) {
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if suggested != "" {
		prompt.Default = suggested
	}

	var choice string
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}
