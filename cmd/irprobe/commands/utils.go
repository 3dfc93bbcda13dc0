/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the irprobe commands. Provides configuration loading,
logging setup and rawData input acquisition used across command implementations.
*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/kleascm/irprobe/pkg/config"
	"github.com/kleascm/irprobe/pkg/logging"
	"github.com/kleascm/irprobe/pkg/rawdata"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// LoadConfig loads configuration from flags, the config file and environment
func (a *App) LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		a.v.Set("report.color", false)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogging creates the command logger; console output goes to the command's stderr
func (a *App) SetupLogging(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	lc := cfg.LoggerConfig()
	lc.Console = cmd.ErrOrStderr()
	lc.Colors = cfg.Report.Color && isTerminal(cmd.ErrOrStderr())

	logger, err := logging.NewLogger(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// readCapture parses the capture from exactly one of: the argument, --file or --stdin.
// It returns the capture and a label for where it came from.
func readCapture(cmd *cobra.Command, args []string) (*rawdata.Capture, string, error) {
	file, _ := cmd.Flags().GetString("file")
	stdin, _ := cmd.Flags().GetBool("stdin")

	sources := len(args)
	if file != "" {
		sources++
	}
	if stdin {
		sources++
	}
	switch {
	case sources == 0:
		return nil, "", fmt.Errorf("no capture given: pass a rawData argument, --file or --stdin")
	case sources > 1:
		return nil, "", fmt.Errorf("only one of a rawData argument, --file or --stdin may be given")
	}

	switch {
	case stdin:
		capture, err := rawdata.ParseReader(cmd.InOrStdin())
		return capture, "stdin", err
	case file != "":
		capture, err := rawdata.ParseFile(file)
		return capture, file, err
	default:
		capture, err := rawdata.Parse(args[0])
		return capture, "argument", err
	}
}

// isTerminal reports whether w is a terminal that accepts colour
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
}
