/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pronto.go
Description: Pronto conversion command. Converts a rawData capture into a learned Pronto
hex code for a carrier frequency.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/irprobe/pkg/pronto"
	"github.com/kleascm/irprobe/pkg/utils"
	"github.com/spf13/cobra"
)

// prontoResult is the saved form of one conversion
type prontoResult struct {
	Source  string         `json:"source"`
	Timings []int          `json:"timings"`
	Options pronto.Options `json:"options"`
	Code    string         `json:"code"`
	Detail  *pronto.Code   `json:"detail"`
}

// RunPronto converts one capture and prints the Pronto code
func (a *App) RunPronto(cmd *cobra.Command, args []string) error {
	cfg, err := a.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := a.SetupLogging(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	capture, source, err := readCapture(cmd, args)
	if err != nil {
		return err
	}

	opts := cfg.ProntoOptions()
	opts.Repeat, _ = cmd.Flags().GetBool("repeat")
	opts.Unmodulated, _ = cmd.Flags().GetBool("unmodulated")
	verbose, _ := cmd.Flags().GetBool("verbose")

	code, err := pronto.Convert(capture.Timings, opts)
	if err != nil {
		return fmt.Errorf("pronto conversion failed: %w", err)
	}
	logger.LogPronto(opts.Hertz, len(code.Durations)/2, code.Padded, map[string]interface{}{"source": source})

	out := cmd.OutOrStdout()
	if verbose {
		fmt.Fprintf(out, "Found %d timing entries.\n", len(capture.Timings))
		if code.Padded {
			fmt.Fprintf(out, "Added a trailing space of %d uSecs.\n", opts.EndSpace)
		}
		fmt.Fprintf(out, "Pronto frequency is %X (%d Hz).\n", code.Carrier, opts.Hertz)
		fmt.Fprintf(out, "Pronto period is %f uSecs.\n", code.Period)
	}
	fmt.Fprintf(out, "Pronto code = '%s'\n", code)

	if saveDir, _ := cmd.Flags().GetString("save-dir"); saveDir != "" {
		path, err := utils.WriteResult(saveDir, "pronto", a.version, prontoResult{
			Source:  source,
			Timings: capture.Timings,
			Options: opts,
			Code:    code.String(),
			Detail:  code,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
	}

	return nil
}
