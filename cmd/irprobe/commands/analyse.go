/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyse.go
Description: Capture analysis command. Parses a rawData declaration, infers the protocol
timings, decodes the capture and renders the report, optionally with a C++ code outline
and an on-disk archive of the report in every format.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/irprobe/pkg/codegen"
	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/kleascm/irprobe/pkg/logging"
	"github.com/kleascm/irprobe/pkg/reporting"
	"github.com/kleascm/irprobe/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RunAnalyse analyses one capture and writes the report
func (a *App) RunAnalyse(cmd *cobra.Command, args []string) error {
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
	if capture.LengthMismatch() {
		logger.GetLogger().WithFields(logrus.Fields{
			"declared": capture.DeclaredLength,
			"found":    len(capture.Timings),
		}).Warn("Declared array length does not match the number of values")
	}

	format, err := reporting.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}

	// Anomalies go through the logger's anomaly helper, everything else through the event sink
	events := logging.NewEventSink(logger.GetLogger(), logrus.Fields{"source": source})
	sink := inference.SinkFunc(func(event inference.Event) {
		if event.Kind == inference.EventAnomaly {
			position, _ := event.Fields["position"].(int)
			usecs, _ := event.Fields["usecs"].(int)
			logger.LogAnomaly(position, usecs, event.Message, map[string]interface{}{"source": source})
			return
		}
		events.Emit(event)
	})

	analysis, err := inference.Analyze(capture.Timings, cfg.Analysis.Margin, sink)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logger.LogAnalysis(analysis.Fingerprint.Short(), analysis.Trace.TotalBits(),
		len(analysis.Trace.Anomalies()), analysis.Duration, map[string]interface{}{"source": source})

	var skeleton *codegen.Skeleton
	if cfg.Analysis.GenerateCode {
		skeleton = codegen.Generate(analysis.Model, analysis.Trace, cfg.Analysis.Name)
		logger.LogSkeleton(skeleton.Name, skeleton.TotalBits, skeleton.Wide, nil)
	}

	out, err := utils.OpenOutput(cfg.Report.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer out.Close()

	toConsole := cfg.Report.Output == "" || cfg.Report.Output == "-"
	report := reporting.New(analysis, skeleton, reporting.Options{
		Title:   reportTitle(capture.Name),
		Source:  source,
		Version: a.version,
		Color:   cfg.Report.Color && toConsole && isTerminal(cmd.OutOrStdout()),
	})

	if err := reporting.Render(out, report, format); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if cfg.Report.SaveDir != "" {
		paths, err := reporting.NewDashboardGenerator(cfg.Report.SaveDir, logger.GetLogger()).GenerateDashboard(report)
		if err != nil {
			return fmt.Errorf("failed to archive report: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", p)
		}
	}

	return nil
}

func reportTitle(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("IR Capture Analysis: %s", name)
}
