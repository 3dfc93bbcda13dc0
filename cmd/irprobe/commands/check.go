/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Self-check command for irprobe. Validates configuration and the directories
irprobe writes to.
*/

package commands

import (
	"fmt"
	"os"

	"github.com/kleascm/irprobe/pkg/config"
	"github.com/kleascm/irprobe/pkg/logging"
	"github.com/spf13/cobra"
)

// PerformSelfCheck validates the configuration and output directories
func (a *App) PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 irprobe - System Self-Check")
	fmt.Fprintln(out, "==============================")
	fmt.Fprintln(out)

	var cfg *config.Config
	checks := []struct {
		name     string
		function func() (string, error)
	}{
		{"Configuration Validation", func() (string, error) {
			c, err := a.LoadConfig(cmd)
			if err != nil {
				return "", err
			}
			cfg = c
			return fmt.Sprintf("margin %dus, carrier %dHz, format %s", c.Analysis.Margin, c.Pronto.Hertz, c.Report.Format), nil
		}},
		{"Log Directory", func() (string, error) {
			if cfg == nil {
				return "", fmt.Errorf("configuration unavailable")
			}
			if cfg.Logging.Dir == "" {
				return "file logging disabled", nil
			}
			lm := logging.NewLogManager(cfg.Logging.Dir, cfg.Logging.MaxFiles)
			if err := lm.CheckWritable(); err != nil {
				return "", err
			}
			stats, err := lm.GetLogStats()
			if err != nil {
				return "", err
			}
			return stats.Summary(), nil
		}},
		{"Report Archive Directory", func() (string, error) {
			if cfg == nil {
				return "", fmt.Errorf("configuration unavailable")
			}
			if cfg.Report.SaveDir == "" {
				return "archiving disabled", nil
			}
			return cfg.Report.SaveDir, checkWritableDir(cfg.Report.SaveDir)
		}},
	}

	passed := 0
	total := len(checks)

	for _, check := range checks {
		fmt.Fprintf(out, "🔍 %s... ", check.name)
		detail, err := check.function()
		if err != nil {
			fmt.Fprintf(out, "❌ FAILED: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "✅ PASSED (%s)\n", detail)
		passed++
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Results: %d/%d checks passed\n", passed, total)

	if passed != total {
		fmt.Fprintln(out, "⚠️  Some checks failed. Please address the issues above.")
		return fmt.Errorf("%d/%d checks failed", total-passed, total)
	}
	fmt.Fprintln(out, "✨ All checks passed!")
	return nil
}

// checkWritableDir creates dir if needed and verifies a file can be written there
func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	probe, err := os.CreateTemp(dir, ".irprobe-check-*")
	if err != nil {
		return fmt.Errorf("cannot write to %s: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
