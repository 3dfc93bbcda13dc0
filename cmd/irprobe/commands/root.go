/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Root command and sub-command wiring for irprobe. Flags are bound to viper
keys of the configuration file so a flag, an IRPROBE_ environment variable or a config
entry can set the same value.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App carries the state shared by every sub-command of one root command
type App struct {
	v       *viper.Viper
	version string
}

// NewRootCommand builds the irprobe command tree with its own viper instance
func NewRootCommand(version string) *cobra.Command {
	app := &App{v: viper.New(), version: version}
	v := app.v

	rootCmd := &cobra.Command{
		Use:   "irprobe",
		Short: "irprobe - IR remote protocol inference from raw timing captures",
		Long: `irprobe analyses a raw mark/space timing capture of an unknown infrared remote
protocol. It clusters similar durations, infers header, bit and gap timings, decodes the
capture into bits and can emit a C++ outline of send and decode routines as a starting
point for supporting the protocol.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty disables log files)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	v.BindPFlag("logging.dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	// Add analyse command
	analyseCmd := &cobra.Command{
		Use:     "analyse [rawdata]",
		Aliases: []string{"analyze"},
		Short:   "Analyse a rawData capture and infer its protocol",
		Long: `Analyse a rawData declaration such as the output of IRrecvDumpV2, e.g.
'uint16_t rawData[37] = {7930, 3952, 494, 1482, ...};'. The capture can be given as an
argument, read from a file or read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.RunAnalyse,
	}

	analyseCmd.Flags().StringP("file", "f", "", "Read the rawData declaration from a file")
	analyseCmd.Flags().Bool("stdin", false, "Read the rawData declaration from stdin")
	analyseCmd.Flags().IntP("range", "r", 200, "Max microseconds between values considered the same duration")
	analyseCmd.Flags().BoolP("code", "g", false, "Produce a C++ code outline for a send and decode routine")
	analyseCmd.Flags().String("name", "", "Protocol name used in the code outline")
	analyseCmd.Flags().String("format", "text", "Report format (text, markdown, html, json, yaml)")
	analyseCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	analyseCmd.Flags().String("save-dir", "", "Also archive the report in every format under this directory")
	analyseCmd.MarkFlagsMutuallyExclusive("file", "stdin")

	v.BindPFlag("analysis.margin", analyseCmd.Flags().Lookup("range"))
	v.BindPFlag("analysis.generate_code", analyseCmd.Flags().Lookup("code"))
	v.BindPFlag("analysis.name", analyseCmd.Flags().Lookup("name"))
	v.BindPFlag("report.format", analyseCmd.Flags().Lookup("format"))
	v.BindPFlag("report.output", analyseCmd.Flags().Lookup("output"))
	v.BindPFlag("report.save_dir", analyseCmd.Flags().Lookup("save-dir"))

	rootCmd.AddCommand(analyseCmd)

	// Add pronto command
	prontoCmd := &cobra.Command{
		Use:   "pronto [rawdata]",
		Short: "Convert a rawData capture into a Pronto code",
		Long: `Convert a rawData declaration into a learned Pronto hex code for the given
carrier frequency. A capture that ends on a mark is completed with a trailing space.`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.RunPronto,
	}

	prontoCmd.Flags().StringP("file", "f", "", "Read the rawData declaration from a file")
	prontoCmd.Flags().Bool("stdin", false, "Read the rawData declaration from stdin")
	prontoCmd.Flags().Int("hz", 38000, "Carrier frequency in Hz")
	prontoCmd.Flags().Int("gap", 100000, "Trailing space in microseconds for captures that end on a mark")
	prontoCmd.Flags().Bool("repeat", false, "Place the pairs in the repeat section instead of the burst")
	prontoCmd.Flags().Bool("unmodulated", false, "Emit an unmodulated code")
	prontoCmd.Flags().BoolP("verbose", "v", false, "Increase output verbosity")
	prontoCmd.Flags().String("save-dir", "", "Also save the conversion as JSON under this directory")
	prontoCmd.MarkFlagsMutuallyExclusive("file", "stdin")

	v.BindPFlag("pronto.hertz", prontoCmd.Flags().Lookup("hz"))
	v.BindPFlag("pronto.end_space", prontoCmd.Flags().Lookup("gap"))

	rootCmd.AddCommand(prontoCmd)

	// Add serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve capture analysis over HTTP",
		Long: `Run an HTTP service exposing analysis (POST /api/v1/analyse) and Pronto
conversion (POST /api/v1/pronto) as JSON endpoints, with /health and Prometheus
metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: app.RunServe,
	}

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Validate the configuration and check that the log and archive directories are
writable. Useful for CI and deployment checks.`,
		Args: cobra.NoArgs,
		RunE: app.PerformSelfCheck,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the irprobe version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "irprobe %s\n", version)
		},
	})

	return rootCmd
}
