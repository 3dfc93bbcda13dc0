/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logging_test.go
Description: Tests for the logging system. Tests logger creation, formatting, file
output, retention and the inference event sink.
*/

package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/kleascm/irprobe/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainConfig(console *bytes.Buffer) *logging.LoggerConfig {
	return &logging.LoggerConfig{
		Level:    logging.LogLevelDebug,
		Format:   logging.LogFormatCustom,
		MaxFiles: 5,
		Console:  console,
	}
}

// TestLoggerCreation tests logger creation with different configurations
func TestLoggerCreation(t *testing.T) {
	logger, err := logging.NewLogger(nil)
	require.NoError(t, err)
	assert.NotNil(t, logger.GetLogger())
	assert.Empty(t, logger.FilePath(), "no file output without a directory")
	require.NoError(t, logger.Close())

	config := plainConfig(&bytes.Buffer{})
	config.Format = logging.LogFormatJSON
	config.OutputDir = t.TempDir()
	logger, err = logging.NewLogger(config)
	require.NoError(t, err)
	defer logger.Close()

	assert.FileExists(t, logger.FilePath())
	assert.True(t, strings.HasPrefix(filepath.Base(logger.FilePath()), "irprobe_"))
}

// TestLoggerConfigValidate tests config validation
func TestLoggerConfigValidate(t *testing.T) {
	assert.NoError(t, logging.DefaultLoggerConfig().Validate())

	bad := logging.DefaultLoggerConfig()
	bad.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = logging.DefaultLoggerConfig()
	bad.Level = "verbose"
	assert.Error(t, bad.Validate())

	bad = logging.DefaultLoggerConfig()
	bad.MaxFiles = 0
	assert.Error(t, bad.Validate())

	_, err := logging.NewLogger(bad)
	assert.Error(t, err)
}

// TestLogFormats tests that every format produces output
func TestLogFormats(t *testing.T) {
	formats := []logging.LogFormat{
		logging.LogFormatText,
		logging.LogFormatJSON,
		logging.LogFormatCustom,
	}
	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			config := plainConfig(&buf)
			config.Format = format
			logger, err := logging.NewLogger(config)
			require.NoError(t, err)
			defer logger.Close()

			logger.LogPronto(38000, 4, true, nil)
			assert.Contains(t, buf.String(), "Pronto code generated")
			assert.Contains(t, buf.String(), "38000")
		})
	}
}

// TestFileOutput tests that console output is mirrored to the log file
func TestFileOutput(t *testing.T) {
	var buf bytes.Buffer
	config := plainConfig(&buf)
	config.OutputDir = t.TempDir()
	logger, err := logging.NewLogger(config)
	require.NoError(t, err)

	logger.LogAnalysis("abcdef", 16, 1, time.Millisecond, map[string]interface{}{"source": "stdin"})
	path := logger.FilePath()
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Capture analysed")
	assert.Contains(t, buf.String(), "Capture analysed")
}

// TestAnalysisFormatter tests stage prefixes and field ordering
func TestAnalysisFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewLogger(plainConfig(&buf))
	require.NoError(t, err)
	defer logger.Close()

	logger.LogAnomaly(20, 3978, "unexpected_header_space", nil)
	logger.LogSkeleton("Xyz", 16, false, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "WARNING [ANOMALY] Decoder anomaly kind=unexpected_header_space position=20 usecs=3978", lines[0])
	assert.Contains(t, lines[1], "[CODE] Code skeleton generated")
	assert.NotContains(t, lines[1], "event=")
}

// TestStagePrefix tests the event kind mapping
func TestStagePrefix(t *testing.T) {
	assert.Equal(t, "BUCKET", logging.StagePrefix("buckets"))
	assert.Equal(t, "MODEL", logging.StagePrefix("constant"))
	assert.Equal(t, "DECODE", logging.StagePrefix("fragment"))
	assert.Equal(t, "ANOMALY", logging.StagePrefix("anomaly"))
	assert.Equal(t, "CODE", logging.StagePrefix("code"))
	assert.Empty(t, logging.StagePrefix(nil))
	assert.Empty(t, logging.StagePrefix(42))
}

// TestEventSink tests levels and fields for inference events
func TestEventSink(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	sink := logging.NewEventSink(logger, logrus.Fields{"capture": "c1"})
	analysis, err := inference.Analyze([]int{
		7930, 3952, 494, 1482, 520, 1482, 494, 1508, 494, 520, 494, 1482, 494, 520,
		494, 1482, 494, 1482, 494, 3978, 494, 520, 494, 520, 494, 520, 494, 520,
		520, 520, 494, 520, 494, 520, 494, 520, 494,
	}, 200, sink)
	require.NoError(t, err)
	require.NotNil(t, analysis)

	out := buf.String()
	assert.NotContains(t, out, `"event":"classification"`, "classifications are debug level")
	assert.Contains(t, out, `"event":"anomaly"`)
	assert.Contains(t, out, `"level":"warning"`)
	assert.Contains(t, out, `"event":"summary"`)
	assert.Contains(t, out, `"capture":"c1"`)
}

// TestLogManager tests retention, stats and the writability check
func TestLogManager(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"irprobe_2024-01-01_00-00-00.000000.log",
		"irprobe_2024-01-02_00-00-00.000000.log",
		"irprobe_2024-01-03_00-00-00.000000.log",
		"other.log",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}

	lm := logging.NewLogManager(dir, 2)
	stats, err := lm.GetLogStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, int64(3), stats.TotalSize)
	assert.Contains(t, stats.Summary(), "3 files")

	require.NoError(t, lm.CleanupOldLogs())
	assert.NoFileExists(t, filepath.Join(dir, names[0]))
	assert.FileExists(t, filepath.Join(dir, names[2]))
	assert.FileExists(t, filepath.Join(dir, "other.log"))

	require.NoError(t, lm.CheckWritable())
	empty, err := logging.NewLogManager(t.TempDir(), 1).GetLogStats()
	require.NoError(t, err)
	assert.Equal(t, "no log files", empty.Summary())
}
