/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dashboard.go
Description: Report archive generator. Writes one analysis report in every format into
an output directory, together with the code skeleton as a standalone C++ file, so a
capture session can be reviewed later without re-running the analysis.
*/

package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DashboardGenerator writes report archives
type DashboardGenerator struct {
	outputDir string
	logger    *logrus.Logger
}

// NewDashboardGenerator creates a new archive generator rooted at outputDir
func NewDashboardGenerator(outputDir string, logger *logrus.Logger) *DashboardGenerator {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
	}
	return &DashboardGenerator{
		outputDir: outputDir,
		logger:    logger,
	}
}

// GenerateDashboard writes r into a per-report subdirectory and returns the written paths
func (dg *DashboardGenerator) GenerateDashboard(r *Report) ([]string, error) {
	dir := filepath.Join(dg.outputDir, dirName(r))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(Formats)+1)
	for _, format := range Formats {
		path := filepath.Join(dir, "report"+format.Extension())
		if err := dg.writeFormat(path, r, format); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if r.Skeleton != nil {
		path := filepath.Join(dir, strings.ToLower(r.Skeleton.Name)+".cpp")
		if err := os.WriteFile(path, []byte(r.Skeleton.String()), 0644); err != nil {
			return written, fmt.Errorf("failed to write code skeleton: %w", err)
		}
		written = append(written, path)
	}

	dg.logger.WithFields(logrus.Fields{
		"report_id": r.ID,
		"files":     len(written),
	}).Infof("Report archive generated in: %s", dir)
	return written, nil
}

// writeFormat renders one format to path
func (dg *DashboardGenerator) writeFormat(path string, r *Report, format Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	// Archived text reports never carry escape codes
	view := *r
	view.color = false
	if err := Render(file, &view, format); err != nil {
		return fmt.Errorf("failed to render %s report: %w", format, err)
	}
	return nil
}

// dirName is "<timestamp>_<short fingerprint>"
func dirName(r *Report) string {
	short := r.Fingerprint
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("%s_%s", r.GeneratedAt.Format("20060102_150405"), short)
}
