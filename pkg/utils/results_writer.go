/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: results_writer.go
Description: Utility for writing command results. Handles timestamped, versioned and
kind-specific file naming for saved results, and output destinations that may be a file
or stdout.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// WriteResult writes result as indented JSON to <dir>/<kind>/<timestamp>_<kind>_v<version>.json
func WriteResult(dir, kind, version string, result interface{}) (string, error) {
	resultsDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	// e.g. 2026-06-11_01-30-00.000_pronto_v1.0.0.json
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s_v%s.json", timestamp, kind, version)
	filePath := filepath.Join(resultsDir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}

	return filePath, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// OpenOutput returns a writer for path. An empty path or "-" selects fallback,
// which is never closed; parent directories of a file are created.
func OpenOutput(path string, fallback io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{fallback}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}
