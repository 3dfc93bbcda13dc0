/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log directory management for irprobe: retention cleanup, statistics and a
writability check used by the check command.
*/

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LogManager manages the files in one log directory
type LogManager struct {
	logDir   string
	maxFiles int
}

// NewLogManager creates a new log manager
func NewLogManager(logDir string, maxFiles int) *LogManager {
	return &LogManager{
		logDir:   logDir,
		maxFiles: maxFiles,
	}
}

func (lm *LogManager) files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(lm.logDir, logFilePrefix+"*.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}
	return files, nil
}

// CleanupOldLogs removes the oldest log files beyond maxFiles
func (lm *LogManager) CleanupOldLogs() error {
	files, err := lm.files()
	if err != nil {
		return err
	}

	if len(files) <= lm.maxFiles {
		return nil
	}

	// Timestamped names sort oldest first
	sort.Strings(files)

	filesToRemove := len(files) - lm.maxFiles
	for i := 0; i < filesToRemove; i++ {
		if err := os.Remove(files[i]); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", files[i], err)
		}
	}

	return nil
}

// GetLogStats returns statistics about log files
func (lm *LogManager) GetLogStats() (*LogStats, error) {
	files, err := lm.files()
	if err != nil {
		return nil, err
	}

	stats := &LogStats{
		TotalFiles: len(files),
	}

	for _, file := range files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}

		stats.TotalSize += stat.Size()

		if stats.OldestFile.IsZero() || stat.ModTime().Before(stats.OldestFile) {
			stats.OldestFile = stat.ModTime()
		}
		if stat.ModTime().After(stats.NewestFile) {
			stats.NewestFile = stat.ModTime()
		}
	}

	return stats, nil
}

// CheckWritable creates the log directory if needed and verifies a file can be written there
func (lm *LogManager) CheckWritable() error {
	if err := os.MkdirAll(lm.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	probe, err := os.CreateTemp(lm.logDir, ".irprobe-check-*")
	if err != nil {
		return fmt.Errorf("log directory %s is not writable: %w", lm.logDir, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// LogStats holds statistics about log files
type LogStats struct {
	TotalFiles int       `json:"total_files"`
	TotalSize  int64     `json:"total_size"`
	OldestFile time.Time `json:"oldest_file"`
	NewestFile time.Time `json:"newest_file"`
}

// Summary returns a one-line description of the stats
func (s *LogStats) Summary() string {
	if s.TotalFiles == 0 {
		return "no log files"
	}
	return fmt.Sprintf("%d files, %d bytes, newest %s", s.TotalFiles, s.TotalSize, s.NewestFile.Format(time.RFC3339))
}
