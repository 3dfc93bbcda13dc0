/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: serve.go
Description: HTTP service command.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/irprobe/pkg/server"
	"github.com/spf13/cobra"
)

// RunServe runs the analysis service until interrupted
func (a *App) RunServe(cmd *cobra.Command, args []string) error {
	cfg, err := a.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := a.SetupLogging(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Version:         a.version,
		Margin:          cfg.Analysis.Margin,
		Name:            cfg.Analysis.Name,
		Hertz:           cfg.Pronto.Hertz,
		EndSpace:        cfg.Pronto.EndSpace,
	}, logger.GetLogger())

	return srv.Run(ctx)
}
