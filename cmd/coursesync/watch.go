package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mycok/coursesync/catalog"
	"github.com/mycok/coursesync/service"
	"github.com/mycok/coursesync/service/frontend"
)

func newWatchCmd(opts *options) *cobra.Command {
	var (
		flags          = new(syncFlags)
		interval       time.Duration
		listenAddr     string
		allowedOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync periodically and serve the sync status over HTTP",
		Long: `watch runs a sync immediately and then once per interval until it is
interrupted. A read-only JSON API exposes the sync status, the recently
downloaded files and a search over all downloaded files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			logger := e.logger

			l, err := e.openLedger()
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			cat, err := catalog.New()
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			syncSvc, err := e.newSyncService(flags, l, interval)
			if err != nil {
				return err
			}

			frontendSvc, err := frontend.New(frontend.Config{
				ListenAddr:     listenAddr,
				Ledger:         l,
				Status:         syncSvc,
				Catalog:        cat,
				AllowedOrigins: allowedOrigins,
				Logger:         logger.WithField("service", "frontend"),
			})
			if err != nil {
				return err
			}

			ctx, cancelFn := context.WithCancel(cmd.Context())
			defer cancelFn()

			go func() {
				signalChan := make(chan os.Signal, 1)
				signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
				defer signal.Stop(signalChan)

				select {
				case s := <-signalChan:
					logger.WithField("signal", s.String()).Info("shutting down due to os signal")
					cancelFn()
				case <-ctx.Done():
				}
			}()

			if err := (service.Group{syncSvc, frontendSvc}).Execute(ctx); err != nil {
				logger.WithField("err", err).Error("shutting down due to an error")

				return err
			}

			logger.Info("shutdown complete")

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Minute, "Time between subsequent sync runs")
	cmd.Flags().StringVar(&listenAddr, "listen-addr", "127.0.0.1:8080", "Address to serve the status API on")
	cmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", nil, "Origins allowed to query the status API from a browser")

	return cmd
}
