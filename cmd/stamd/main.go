package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satokano/stamanagement/internal/daemon"
	"github.com/satokano/stamanagement/internal/xcmd"
)

// Cmd is the command line arguments for stamd.
type Cmd struct {
	FifoPath    string
	Interface   string
	NoDaemon    bool
	Port        int
	WaitSeconds int
}

var cmd Cmd

var rootCmd = &cobra.Command{
	Use:   "stamd",
	Short: "STA management daemon: maintains one spatio-temporal address on a wireless interface",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := run(cmd); err != nil {
			var interrupted xcmd.Interrupted
			if errors.As(err, &interrupted) {
				return nil
			}
			return err
		}
		return nil
	},
}

func init() {
	defaults := daemon.DefaultConfig()
	rootCmd.Flags().StringVarP(&cmd.FifoPath, "fifo", "f", defaults.FifoPath, "path to the position FIFO")
	rootCmd.Flags().StringVarP(&cmd.Interface, "interface", "i", defaults.Interface, "wireless interface to manage")
	rootCmd.Flags().BoolVarP(&cmd.NoDaemon, "no-daemon", "n", false, "do not daemonize (daemonization is left to a process supervisor; this flag only logs that the daemon runs in the foreground)")
	rootCmd.Flags().IntVarP(&cmd.Port, "port", "p", defaults.Port, "UDP port for the DAD wire protocol")
	rootCmd.Flags().IntVarP(&cmd.WaitSeconds, "wait", "t", int(defaults.WaitWindow/time.Second), "DAD wait window, in seconds")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd Cmd) error {
	config := zap.NewDevelopmentConfig()
	config.Development = false
	config.Level.SetLevel(zap.DebugLevel)

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	log := logger.Sugar()

	if cmd.NoDaemon {
		log.Info("running in the foreground (-n); daemonization, if any, is the caller's responsibility")
	}

	cfg := daemon.Config{
		FifoPath:   cmd.FifoPath,
		Interface:  cmd.Interface,
		Daemonize:  !cmd.NoDaemon,
		Port:       cmd.Port,
		WaitWindow: time.Duration(cmd.WaitSeconds) * time.Second,
	}

	d, err := daemon.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}

	ctx := context.Background()
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return d.Run(ctx)
	})
	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		log.Infow("caught signal", "err", err)
		return err
	})

	return wg.Wait()
}
