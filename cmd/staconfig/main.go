// Command staconfig inspects or manually sets the Spatio-Temporal Address
// bound to a wireless interface, without going through the daemon's DAD
// handshake. Its verbs are positional arguments, not subcommands, mirroring
// the original tool's manual argv walk: the verb's position in argv is
// data-dependent (an interface name may or may not be followed by one),
// not a fixed keyword set.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satokano/stamanagement/internal/daemon"
	"github.com/satokano/stamanagement/internal/iface"
	"github.com/satokano/stamanagement/internal/sta"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "staconfig [interface [del | add LAT LON ALT [TIME]]]",
	Short: "Inspect or manually set the STA bound to a wireless interface",
	Args:  cobra.MaximumNArgs(6),
	RunE: func(_ *cobra.Command, args []string) error {
		return run(args)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the operation performed")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	log := zap.NewNop().Sugar()
	if verbose {
		config := zap.NewDevelopmentConfig()
		logger, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()
		log = logger.Sugar()
	}

	ifname := daemon.DefaultConfig().Interface
	if len(args) >= 1 {
		ifname = args[0]
	}

	adapter, err := iface.New(ifname)
	if err != nil {
		return fmt.Errorf("staconfig: %w", err)
	}

	switch {
	case len(args) <= 1:
		return printSTA(adapter)
	case args[1] == "del":
		return deleteSTA(adapter, log)
	case args[1] == "add":
		return addSTA(adapter, args[2:], log)
	default:
		return fmt.Errorf("staconfig: unknown verb %q", args[1])
	}
}

func printSTA(adapter *iface.Adapter) error {
	addr, ok, err := adapter.CurrentSTA()
	if err != nil {
		return fmt.Errorf("staconfig: %w", err)
	}
	if !ok {
		fmt.Println("no STA bound")
		return nil
	}
	fmt.Println(addr)
	return nil
}

func deleteSTA(adapter *iface.Adapter, log *zap.SugaredLogger) error {
	addr, ok, err := adapter.CurrentSTA()
	if err != nil {
		return fmt.Errorf("staconfig: %w", err)
	}
	if !ok {
		return fmt.Errorf("staconfig: no STA bound on %s", adapter.Name())
	}
	if err := adapter.Remove(addr); err != nil {
		return fmt.Errorf("staconfig: %w", err)
	}
	log.Infow("removed STA", "address", addr)
	return nil
}

func addSTA(adapter *iface.Adapter, args []string, log *zap.SugaredLogger) error {
	if len(args) < 3 {
		return fmt.Errorf("staconfig: add requires LAT LON ALT [TIME]")
	}

	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("staconfig: bad LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("staconfig: bad LON: %w", err)
	}
	alt, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("staconfig: bad ALT: %w", err)
	}

	when := time.Now().Unix()
	if len(args) >= 4 {
		parsed, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("staconfig: bad TIME: %w", err)
		}
		when = parsed
	}

	addr, err := sta.Encode(sta.SpatioTemporal{Time: when, Lat: lat, Lon: lon, Alt: alt})
	if err != nil {
		return fmt.Errorf("staconfig: %w", err)
	}

	if err := adapter.Add(addr); err != nil {
		return fmt.Errorf("staconfig: %w", err)
	}
	log.Infow("added STA", "address", addr)
	fmt.Println(addr)
	return nil
}
