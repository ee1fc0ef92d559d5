// vinc talks to a Vinculum VNC1L/VDIP1 USB host controller and copies files
// to and from the attached flash drive.
//
// The controller is reached over a VDIP1 in UART mode (--serial), over the
// parallel FIFO through I/O ports (--data-port/--status-port, Linux only), or
// replaced by an in-memory simulation (--sim).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/arloliu/go-vinculum/bus"
	"github.com/arloliu/go-vinculum/internal/config"
	"github.com/arloliu/go-vinculum/logger"
	"github.com/arloliu/go-vinculum/vinculum"
)

// errUsage marks command-line mistakes; main prints help for them.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		configPath string
		sim        bool
		overrides  config.Config
	)

	flagSet := pflag.NewFlagSet("vinc", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "YAML config file (default: $"+config.EnvConfigPath+")")
	flagSet.StringVar(&overrides.Bus.Serial, "serial", "", "serial device of a VDIP1 in UART mode")
	flagSet.IntVar(&overrides.Bus.Baud, "baud", bus.DefaultBaudRate, "serial line speed")
	flagSet.Uint16Var(&overrides.Bus.DataPort, "data-port", 0, "I/O port of the data register")
	flagSet.Uint16Var(&overrides.Bus.StatusPort, "status-port", 0, "I/O port of the status register")
	flagSet.StringVar((*string)(&overrides.Clock), "clock", string(config.ClockTicks), "timeout clock: ticks or seconds")
	flagSet.IntVar(&overrides.Timeout, "timeout", vinculum.DefaultTimeout, "per-operation timeout in seconds")
	flagSet.StringVar(&overrides.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolVar(&sim, "sim", false, "use the in-memory simulated controller")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetOutput(io.Discard)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(flagSet)
		return fmt.Errorf("%w: no command given", errUsage)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyFlags(flagSet, cfg, &overrides, sim)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)
	l := logger.With("bus", string(cfg.Bus.Kind))

	b, closeBus, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeBus(); cerr != nil {
			l.Warn("close bus", "error", cerr)
		}
	}()

	sessCfg, err := vinculum.NewSessionConfig(cfg.SessionOptions(l)...)
	if err != nil {
		return err
	}
	s, err := vinculum.NewSession(b, sessCfg)
	if err != nil {
		return err
	}

	if err := s.Initialize(ctx); err != nil {
		return err
	}

	return dispatch(ctx, s, rest[0], rest[1:], stdout)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	return config.Load()
}

// applyFlags copies explicitly set flags over the file values.
func applyFlags(flagSet *pflag.FlagSet, cfg, o *config.Config, sim bool) {
	if flagSet.Changed("serial") {
		cfg.Bus.Kind = config.BusSerial
		cfg.Bus.Serial = o.Bus.Serial
	}
	if flagSet.Changed("baud") {
		cfg.Bus.Baud = o.Bus.Baud
	}
	if flagSet.Changed("data-port") || flagSet.Changed("status-port") {
		cfg.Bus.Kind = config.BusPort
		cfg.Bus.DataPort = o.Bus.DataPort
		cfg.Bus.StatusPort = o.Bus.StatusPort
	}
	if flagSet.Changed("clock") {
		cfg.Clock = o.Clock
	}
	if flagSet.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if sim {
		cfg.Bus.Kind = config.BusSim
	}
}

func openBus(cfg *config.Config) (bus.Bus, func() error, error) {
	switch cfg.Bus.Kind {
	case config.BusSerial:
		b, err := bus.OpenSerial(cfg.Bus.Serial, cfg.Bus.Baud, cfg.Bus.FlowControl)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil

	case config.BusPort:
		p, err := bus.OpenDevPort()
		if err != nil {
			return nil, nil, err
		}
		return bus.NewPortBus(p, cfg.Bus.DataPort, cfg.Bus.StatusPort), p.Close, nil

	case config.BusSim:
		return newSimAgent(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown bus kind %q", cfg.Bus.Kind)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `vinc - file access through a Vinculum USB host controller.

Usage:
  vinc [flags] <command> [args]

Commands:
  probe                  check that a flash drive is present
  size <name>            print the length of a remote file
  stat <name>            print the length and modification time
  get <remote> [local]   copy a remote file to the host
  put <local> [remote]   copy a host file to the drive
  cd <dir>|..|/          change the remote directory

Examples:
  vinc --serial /dev/ttyUSB0 get LOG.TXT
  vinc --data-port 0x0c --status-port 0x0d put notes.txt
  vinc --sim stat README.TXT

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
