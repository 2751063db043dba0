// Command lcr4500 configures a TI LightCrafter 4500 over USB.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/moffa90/go-lcr4500/config"
	"github.com/moffa90/go-lcr4500/controller"
	"github.com/moffa90/go-lcr4500/usb"
	"github.com/spf13/cobra"
)

// app holds the state shared by every command.
type app struct {
	configPath string
	verbose    bool
	device     int
	delay      time.Duration
	strict     bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	a := &app{}

	cmd := &cobra.Command{
		Use:               "lcr4500",
		Short:             "Configure a LightCrafter 4500 display controller",
		Args:              cobra.ExactArgs(0),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log every command")
	cmd.PersistentFlags().IntVar(&a.device, "device", 0, "Index of the device when several are attached")
	cmd.PersistentFlags().DurationVar(&a.delay, "delay", 20*time.Millisecond, "Pause after every command")
	cmd.PersistentFlags().BoolVar(&a.strict, "strict", false, "Fail when a reply is not received")

	cmd.AddCommand(a.patternCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "video",
		Short: "Stop the pattern sequence and show video",
		Args:  cobra.ExactArgs(0),
		RunE:  a.video,
	})
	cmd.AddCommand(a.powerCommand())
	cmd.AddCommand(a.gammaCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the main status register",
		Args:  cobra.ExactArgs(0),
		RunE:  a.status,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List attached devices",
		Args:  cobra.ExactArgs(0),
		RunE:  a.list,
	})

	if err := cmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}

// setup loads the configuration and applies the persistent flags on top.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a.cfg = config.Default()
	if a.configPath != "" {
		a.logger.Debug("loading config file", "path", a.configPath)
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		a.cfg.Device.Index = a.device
	}
	if flags.Changed("delay") {
		a.cfg.Device.CommandDelay = a.delay
	}
	if flags.Changed("strict") {
		a.cfg.Device.StrictReplies = a.strict
	}
	return nil
}

// run opens the device, builds a controller and calls fn. The device is
// closed on every path.
func (a *app) run(fn func(ctx context.Context, ctl *controller.Controller) error) error {
	ctx := listenStop()

	return usb.Do(a.cfg.Device.USB(), func(dev *usb.Device) error {
		a.logger.Debug("device opened", "device", dev.String())

		opts := append(a.cfg.Device.Options(),
			controller.WithLogger(a.logger),
			controller.WithProgressCallback(func(p controller.Progress) {
				a.logger.Debug("progress", "step", p.Step, "current", p.Current, "total", p.Total)
			}),
		)
		return fn(ctx, controller.New(dev, opts...))
	})
}

// listenStop returns a context cancelled on interrupt.
func listenStop() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx
}
