package main

import (
	"context"
	"fmt"

	"github.com/moffa90/go-lcr4500/config"
	"github.com/moffa90/go-lcr4500/controller"
	"github.com/moffa90/go-lcr4500/protocol"
	"github.com/moffa90/go-lcr4500/usb"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"
)

// patternFlags override the pattern section of the configuration.
type patternFlags struct {
	source   string
	patterns int
	trigger  string
	rate     physic.Frequency
	fps      uint
	period   uint32
	depth    int
	leds     []string
}

func (a *app) patternCommand() *cobra.Command {
	f := &patternFlags{}

	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Program and start a pattern sequence",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.pattern(cmd, f)
		},
	}
	f.register(cmd)

	return cmd
}

// register adds the pattern flags to cmd.
func (f *patternFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "video", "Pattern input source (video, flash)")
	cmd.Flags().IntVar(&f.patterns, "patterns", controller.MaxPatterns, "Number of LUT entries (1-3)")
	cmd.Flags().StringVar(&f.trigger, "trigger", "vsync", "Pattern trigger mode")
	cmd.Flags().Var(&frequencyValue{&f.rate}, "rate", "Pattern rate, e.g. 222Hz")
	cmd.Flags().UintVar(&f.fps, "fps", 0, "Pattern rate in frames per second")
	cmd.Flags().Uint32Var(&f.period, "period", 0, "Exposure and frame period in microseconds")
	cmd.Flags().IntVar(&f.depth, "bit-depth", 7, "Bit depth (1, 2, 4, 7, 8)")
	cmd.Flags().StringSliceVar(&f.leds, "leds", []string{"all"}, "LEDs to enable (red, green, blue, all)")
	cmd.MarkFlagsMutuallyExclusive("rate", "fps", "period")
}

// apply copies the flags that were set on the command line into p.
func (f *patternFlags) apply(cmd *cobra.Command, p *config.Pattern) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		p.InputSource = f.source
	}
	if flags.Changed("patterns") {
		p.NumPatterns = f.patterns
	}
	if flags.Changed("trigger") {
		p.Trigger = f.trigger
	}
	if flags.Changed("rate") {
		p.Rate = f.rate.String()
		p.Period = 0
	}
	if flags.Changed("fps") {
		p.Period = controller.FPSToPeriod(f.fps)
	}
	if flags.Changed("period") {
		p.Period = f.period
	}
	if flags.Changed("bit-depth") {
		p.BitDepth = f.depth
	}
	if flags.Changed("leds") {
		p.LEDs = f.leds
	}
}

// check rejects flag values that cannot be turned into a period.
func (f *patternFlags) check(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("fps") {
		return nil
	}
	if f.fps == 0 || f.fps > 1_000_000 {
		return fmt.Errorf("--fps must be 1-1000000, got %d", f.fps)
	}
	return nil
}

func (a *app) pattern(cmd *cobra.Command, f *patternFlags) error {
	if err := f.check(cmd); err != nil {
		return err
	}

	p := a.cfg.Pattern
	f.apply(cmd, &p)

	opts, err := p.Options()
	if err != nil {
		return err
	}

	return a.run(func(ctx context.Context, ctl *controller.Controller) error {
		return ctl.PatternMode(ctx, opts)
	})
}

func (a *app) video(_ *cobra.Command, _ []string) error {
	return a.run(func(ctx context.Context, ctl *controller.Controller) error {
		return ctl.VideoMode(ctx)
	})
}

func (a *app) powerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "power",
		Short: "Standby control",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Stop the sequence and enter standby",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, ctl *controller.Controller) error {
				return ctl.PowerDown(ctx)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Leave standby",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, ctl *controller.Controller) error {
				return ctl.PowerUp(ctx)
			})
		},
	})
	return cmd
}

func (a *app) gammaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "gamma on|off",
		Short:     "Enable or disable gamma correction in video mode",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(_ *cobra.Command, args []string) error {
			apply := args[0] == "on"
			return a.run(func(ctx context.Context, ctl *controller.Controller) error {
				status, err := ctl.SetGamma(ctx, apply)
				if err != nil {
					return err
				}
				printStatus(status)
				return nil
			})
		},
	}
}

func (a *app) status(_ *cobra.Command, _ []string) error {
	return a.run(func(ctx context.Context, ctl *controller.Controller) error {
		status, err := ctl.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(status)
		return nil
	})
}

func (a *app) list(_ *cobra.Command, _ []string) error {
	infos := usb.Devices(usb.DefaultOptions())
	if len(infos) == 0 {
		fmt.Println("no devices found")
		return nil
	}
	for i, info := range infos {
		fmt.Printf("%d: %s %s (serial %s)\n", i, info.Path, info.Product, info.Serial)
	}
	return nil
}

func printStatus(s protocol.MainStatus) {
	fmt.Printf("DMD parked:        %t\n", s.Parked)
	fmt.Printf("Sequencer running: %t\n", s.SequencerRunning)
	fmt.Printf("Buffer frozen:     %t\n", s.BufferFrozen)
	fmt.Printf("Gamma enabled:     %t\n", s.GammaEnabled)
}
