package controller

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/moffa90/go-lcr4500/protocol"
	"periph.io/x/conn/v3/physic"
)

// MaxPatterns is the number of LUT slots PatternMode can program.
const MaxPatterns = 3

// PatternIndices maps a bit depth to the pattern index used by each LUT slot.
// With video input each 24-bit frame holds 24/depth patterns, and slot i
// shows the pattern that starts the i-th color channel.
var PatternIndices = map[protocol.BitDepth][MaxPatterns]byte{
	1: {7, 15, 23},
	2: {3, 7, 11},
	4: {1, 3, 5},
	7: {0, 1, 2},
	8: {0, 1, 2},
}

// PatternModeOptions configures PatternMode.
type PatternModeOptions struct {
	// InputSource is where pattern data comes from
	InputSource protocol.InputSource

	// NumPatterns is the number of LUT slots to program (1-3)
	NumPatterns int

	// Trigger is the pattern trigger mode
	Trigger protocol.TriggerMode

	// Period is the exposure and frame period in microseconds.
	// Zero derives it from Rate.
	Period uint32

	// Rate is the pattern rate used when Period is zero
	Rate physic.Frequency

	// BitDepth is the bit depth of every pattern
	BitDepth protocol.BitDepth

	// LEDs selects the LEDs for every pattern
	LEDs byte

	// FirstTrigger is the trigger type of the first LUT slot. The following
	// slots continue without an input trigger.
	FirstTrigger protocol.TriggerType
}

// DefaultPatternModeOptions returns three 7-bit patterns from the video port,
// triggered on VSYNC at 222 Hz with all LEDs on.
func DefaultPatternModeOptions() PatternModeOptions {
	return PatternModeOptions{
		InputSource:  protocol.SourceVideo,
		NumPatterns:  MaxPatterns,
		Trigger:      protocol.TriggerVSync,
		Rate:         222 * physic.Hertz,
		BitDepth:     7,
		LEDs:         protocol.LEDAll,
		FirstTrigger: protocol.TriggerInternal,
	}
}

// period returns the configured period, deriving it from Rate if unset.
func (o PatternModeOptions) period() (uint32, error) {
	if o.Period != 0 {
		return o.Period, nil
	}
	return RateToPeriod(o.Rate)
}

// entries builds the LUT entries, one per slot.
func (o PatternModeOptions) entries() ([]protocol.PatternLUTEntry, error) {
	if o.NumPatterns < 1 || o.NumPatterns > MaxPatterns {
		return nil, &protocol.EncodingError{
			Field:  "number of patterns",
			Value:  uint64(o.NumPatterns),
			Reason: fmt.Sprintf("must be 1-%d", MaxPatterns),
		}
	}

	indices, ok := PatternIndices[o.BitDepth]
	if !ok {
		return nil, &protocol.EncodingError{
			Field:  "bit depth",
			Value:  uint64(o.BitDepth),
			Reason: "must be one of 1, 2, 4, 7, 8",
		}
	}

	entries := make([]protocol.PatternLUTEntry, o.NumPatterns)
	for i := range entries {
		trigger := protocol.TriggerNone
		if i == 0 {
			trigger = o.FirstTrigger
		}

		entries[i] = protocol.PatternLUTEntry{
			Trigger:      trigger,
			PatternIndex: indices[i],
			BitDepth:     o.BitDepth,
			LEDs:         o.LEDs,
		}
		if err := entries[i].Validate(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// FPSToPeriod converts a frame rate to a period in microseconds, rounding down.
// It returns 0 for a zero rate.
func FPSToPeriod(fps uint) uint32 {
	if fps == 0 {
		return 0
	}
	return uint32(1_000_000 / fps)
}

// RateToPeriod converts a frequency to a period in microseconds, rounding down.
func RateToPeriod(f physic.Frequency) (uint32, error) {
	if f <= 0 {
		return 0, &protocol.EncodingError{Field: "rate", Reason: "must be positive"}
	}

	// physic.Frequency counts micro-hertz
	us := int64(physic.Hertz) * 1_000_000 / int64(f)
	if us < 1 || us > math.MaxUint32 {
		return 0, &protocol.EncodingError{
			Field:  "period",
			Value:  uint64(us),
			Reason: fmt.Sprintf("rate %s out of range", f),
		}
	}
	return uint32(us), nil
}

// step is one command or group of commands in a procedure.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes steps in order, reporting progress after each one.
func (c *Controller) runSteps(ctx context.Context, procedure string, steps []step) error {
	start := time.Now()
	total := len(steps)

	c.logInfo("procedure started", "procedure", procedure, "steps", total)

	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s cancelled: %w", procedure, err)
		}

		if err := s.run(ctx); err != nil {
			c.logError("procedure failed", "procedure", procedure, "step", s.name, "error", err)
			return fmt.Errorf("%s: %w", procedure, err)
		}

		c.reportProgress(Progress{
			Step:        s.name,
			Current:     i + 1,
			Total:       total,
			Percentage:  float64(i+1) * 100 / float64(total),
			ElapsedTime: time.Since(start),
		})
	}

	c.reportProgress(Progress{
		Step:        StepComplete,
		Current:     total,
		Total:       total,
		Percentage:  100,
		ElapsedTime: time.Since(start),
	})

	c.logInfo("procedure complete", "procedure", procedure, "elapsed", time.Since(start))
	return nil
}

// PatternMode stops the sequence, programs the pattern LUT and starts it:
//  1. Stop the pattern sequence
//  2. Select pattern display mode
//  3. Select the input source
//  4. Configure NumPatterns LUT entries, repeating
//  5. Select the trigger mode
//  6. Set exposure and frame period
//  7. Open the pattern mailbox
//  8. Write one LUT entry per slot and close the mailbox
//  9. Validate the LUT and start the sequence
//
// Every option is validated before the first command is sent. Validation
// problems reported by the controller are logged, not returned.
//
// Example:
//
//	opts := controller.DefaultPatternModeOptions()
//	opts.Rate = 120 * physic.Hertz
//	err := ctl.PatternMode(ctx, opts)
func (c *Controller) PatternMode(ctx context.Context, opts PatternModeOptions) error {
	if !opts.InputSource.Valid() {
		return &protocol.EncodingError{Field: "input source", Value: uint64(opts.InputSource), Reason: "unknown input source"}
	}
	if !opts.Trigger.Valid() {
		return &protocol.EncodingError{Field: "trigger mode", Value: uint64(opts.Trigger), Reason: "unknown trigger mode"}
	}
	period, err := opts.period()
	if err != nil {
		return err
	}
	entries, err := opts.entries()
	if err != nil {
		return err
	}

	c.logDebug("pattern mode",
		"source", opts.InputSource.String(),
		"patterns", opts.NumPatterns,
		"trigger", opts.Trigger.String(),
		"period_us", period,
		"bit_depth", int(opts.BitDepth),
		"leds", fmt.Sprintf("0b%03b", opts.LEDs),
	)

	steps := []step{
		{StepStop, func(ctx context.Context) error {
			return c.PatternDisplay(ctx, protocol.ActionStop)
		}},
		{StepDisplayMode, func(ctx context.Context) error {
			return c.SetDisplayMode(ctx, protocol.DisplayPattern)
		}},
		{StepInputSource, func(ctx context.Context) error {
			return c.SetPatternInputSource(ctx, opts.InputSource)
		}},
		{StepPatternConfig, func(ctx context.Context) error {
			return c.SetPatternConfig(ctx, protocol.PatternConfig{
				NumLUTEntries:          opts.NumPatterns,
				Repeat:                 true,
				NumPatternsForTrigOut2: opts.NumPatterns,
				NumImages:              0,
			})
		}},
		{StepTriggerMode, func(ctx context.Context) error {
			return c.SetPatternTriggerMode(ctx, opts.Trigger)
		}},
		{StepPeriod, func(ctx context.Context) error {
			return c.SetExposureFramePeriod(ctx, period, period)
		}},
		{StepOpenMailbox, func(ctx context.Context) error {
			return c.OpenMailbox(ctx, protocol.MailboxPattern)
		}},
	}

	for i, entry := range entries {
		slot, entry := byte(i), entry
		steps = append(steps, step{StepLUTEntry, func(ctx context.Context) error {
			if err := c.MailboxSetAddress(ctx, slot); err != nil {
				return err
			}
			return c.SendPatternLUT(ctx, entry)
		}})
	}

	steps = append(steps,
		step{StepCloseMailbox, func(ctx context.Context) error {
			return c.OpenMailbox(ctx, protocol.MailboxClosed)
		}},
		step{StepValidate, c.validate},
		step{StepStart, func(ctx context.Context) error {
			return c.PatternDisplay(ctx, protocol.ActionStart)
		}},
		// The controller needs a second start after switching in from video mode.
		step{StepStart, func(ctx context.Context) error {
			return c.PatternDisplay(ctx, protocol.ActionStart)
		}},
	)

	return c.runSteps(ctx, "pattern mode", steps)
}

// validate runs the LUT validation and logs the outcome.
func (c *Controller) validate(ctx context.Context) error {
	v, err := c.StartPatternLUTValidate(ctx)
	if err != nil {
		if !c.config.StrictReplies && IsRecoverable(err) {
			c.logError("lut validation result unavailable", "error", err)
			return nil
		}
		return err
	}

	switch {
	case !v.OK():
		c.logError("pattern lut validation failed", "result", v.String())
	case v.TrigOutOverlap || v.BlackFillWarning || v.Busy:
		c.logInfo("pattern lut validation warnings", "result", v.String())
	default:
		c.logDebug("pattern lut valid")
	}
	return nil
}

// VideoMode stops the pattern sequence and switches to video display.
func (c *Controller) VideoMode(ctx context.Context) error {
	return c.runSteps(ctx, "video mode", []step{
		{StepStop, func(ctx context.Context) error {
			return c.PatternDisplay(ctx, protocol.ActionStop)
		}},
		{StepDisplayMode, func(ctx context.Context) error {
			return c.SetDisplayMode(ctx, protocol.DisplayVideo)
		}},
	})
}

// PowerDown stops the pattern sequence and places the controller in standby.
func (c *Controller) PowerDown(ctx context.Context) error {
	return c.runSteps(ctx, "power down", []step{
		{StepStop, func(ctx context.Context) error {
			return c.PatternDisplay(ctx, protocol.ActionStop)
		}},
		{StepPowerMode, func(ctx context.Context) error {
			return c.SetPowerMode(ctx, true)
		}},
	})
}

// PowerUp wakes the controller from standby.
func (c *Controller) PowerUp(ctx context.Context) error {
	return c.runSteps(ctx, "power up", []step{
		{StepPowerMode, func(ctx context.Context) error {
			return c.SetPowerMode(ctx, false)
		}},
	})
}

// SetGamma enables or disables gamma correction and returns the main status
// read back afterwards.
func (c *Controller) SetGamma(ctx context.Context, apply bool) (protocol.MainStatus, error) {
	var status protocol.MainStatus

	err := c.runSteps(ctx, "set gamma", []step{
		{StepGamma, func(ctx context.Context) error {
			return c.SetGammaCorrection(ctx, apply)
		}},
		{StepStatus, func(ctx context.Context) error {
			var err error
			status, err = c.GetMainStatus(ctx)
			return err
		}},
	})
	if err != nil {
		return protocol.MainStatus{}, err
	}

	c.logInfo("main status", "status", status.String())
	return status, nil
}

// Status reads the main status register.
func (c *Controller) Status(ctx context.Context) (protocol.MainStatus, error) {
	status, err := c.GetMainStatus(ctx)
	if err != nil {
		return protocol.MainStatus{}, err
	}

	c.logInfo("main status", "status", status.String())
	return status, nil
}
