package controller

import (
	"context"
	"fmt"

	"github.com/moffa90/go-lcr4500/protocol"
)

// requireStopped rejects parameter changes while the sequence runs.
// The controller ignores them in that state.
func (c *Controller) requireStopped(op string) error {
	_, seq := c.state()
	if seq == sequenceRunning || seq == sequencePaused {
		return &PreconditionError{
			Op:     op,
			Reason: fmt.Sprintf("pattern sequence is %s; stop it first", seq),
		}
	}
	return nil
}

// SetPowerMode places the controller in standby or returns it to normal operation.
func (c *Controller) SetPowerMode(ctx context.Context, standby bool) error {
	_, err := c.exec(ctx, "set power mode", protocol.BuildPowerModeCmd(standby))
	return err
}

// SetDMDPark parks or unparks the DMD micromirrors.
func (c *Controller) SetDMDPark(ctx context.Context, park bool) error {
	_, err := c.exec(ctx, "set dmd park", protocol.BuildDMDParkCmd(park))
	return err
}

// SetBufferFreeze freezes or releases the displayed frame buffer.
func (c *Controller) SetBufferFreeze(ctx context.Context, freeze bool) error {
	_, err := c.exec(ctx, "set buffer freeze", protocol.BuildBufferFreezeCmd(freeze))
	return err
}

// SetDisplayMode switches between video and pattern display.
func (c *Controller) SetDisplayMode(ctx context.Context, mode protocol.DisplayMode) error {
	cmd, err := protocol.BuildDisplayModeCmd(mode)
	if err != nil {
		return err
	}
	if err := c.requireStopped("set display mode"); err != nil {
		return err
	}

	_, err = c.exec(ctx, "set display mode", cmd)
	return err
}

// SetPatternInputSource selects where pattern data comes from.
func (c *Controller) SetPatternInputSource(ctx context.Context, source protocol.InputSource) error {
	cmd, err := protocol.BuildPatternInputSourceCmd(source)
	if err != nil {
		return err
	}
	if err := c.requireStopped("set pattern input source"); err != nil {
		return err
	}

	_, err = c.exec(ctx, "set pattern input source", cmd)
	return err
}

// SetPatternTriggerMode selects how the pattern sequence is triggered.
func (c *Controller) SetPatternTriggerMode(ctx context.Context, mode protocol.TriggerMode) error {
	cmd, err := protocol.BuildPatternTriggerModeCmd(mode)
	if err != nil {
		return err
	}
	if err := c.requireStopped("set pattern trigger mode"); err != nil {
		return err
	}

	_, err = c.exec(ctx, "set pattern trigger mode", cmd)
	return err
}

// PatternDisplay starts, pauses or stops the pattern sequence.
// It is accepted in every state.
func (c *Controller) PatternDisplay(ctx context.Context, action protocol.PatternAction) error {
	cmd, err := protocol.BuildPatternDisplayCmd(action)
	if err != nil {
		return err
	}

	if _, err := c.exec(ctx, "pattern display "+action.String(), cmd); err != nil {
		return err
	}

	switch action {
	case protocol.ActionStop:
		c.setSequence(sequenceStopped)
	case protocol.ActionPause:
		c.setSequence(sequencePaused)
	case protocol.ActionStart:
		c.setSequence(sequenceRunning)
	}
	return nil
}

// SetExposureFramePeriod sets the pattern exposure time and frame period in
// microseconds.
func (c *Controller) SetExposureFramePeriod(ctx context.Context, exposureUS, frameUS uint32) error {
	cmd, err := protocol.BuildExposureFramePeriodCmd(exposureUS, frameUS)
	if err != nil {
		return err
	}
	if err := c.requireStopped("set exposure/frame period"); err != nil {
		return err
	}

	_, err = c.exec(ctx, "set exposure/frame period", cmd)
	return err
}

// SetPatternConfig sets the number of LUT entries, repeat mode, patterns per
// trigger out 2 period and image index entries.
func (c *Controller) SetPatternConfig(ctx context.Context, cfg protocol.PatternConfig) error {
	cmd, err := protocol.BuildPatternConfigCmd(cfg)
	if err != nil {
		return err
	}
	if err := c.requireStopped("set pattern config"); err != nil {
		return err
	}

	_, err = c.exec(ctx, "set pattern config", cmd)
	return err
}

// OpenMailbox opens the given mailbox, or closes the open one with
// protocol.MailboxClosed. Closing is accepted in every state.
func (c *Controller) OpenMailbox(ctx context.Context, mbox protocol.Mailbox) error {
	cmd, err := protocol.BuildOpenMailboxCmd(mbox)
	if err != nil {
		return err
	}
	if mbox != protocol.MailboxClosed {
		if err := c.requireStopped("open mailbox"); err != nil {
			return err
		}
	}

	if _, err := c.exec(ctx, "open mailbox "+mbox.String(), cmd); err != nil {
		return err
	}

	c.setMailbox(mbox)
	return nil
}

// MailboxSetAddress sets the offset within the open mailbox.
func (c *Controller) MailboxSetAddress(ctx context.Context, address byte) error {
	cmd, err := protocol.BuildMailboxAddressCmd(address)
	if err != nil {
		return err
	}

	mbox, _ := c.state()
	if mbox == protocol.MailboxClosed {
		return &PreconditionError{Op: "set mailbox address", Reason: "no mailbox is open"}
	}
	if err := c.requireStopped("set mailbox address"); err != nil {
		return err
	}

	_, err = c.exec(ctx, "set mailbox address", cmd)
	return err
}

// SendPatternLUT writes one pattern LUT entry at the current mailbox address.
// The pattern mailbox must be open.
func (c *Controller) SendPatternLUT(ctx context.Context, entry protocol.PatternLUTEntry) error {
	cmd, err := protocol.BuildPatternLUTCmd(entry)
	if err != nil {
		return err
	}

	mbox, _ := c.state()
	if mbox != protocol.MailboxPattern {
		return &PreconditionError{
			Op:     "send pattern lut",
			Reason: fmt.Sprintf("pattern mailbox is not open (mailbox %s)", mbox),
		}
	}
	if err := c.requireStopped("send pattern lut"); err != nil {
		return err
	}

	_, err = c.exec(ctx, "send pattern lut", cmd)
	return err
}

// StartPatternLUTValidate validates the programmed pattern LUT and returns
// the decoded result. The result is read from the reply, so a missing reply
// is always an error.
func (c *Controller) StartPatternLUTValidate(ctx context.Context) (protocol.LUTValidation, error) {
	reply, err := c.query(ctx, "validate pattern lut", protocol.BuildValidateLUTCmd())
	if err != nil {
		return protocol.LUTValidation{}, err
	}
	return reply.LUTValidation(), nil
}

// SetGammaCorrection enables or disables gamma correction. It only affects
// video mode.
func (c *Controller) SetGammaCorrection(ctx context.Context, apply bool) error {
	_, err := c.exec(ctx, "set gamma correction", protocol.BuildGammaCorrectionCmd(apply))
	return err
}

// GetMainStatus reads the main status register.
func (c *Controller) GetMainStatus(ctx context.Context) (protocol.MainStatus, error) {
	reply, err := c.query(ctx, "get main status", protocol.BuildMainStatusCmd())
	if err != nil {
		return protocol.MainStatus{}, err
	}
	return reply.MainStatus(), nil
}
