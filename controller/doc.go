// Package controller provides a high-level API for driving a DLPC350 display
// controller, as found on the TI LightCrafter 4500.
//
// # Overview
//
// The package sends the commands built by the protocol package over a
// Channel and orchestrates the common procedures:
//   - PatternMode: program and start a pattern sequence
//   - VideoMode: return to video display
//   - PowerDown and PowerUp: standby control
//   - SetGamma and Status: gamma correction and main status
//
// # Basic Usage
//
//	err := usb.Do(usb.DefaultOptions(), func(dev *usb.Device) error {
//	    ctl := controller.New(dev)
//	    return ctl.PatternMode(ctx, controller.DefaultPatternModeOptions())
//	})
//
// # Progress Tracking
//
//	ctl := controller.New(dev,
//	    controller.WithProgressCallback(func(p controller.Progress) {
//	        fmt.Printf("[%s] %.0f%%\n", p.Step, p.Percentage)
//	    }),
//	)
//
// # Logging
//
// Any type with Debug, Info and Error methods taking a message and key-value
// pairs can be passed to WithLogger, including *slog.Logger.
//
// # Error Handling
//
// The package provides structured error types:
//   - protocol.EncodingError: a value does not fit its field; nothing was sent
//   - TransportError: the channel failed; Recoverable reports a lost reply
//   - PreconditionError: the command is not accepted in the current state
//   - protocol.CommandError: the controller flagged the command as failed
//
// A failed packet write leaves the controller in an unknown framing state.
// Every later command returns ErrChannelFailed.
//
// # Preconditions
//
// Parameters cannot change while a pattern sequence runs, so the Controller
// tracks the sequence state and the open mailbox it last commanded and
// rejects commands the DLPC350 would ignore. Stopping the sequence and
// closing the mailbox are always accepted.
package controller
