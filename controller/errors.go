package controller

import (
	"errors"
	"fmt"
)

// ErrChannelFailed is returned for every command issued after a packet write
// failed. The framing state of the controller is unknown at that point, so no
// further commands are encoded onto the same channel.
var ErrChannelFailed = errors.New("channel failed on an earlier write")

// TransportError wraps a failure of the underlying channel.
type TransportError struct {
	// Op is "write" or "read"
	Op string

	// Endpoint is the USB endpoint involved
	Endpoint byte

	// Packet is the index of the packet being written (write errors only)
	Packet int

	// Transmitted reports that every packet of the command was written
	// before the failure
	Transmitted bool

	// Err is the underlying channel error
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "write" {
		return fmt.Sprintf("write packet %d to endpoint 0x%02X: %v", e.Packet, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s endpoint 0x%02X: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the command reached the controller despite the
// error, which is the case for reply read failures.
func (e *TransportError) Recoverable() bool {
	return e.Transmitted
}

// PreconditionError indicates that a command was issued in a state where the
// controller would ignore or misapply it.
type PreconditionError struct {
	// Op is the operation that was rejected
	Op string

	// Reason describes the unmet precondition
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// IsRecoverable returns true if err wraps a TransportError raised after the
// command was fully transmitted.
func IsRecoverable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Recoverable()
}
