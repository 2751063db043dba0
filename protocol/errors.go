package protocol

import (
	"errors"
	"fmt"
)

// EncodingError reports a value that cannot be encoded: it exceeds its
// declared bit width, falls outside its allowed range, or names an unknown
// mode. It is always returned before any bytes are sent.
type EncodingError struct {
	// Field names the parameter being encoded
	Field string

	// Value is the rejected numeric value (unused when Name is set)
	Value uint64

	// Name is the rejected mode or action name, if the input was textual
	Name string

	// Width is the declared field width in bits, if the value overflowed it
	Width uint

	// Reason describes the constraint that was violated
	Reason string
}

func (e *EncodingError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("encode %s: %q: %s", e.Field, e.Name, e.Reason)
	case e.Width > 0:
		return fmt.Sprintf("encode %s: value %d does not fit in %d bits", e.Field, e.Value, e.Width)
	default:
		return fmt.Sprintf("encode %s: value %d: %s", e.Field, e.Value, e.Reason)
	}
}

// IsEncodingError returns true if err is or wraps an EncodingError.
func IsEncodingError(err error) bool {
	var e *EncodingError
	return errors.As(err, &e)
}

// CommandError reports that the controller set the error flag in its reply.
type CommandError struct {
	// Command is the command that failed
	Command Command

	// Flags is the reply flag byte
	Flags byte
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("controller rejected command 0x%02X/0x%02X (flags 0x%02X)",
		e.Command.Selector1, e.Command.Selector2, e.Flags)
}
