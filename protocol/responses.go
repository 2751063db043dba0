package protocol

import (
	"encoding/binary"
	"fmt"
)

// Reply is the fixed-size status buffer read back after every command.
// Only specific offsets carry meaning for a given command.
type Reply [ReplySize]byte

// ParseReply copies a raw reply into a Reply. The buffer must be exactly ReplySize bytes.
func ParseReply(buf []byte) (Reply, error) {
	var r Reply
	if len(buf) != ReplySize {
		return r, fmt.Errorf("invalid reply length: got %d bytes, expected %d", len(buf), ReplySize)
	}
	copy(r[:], buf)
	return r, nil
}

// Flags returns the general status byte.
func (r Reply) Flags() byte {
	return r[ReplyFlagsOffset]
}

// Failed reports whether the controller set the error flag.
func (r Reply) Failed() bool {
	return r[ReplyFlagsOffset]&FlagError != 0
}

// Sequence returns the echoed sequence tag.
func (r Reply) Sequence() byte {
	return r[ReplySequenceOffset]
}

// Length returns the reply data length field.
func (r Reply) Length() uint16 {
	return binary.LittleEndian.Uint16(r[2:4])
}

// MainStatus decodes the main status flags at byte 4.
//
//	bit 0: DMD parked
//	bit 1: sequencer running
//	bit 2: frame buffer frozen
//	bit 3: gamma correction enabled
func (r Reply) MainStatus() MainStatus {
	b := r[ReplyMainStatusOffset]
	return MainStatus{
		Parked:           b&(1<<0) != 0,
		SequencerRunning: b&(1<<1) != 0,
		BufferFrozen:     b&(1<<2) != 0,
		GammaEnabled:     b&(1<<3) != 0,
	}
}

// LUTValidation decodes the pattern LUT validation flags at byte 6.
//
//	bit 0: exposure or frame period invalid
//	bit 1: pattern number invalid
//	bit 2: trigger out 1 continue overlap warning
//	bit 3: post-vector black-fill warning
//	bit 4: validation in progress
func (r Reply) LUTValidation() LUTValidation {
	b := r[ReplyValidationOffset]
	return LUTValidation{
		InvalidPeriod:        b&(1<<0) != 0,
		InvalidPatternNumber: b&(1<<1) != 0,
		TrigOutOverlap:       b&(1<<2) != 0,
		BlackFillWarning:     b&(1<<3) != 0,
		Busy:                 b&(1<<4) != 0,
	}
}

// Err returns a CommandError if the controller flagged cmd as failed.
func (r Reply) Err(cmd Command) error {
	if r.Failed() {
		return &CommandError{Command: cmd, Flags: r.Flags()}
	}
	return nil
}
