package protocol

import (
	"fmt"
	"strings"
)

// Direction selects whether a command reads from or writes to the controller.
type Direction byte

const (
	// Write sends configuration to the controller
	Write Direction = iota

	// Read requests data from the controller
	Read
)

func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}

// flag returns the header flag byte for the direction.
func (d Direction) flag() byte {
	if d == Read {
		return FlagRead
	}
	return FlagWrite
}

// Command is a single DLPC350 command before framing.
type Command struct {
	// Direction selects the read or write flag byte
	Direction Direction

	// Sequence is a caller-chosen tag echoed by the controller; it need not be unique
	Sequence byte

	// Selector1 is the CMD2 byte
	Selector1 byte

	// Selector2 is the CMD3 byte, sent before Selector1
	Selector2 byte

	// Payload is the command data
	Payload []byte
}

func (c Command) String() string {
	return fmt.Sprintf("%s 0x%02X/0x%02X seq=0x%02X len=%d",
		c.Direction, c.Selector1, c.Selector2, c.Sequence, len(c.Payload))
}

// DisplayMode selects what the DMD shows.
type DisplayMode byte

const (
	// DisplayVideo shows continuous video from the selected input
	DisplayVideo DisplayMode = 0

	// DisplayPattern shows the programmed pattern sequence
	DisplayPattern DisplayMode = 1
)

var displayModeNames = map[DisplayMode]string{
	DisplayVideo:   "video",
	DisplayPattern: "pattern",
}

func (m DisplayMode) String() string {
	return enumName(displayModeNames, m)
}

// Valid reports whether m is a known display mode.
func (m DisplayMode) Valid() bool {
	_, ok := displayModeNames[m]
	return ok
}

// ParseDisplayMode converts "video" or "pattern" to a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	return parseEnum("display mode", displayModeNames, s)
}

// InputSource selects where pattern data comes from.
type InputSource byte

const (
	// SourceVideo takes pattern data from the external video port
	SourceVideo InputSource = 0

	// SourceFlash takes pattern data from internal flash
	SourceFlash InputSource = 3
)

var inputSourceNames = map[InputSource]string{
	SourceVideo: "video",
	SourceFlash: "flash",
}

func (s InputSource) String() string {
	return enumName(inputSourceNames, s)
}

// Valid reports whether s is a known input source.
func (s InputSource) Valid() bool {
	_, ok := inputSourceNames[s]
	return ok
}

// ParseInputSource converts "video" or "flash" to an InputSource.
func ParseInputSource(s string) (InputSource, error) {
	return parseEnum("input source", inputSourceNames, s)
}

// TriggerMode selects how the pattern sequence is triggered.
type TriggerMode byte

const (
	// TriggerVSync advances the sequence on the video VSYNC
	TriggerVSync TriggerMode = 0
)

var triggerModeNames = map[TriggerMode]string{
	TriggerVSync: "vsync",
}

func (m TriggerMode) String() string {
	return enumName(triggerModeNames, m)
}

// Valid reports whether m is a known trigger mode.
func (m TriggerMode) Valid() bool {
	_, ok := triggerModeNames[m]
	return ok
}

// ParseTriggerMode converts "vsync" to a TriggerMode.
func ParseTriggerMode(s string) (TriggerMode, error) {
	return parseEnum("trigger mode", triggerModeNames, s)
}

// PatternAction starts, pauses or stops the pattern sequence.
type PatternAction byte

const (
	// ActionStop stops the sequence; the next start restarts from the beginning
	ActionStop PatternAction = 0

	// ActionPause pauses the sequence; the next start re-displays the current pattern
	ActionPause PatternAction = 1

	// ActionStart starts the sequence
	ActionStart PatternAction = 2
)

var patternActionNames = map[PatternAction]string{
	ActionStop:  "stop",
	ActionPause: "pause",
	ActionStart: "start",
}

func (a PatternAction) String() string {
	return enumName(patternActionNames, a)
}

// Valid reports whether a is a known pattern action.
func (a PatternAction) Valid() bool {
	_, ok := patternActionNames[a]
	return ok
}

// ParsePatternAction converts "stop", "pause" or "start" to a PatternAction.
func ParsePatternAction(s string) (PatternAction, error) {
	return parseEnum("pattern action", patternActionNames, s)
}

// Mailbox selects a controller-side mailbox.
type Mailbox byte

const (
	// MailboxClosed disables (closes) the mailboxes
	MailboxClosed Mailbox = 0

	// MailboxImageIndex opens the image index mailbox
	MailboxImageIndex Mailbox = 1

	// MailboxPattern opens the pattern definition mailbox
	MailboxPattern Mailbox = 2

	// MailboxVariableExposure opens the variable exposure mailbox
	MailboxVariableExposure Mailbox = 3
)

var mailboxNames = map[Mailbox]string{
	MailboxClosed:           "closed",
	MailboxImageIndex:       "image-index",
	MailboxPattern:          "pattern",
	MailboxVariableExposure: "variable-exposure",
}

func (m Mailbox) String() string {
	return enumName(mailboxNames, m)
}

// Valid reports whether m is a known mailbox.
func (m Mailbox) Valid() bool {
	_, ok := mailboxNames[m]
	return ok
}

// TriggerType is the per-entry trigger of a pattern LUT entry (2 bits).
type TriggerType byte

const (
	// TriggerInternal uses the internal trigger
	TriggerInternal TriggerType = 0

	// TriggerExternalPositive triggers on a positive edge
	TriggerExternalPositive TriggerType = 1

	// TriggerExternalNegative triggers on a negative edge
	TriggerExternalNegative TriggerType = 2

	// TriggerNone continues from the previous pattern with no input trigger
	TriggerNone TriggerType = 3
)

var triggerTypeNames = map[TriggerType]string{
	TriggerInternal:         "internal",
	TriggerExternalPositive: "external-positive",
	TriggerExternalNegative: "external-negative",
	TriggerNone:             "none",
}

func (t TriggerType) String() string {
	return enumName(triggerTypeNames, t)
}

// Valid reports whether t is a known trigger type.
func (t TriggerType) Valid() bool {
	_, ok := triggerTypeNames[t]
	return ok
}

// ParseTriggerType converts a trigger type name to a TriggerType.
func ParseTriggerType(s string) (TriggerType, error) {
	return parseEnum("trigger type", triggerTypeNames, s)
}

// BitDepth is the bit depth of a pattern. Only 1, 2, 4, 7 and 8 are accepted.
type BitDepth byte

// Valid reports whether d is an accepted bit depth.
func (d BitDepth) Valid() bool {
	switch d {
	case 1, 2, 4, 7, 8:
		return true
	}
	return false
}

// LED selection bit flags for a pattern LUT entry.
const (
	LEDRed   byte = 1 << 0
	LEDGreen byte = 1 << 1
	LEDBlue  byte = 1 << 2

	// LEDAll turns on red, green and blue
	LEDAll = LEDRed | LEDGreen | LEDBlue
)

// PatternLUTEntry is one entry of the pattern lookup table.
// See table 2-65 of the DLPC350 programmer's guide.
type PatternLUTEntry struct {
	// Trigger is the trigger type for the pattern
	Trigger TriggerType

	// PatternIndex is the 0-based pattern number; NoPattern displays nothing
	PatternIndex byte

	// BitDepth is the pattern bit depth
	BitDepth BitDepth

	// LEDs selects the LEDs that are on (LEDRed, LEDGreen, LEDBlue)
	LEDs byte

	// Invert inverts the pattern
	Invert bool

	// InsertBlack inserts a black-fill pattern after the current pattern
	InsertBlack bool

	// BufferSwap performs a buffer swap
	BufferSwap bool

	// TriggerOutPrevious keeps Trigger Out 1 high across the previous pattern
	TriggerOutPrevious bool
}

// Validate checks every field against its allowed range.
func (e PatternLUTEntry) Validate() error {
	if !e.Trigger.Valid() {
		return &EncodingError{Field: "trigger type", Value: uint64(e.Trigger), Reason: "unknown trigger type"}
	}
	if e.PatternIndex > MaxPatternIndex {
		return &EncodingError{Field: "pattern index", Value: uint64(e.PatternIndex), Reason: "must be 0-63"}
	}
	if !e.BitDepth.Valid() {
		return &EncodingError{Field: "bit depth", Value: uint64(e.BitDepth), Reason: "must be one of 1, 2, 4, 7, 8"}
	}
	if e.LEDs > MaxLEDSelect {
		return &EncodingError{Field: "led select", Value: uint64(e.LEDs), Reason: "must be a 3-bit mask"}
	}
	return nil
}

// PatternConfig controls the execution of the pattern LUT.
type PatternConfig struct {
	// NumLUTEntries is the number of LUT entries (1-128)
	NumLUTEntries int

	// Repeat repeats the pattern sequence
	Repeat bool

	// NumPatternsForTrigOut2 is the number of patterns per TRIG_OUT_2 period (1-256)
	NumPatternsForTrigOut2 int

	// NumImages is the number of image index LUT entries (0-63)
	NumImages int
}

// MainStatus is the decoded main status register.
type MainStatus struct {
	// Parked reports that the DMD micromirrors are parked
	Parked bool

	// SequencerRunning reports that the sequencer is running normally
	SequencerRunning bool

	// BufferFrozen reports that the frame buffer is frozen
	BufferFrozen bool

	// GammaEnabled reports that gamma correction is enabled
	GammaEnabled bool
}

func (s MainStatus) String() string {
	return fmt.Sprintf("parked=%t sequencer=%t frozen=%t gamma=%t",
		s.Parked, s.SequencerRunning, s.BufferFrozen, s.GammaEnabled)
}

// LUTValidation is the decoded result of a pattern LUT validation.
type LUTValidation struct {
	// InvalidPeriod reports invalid exposure or frame period settings
	InvalidPeriod bool

	// InvalidPatternNumber reports an invalid pattern number in the LUT
	InvalidPatternNumber bool

	// TrigOutOverlap warns that Trigger Out 1 continue overlaps a black-fill
	TrigOutOverlap bool

	// BlackFillWarning warns about post-vector black-fill settings
	BlackFillWarning bool

	// Busy reports that validation is still in progress
	Busy bool
}

// OK reports whether the LUT passed validation.
func (v LUTValidation) OK() bool {
	return !v.InvalidPeriod && !v.InvalidPatternNumber
}

func (v LUTValidation) String() string {
	var problems []string
	if v.InvalidPeriod {
		problems = append(problems, "invalid exposure/frame period")
	}
	if v.InvalidPatternNumber {
		problems = append(problems, "invalid pattern number")
	}
	if v.TrigOutOverlap {
		problems = append(problems, "trigger out 1 overlap")
	}
	if v.BlackFillWarning {
		problems = append(problems, "black-fill warning")
	}
	if v.Busy {
		problems = append(problems, "busy")
	}
	if len(problems) == 0 {
		return "valid"
	}
	return strings.Join(problems, ", ")
}

func enumName[T ~byte](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", byte(v))
}

func parseEnum[T ~byte](field string, names map[T]string, s string) (T, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for v, name := range names {
		if name == want {
			return v, nil
		}
	}
	return 0, &EncodingError{Field: field, Name: s, Reason: "unrecognized name"}
}
