package protocol

// writeCmd returns a write command with the given selectors and payload.
func writeCmd(sel1, sel2 byte, payload []byte) Command {
	return Command{
		Direction: Write,
		Selector1: sel1,
		Selector2: sel2,
		Payload:   payload,
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// BuildPowerModeCmd constructs a Power Control command.
// Standby places the controller in a low-power state and powers down the DMD
// interface; it must be disabled before sending any new data.
//
// Payload: [STANDBY]
func BuildPowerModeCmd(standby bool) Command {
	return writeCmd(SelPowerControl1, SelPowerControl2, []byte{boolByte(standby)})
}

// BuildDMDParkCmd constructs a DMD Park command.
//
// Payload: [PARK]
func BuildDMDParkCmd(park bool) Command {
	return writeCmd(SelDMDPark1, SelDMDPark2, []byte{boolByte(park)})
}

// BuildBufferFreezeCmd constructs a Display Buffer Freeze command.
//
// Payload: [FREEZE]
func BuildBufferFreezeCmd(freeze bool) Command {
	return writeCmd(SelBufferFreeze1, SelBufferFreeze2, []byte{boolByte(freeze)})
}

// BuildDisplayModeCmd constructs a Display Mode Selection command.
//
// Payload: [MODE] (0 = video, 1 = pattern)
func BuildDisplayModeCmd(mode DisplayMode) (Command, error) {
	if !mode.Valid() {
		return Command{}, &EncodingError{Field: "display mode", Value: uint64(mode), Reason: "unknown display mode"}
	}
	return writeCmd(SelDisplayMode1, SelDisplayMode2, []byte{byte(mode)}), nil
}

// BuildPatternInputSourceCmd constructs a Pattern Display Data Input Source command.
//
// Payload: [SOURCE] (0 = video, 3 = flash)
func BuildPatternInputSourceCmd(source InputSource) (Command, error) {
	if !source.Valid() {
		return Command{}, &EncodingError{Field: "input source", Value: uint64(source), Reason: "unknown input source"}
	}
	return writeCmd(SelPatternInputSource1, SelPatternInputSource2, []byte{byte(source)}), nil
}

// BuildPatternTriggerModeCmd constructs a Pattern Trigger Mode Selection command.
//
// Payload: [MODE] (0 = vsync)
func BuildPatternTriggerModeCmd(mode TriggerMode) (Command, error) {
	if !mode.Valid() {
		return Command{}, &EncodingError{Field: "trigger mode", Value: uint64(mode), Reason: "unknown trigger mode"}
	}
	return writeCmd(SelPatternTriggerMode1, SelPatternTriggerMode2, []byte{byte(mode)}), nil
}

// BuildPatternDisplayCmd constructs a Pattern Display Start/Stop command.
//
// Payload: [ACTION] (0 = stop, 1 = pause, 2 = start)
func BuildPatternDisplayCmd(action PatternAction) (Command, error) {
	if !action.Valid() {
		return Command{}, &EncodingError{Field: "pattern action", Value: uint64(action), Reason: "unknown pattern action"}
	}
	return writeCmd(SelPatternDisplay1, SelPatternDisplay2, []byte{byte(action)}), nil
}

// BuildExposureFramePeriodCmd constructs a Pattern Exposure Time and Frame Period command.
// Either the exposure equals the frame period or it is shorter by at least 230 µs.
//
// Fields, most significant first, then byte-reversed:
//
//	[FRAME_PERIOD(32)][EXPOSURE(32)]
//
// On the wire this is EXPOSURE then FRAME_PERIOD, each little-endian.
func BuildExposureFramePeriodCmd(exposureUS, frameUS uint32) (Command, error) {
	frame, err := field("frame period", uint64(frameUS), 32)
	if err != nil {
		return Command{}, err
	}
	exposure, err := field("exposure period", uint64(exposureUS), 32)
	if err != nil {
		return Command{}, err
	}

	payload, err := packLE(frame, exposure)
	if err != nil {
		return Command{}, err
	}
	return writeCmd(SelExposureFramePeriod1, SelExposureFramePeriod2, payload), nil
}

// BuildPatternConfigCmd constructs a Pattern Display LUT Control command.
//
// Fields, most significant first, then byte-reversed:
//
//	[RSVD(2)][NUM_IMAGES(6)][NUM_PATS-1(8)][RSVD(7)][REPEAT(1)][RSVD(1)][NUM_ENTRIES-1(7)]
func BuildPatternConfigCmd(cfg PatternConfig) (Command, error) {
	if cfg.NumLUTEntries < 1 || cfg.NumLUTEntries > MaxLUTEntries {
		return Command{}, &EncodingError{Field: "lut entries", Value: uint64(cfg.NumLUTEntries), Reason: "must be 1-128"}
	}
	if cfg.NumPatternsForTrigOut2 < 1 || cfg.NumPatternsForTrigOut2 > MaxPatternsForTrigOut2 {
		return Command{}, &EncodingError{Field: "patterns for trig out 2", Value: uint64(cfg.NumPatternsForTrigOut2), Reason: "must be 1-256"}
	}
	if cfg.NumImages < 0 {
		return Command{}, &EncodingError{Field: "image entries", Value: uint64(cfg.NumImages), Reason: "must be 0-63"}
	}

	images, err := field("image entries", uint64(cfg.NumImages), 6)
	if err != nil {
		return Command{}, err
	}
	pats, err := field("patterns for trig out 2", uint64(cfg.NumPatternsForTrigOut2-1), 8)
	if err != nil {
		return Command{}, err
	}
	entries, err := field("lut entries", uint64(cfg.NumLUTEntries-1), 7)
	if err != nil {
		return Command{}, err
	}

	payload, err := packLE(
		Reserved(2), images,
		pats,
		Reserved(7), Flag(cfg.Repeat),
		Reserved(1), entries,
	)
	if err != nil {
		return Command{}, err
	}
	return writeCmd(SelPatternConfig1, SelPatternConfig2, payload), nil
}

// BuildMailboxAddressCmd constructs a Mailbox Address command.
// The address is the offset within the open mailbox (0-127).
//
// Payload: [ADDRESS]
func BuildMailboxAddressCmd(address byte) (Command, error) {
	if address > MaxMailboxAddress {
		return Command{}, &EncodingError{Field: "mailbox address", Value: uint64(address), Width: 7}
	}
	return writeCmd(SelMailboxAddress1, SelMailboxAddress2, []byte{address}), nil
}

// BuildOpenMailboxCmd constructs a Mailbox Access Control command.
//
// Payload: [MAILBOX] (0 = close, 1 = image index, 2 = pattern, 3 = variable exposure)
func BuildOpenMailboxCmd(mbox Mailbox) (Command, error) {
	if !mbox.Valid() {
		return Command{}, &EncodingError{Field: "mailbox", Value: uint64(mbox), Reason: "unknown mailbox"}
	}
	return writeCmd(SelMailboxControl1, SelMailboxControl2, []byte{byte(mbox)}), nil
}

// BuildPatternLUTCmd constructs a Pattern LUT Definition command for the open pattern mailbox.
//
// Fields, most significant first, then byte-reversed:
//
//	byte 2: [RSVD(4)][TRIG_OUT_PREV][BUF_SWAP][INSERT_BLACK][INVERT]
//	byte 1: [LED_SELECT(4)][BIT_DEPTH(4)]
//	byte 0: [PATTERN(6)][TRIGGER(2)]
func BuildPatternLUTCmd(entry PatternLUTEntry) (Command, error) {
	if err := entry.Validate(); err != nil {
		return Command{}, err
	}

	leds, err := field("led select", uint64(entry.LEDs), 4)
	if err != nil {
		return Command{}, err
	}
	depth, err := field("bit depth", uint64(entry.BitDepth), 4)
	if err != nil {
		return Command{}, err
	}
	pattern, err := field("pattern index", uint64(entry.PatternIndex), 6)
	if err != nil {
		return Command{}, err
	}
	trigger, err := field("trigger type", uint64(entry.Trigger), 2)
	if err != nil {
		return Command{}, err
	}

	payload, err := packLE(
		Reserved(4),
		Flag(entry.TriggerOutPrevious),
		Flag(entry.BufferSwap),
		Flag(entry.InsertBlack),
		Flag(entry.Invert),
		leds,
		depth,
		pattern,
		trigger,
	)
	if err != nil {
		return Command{}, err
	}
	return writeCmd(SelPatternLUT1, SelPatternLUT2, payload), nil
}

// BuildValidateLUTCmd constructs a Validate Data command.
// It must be sent after all pattern display configuration is complete.
//
// Payload: [0x00]
func BuildValidateLUTCmd() Command {
	return writeCmd(SelValidateLUT1, SelValidateLUT2, []byte{0x00})
}

// BuildGammaCorrectionCmd constructs a Gamma Correction command. It only
// takes effect in video mode.
//
// Payload: [ENABLE(1)][RSVD(7)]
func BuildGammaCorrectionCmd(apply bool) Command {
	b, _ := Concat(Flag(apply), Reserved(7))
	return writeCmd(SelGammaCorrection1, SelGammaCorrection2, b.Bytes(true))
}

// BuildMainStatusCmd constructs a Main Status read command.
//
// Payload: none
func BuildMainStatusCmd() Command {
	return Command{
		Direction: Read,
		Selector1: SelMainStatus1,
		Selector2: SelMainStatus2,
		Payload:   []byte{},
	}
}
