package protocol

// Packet structure constants for the DLPC350 USB command interface.
const (
	// PacketSize is the size of every USB packet sent to or read from the controller
	PacketSize = 64

	// HeaderSize is the command header size in bytes:
	// FLAGS(1) + SEQ(1) + LEN(2) + CMD3(1) + CMD2(1)
	HeaderSize = 6

	// FirstPacketPayload is the number of payload bytes carried by the first
	// packet of a multi-packet command (PacketSize - HeaderSize)
	FirstPacketPayload = PacketSize - HeaderSize

	// MaxPayloadSize is the largest payload whose length field (len+2) fits in 16 bits
	MaxPayloadSize = 0xFFFF - 2

	// ReplySize is the size of the status reply read after every command
	ReplySize = PacketSize
)

// Flag byte values. Bit 7 selects read, bit 6 requests a reply.
const (
	// FlagRead is the header flag byte for read commands (0b11000000)
	FlagRead = 0xC0

	// FlagWrite is the header flag byte for write commands (0b01000000)
	FlagWrite = 0x40

	// FlagError is set by the controller in the reply flag byte when a command failed
	FlagError = 0x20
)

// USB endpoints used by the controller.
const (
	// EndpointOut receives command packets
	EndpointOut = 0x01

	// EndpointIn returns status replies
	EndpointIn = 0x81
)

// Command selector pairs (CMD2/CMD3 in the DLPC350 programmer's guide).
// Selector1 is CMD2, Selector2 is CMD3; CMD3 precedes CMD2 on the wire.
const (
	// SelPowerControl places the controller in standby or normal operation
	SelPowerControl1, SelPowerControl2 = 0x02, 0x00

	// SelDMDPark parks or unparks the DMD mirrors
	SelDMDPark1, SelDMDPark2 = 0x06, 0x09

	// SelBufferFreeze disables swapping of the display buffers
	SelBufferFreeze1, SelBufferFreeze2 = 0x10, 0x0A

	// SelMainStatus reads the main status register
	SelMainStatus1, SelMainStatus2 = 0x1A, 0x0C

	// SelGammaCorrection selects the degamma table in video mode
	SelGammaCorrection1, SelGammaCorrection2 = 0x1A, 0x0E

	// SelValidateLUT validates the programmed pattern LUT
	SelValidateLUT1, SelValidateLUT2 = 0x1A, 0x1A

	// SelDisplayMode selects video or pattern display mode
	SelDisplayMode1, SelDisplayMode2 = 0x1A, 0x1B

	// SelPatternInputSource selects the pattern data source
	SelPatternInputSource1, SelPatternInputSource2 = 0x1A, 0x22

	// SelPatternTriggerMode selects the pattern trigger mode
	SelPatternTriggerMode1, SelPatternTriggerMode2 = 0x1A, 0x23

	// SelPatternDisplay starts, pauses or stops the pattern sequence
	SelPatternDisplay1, SelPatternDisplay2 = 0x1A, 0x24

	// SelExposureFramePeriod sets pattern exposure and frame period
	SelExposureFramePeriod1, SelExposureFramePeriod2 = 0x1A, 0x29

	// SelPatternConfig sets the pattern LUT control parameters
	SelPatternConfig1, SelPatternConfig2 = 0x1A, 0x31

	// SelMailboxAddress sets the offset within the open mailbox
	SelMailboxAddress1, SelMailboxAddress2 = 0x1A, 0x32

	// SelMailboxControl opens or closes a mailbox
	SelMailboxControl1, SelMailboxControl2 = 0x1A, 0x33

	// SelPatternLUT writes one pattern LUT entry into the open mailbox
	SelPatternLUT1, SelPatternLUT2 = 0x1A, 0x34
)

// Reply byte offsets.
const (
	// ReplyFlagsOffset holds the general status flags
	ReplyFlagsOffset = 0

	// ReplySequenceOffset echoes the command sequence tag
	ReplySequenceOffset = 1

	// ReplyMainStatusOffset holds the main status bit flags
	ReplyMainStatusOffset = 4

	// ReplyValidationOffset holds the pattern LUT validation bit flags
	ReplyValidationOffset = 6
)

// Field limits for the pattern LUT and configuration commands.
const (
	// MaxPatternIndex is the largest 6-bit pattern number
	MaxPatternIndex = 0x3F

	// NoPattern is the pattern number that displays nothing
	NoPattern = 0x3F

	// MaxMailboxAddress is the largest mailbox offset (7 bits)
	MaxMailboxAddress = 127

	// MaxLUTEntries is the largest number of pattern LUT entries
	MaxLUTEntries = 128

	// MaxPatternsForTrigOut2 is the largest pattern count per TRIG_OUT_2 period
	MaxPatternsForTrigOut2 = 256

	// MaxImageIndexEntries is the largest number of image index LUT entries (6 bits)
	MaxImageIndexEntries = 63

	// MaxLEDSelect is the largest 3-bit LED mask
	MaxLEDSelect = 0x07
)
