package protocol

// Header builds the 6-byte command header.
//
// Header structure:
//
//	[FLAGS][SEQ][LEN_L][LEN_H][CMD3][CMD2]
//
// LEN is the payload length plus 2 (the two selector bytes), little-endian.
func Header(cmd Command) ([]byte, error) {
	if len(cmd.Payload) > MaxPayloadSize {
		return nil, &EncodingError{
			Field:  "payload length",
			Value:  uint64(len(cmd.Payload)),
			Reason: "exceeds 16-bit length field",
		}
	}

	length, err := field("payload length", uint64(len(cmd.Payload)+2), 16)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 0, HeaderSize)
	header = append(header, cmd.Direction.flag())
	header = append(header, cmd.Sequence)
	header = append(header, length.Bytes(true)...)
	header = append(header, cmd.Selector2)
	header = append(header, cmd.Selector1)

	return header, nil
}

// Packets frames a command into one or more PacketSize-byte packets.
//
// If header and payload together are shorter than PacketSize+1 bytes, the
// command is sent as one zero-padded packet. Otherwise the first packet
// carries the header and the first FirstPacketPayload payload bytes, and
// the remaining payload follows in PacketSize-byte continuation packets, the
// last of which is zero-padded.
func Packets(cmd Command) ([][]byte, error) {
	header, err := Header(cmd)
	if err != nil {
		return nil, err
	}

	data := cmd.Payload
	total := len(header) + len(data)

	// single packet; the boundary is strictly below PacketSize+1
	if total < PacketSize+1 {
		packet := make([]byte, PacketSize)
		copy(packet, header)
		copy(packet[HeaderSize:], data)
		return [][]byte{packet}, nil
	}

	count := 1 + (len(data)-FirstPacketPayload+PacketSize-1)/PacketSize
	packets := make([][]byte, 0, count)

	first := make([]byte, PacketSize)
	copy(first, header)
	copy(first[HeaderSize:], data[:FirstPacketPayload])
	packets = append(packets, first)

	for rest := data[FirstPacketPayload:]; len(rest) > 0; {
		packet := make([]byte, PacketSize)
		n := copy(packet, rest)
		packets = append(packets, packet)
		rest = rest[n:]
	}

	return packets, nil
}
