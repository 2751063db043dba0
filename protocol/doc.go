// Package protocol implements the DLPC350 USB command protocol.
//
// This package encodes typed commands into the controller's binary wire
// format and splits them into 64-byte USB packets. It performs no I/O.
//
// # Protocol Overview
//
// Every command starts with a 6-byte header:
//
//	Packet: [FLAGS][SEQ][LEN_L][LEN_H][CMD3][CMD2][PAYLOAD...][ZERO PADDING...]
//
// Where:
//   - FLAGS = 0xC0 for reads, 0x40 for writes
//   - SEQ = caller-chosen sequence tag
//   - LEN = payload length + 2 (little-endian)
//   - CMD2/CMD3 = command selector pair (Selector1/Selector2)
//
// Commands whose header and payload fit in 64 bytes travel in one packet.
// Longer commands fill the first packet and continue in 64-byte packets
// starting at payload offset 58. Every packet is exactly 64 bytes.
//
// After each command the controller returns a 64-byte Reply.
//
// # Bit Fields
//
// Multi-field payloads are composed most significant bit first with Bits and
// Concat, then byte-reversed for the little-endian wire:
//
//	b, err := protocol.Concat(protocol.Reserved(2), images, pats)
//	payload := b.Bytes(true)
//
// Values that do not fit their declared width are rejected with an
// EncodingError; nothing is truncated.
//
// # Command Builders
//
// Use the Build* functions to create commands and Packets to frame them:
//
//	cmd, err := protocol.BuildDisplayModeCmd(protocol.DisplayPattern)
//	packets, err := protocol.Packets(cmd)
//
// # Reference
//
// DLPC350 Programmer's Guide (TI DLPU010).
package protocol
