// Package lanapi implements the client side of the binary LAN API of
// weather gateways (TCP port 45000 by default): reading the station MAC
// address and the firmware version, and pushing a firmware update.
//
// Every packet is
//
//	0xff 0xff <command> <size> <payload...> <checksum>
//
// where size counts the command, size, payload and checksum bytes, and the
// checksum is the 8-bit sum of the command, size and payload bytes.
package lanapi

import (
	"fmt"
	"io"
)

// DefaultPort is the TCP port the gateways listen on.
const DefaultPort = 45000

const (
	headerByte = 0xff

	// maxPayloadSize is limited by the single-byte size field.
	maxPayloadSize = 0xff - 3

	// maxSkippedBytes limits the garbage tolerated before a packet header.
	maxSkippedBytes = 1024
)

// Command is the command byte of a packet.
type Command byte

const (
	// CommandReadStationMAC reads the MAC address of the gateway.
	CommandReadStationMAC = Command(0x26)

	// CommandWriteUpdate asks the gateway to download a firmware from
	// the given IPv4 address and port.
	CommandWriteUpdate = Command(0x43)

	// CommandReadFirmwareVersion reads the installed firmware version,
	// e.g. "GW1100A_V2.3.2".
	CommandReadFirmwareVersion = Command(0x50)
)

// String implements fmt.Stringer.
func (cmd Command) String() string {
	switch cmd {
	case CommandReadStationMAC:
		return "read_station_mac"
	case CommandWriteUpdate:
		return "write_update"
	case CommandReadFirmwareVersion:
		return "read_firmware_version"
	}
	return fmt.Sprintf("command_0x%02x", byte(cmd))
}

// Packet is a single request or reply.
type Packet struct {
	Command Command
	Payload []byte
}

func checksum(cmd Command, size byte, payload []byte) byte {
	sum := byte(cmd) + size
	for _, b := range payload {
		sum += b
	}
	return sum
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p Packet) MarshalBinary() ([]byte, error) {
	if len(p.Payload) > maxPayloadSize {
		return nil, ErrPayloadTooLarge{Command: p.Command, Size: len(p.Payload)}
	}
	size := byte(len(p.Payload) + 3)

	result := make([]byte, 0, len(p.Payload)+5)
	result = append(result, headerByte, headerByte, byte(p.Command), size)
	result = append(result, p.Payload...)
	result = append(result, checksum(p.Command, size, p.Payload))
	return result, nil
}

// ReadPacket reads a single packet.
//
// Bytes preceding the first 0xff are skipped.
func ReadPacket(r io.Reader) (Packet, error) {
	var b [4]byte

	skipped := 0
	for {
		if _, err := io.ReadFull(r, b[:1]); err != nil {
			return Packet{}, err
		}
		if b[0] == headerByte {
			break
		}
		skipped++
		if skipped > maxSkippedBytes {
			return Packet{}, ErrMalformedPacket{Reason: "no packet header"}
		}
	}

	if _, err := io.ReadFull(r, b[1:4]); err != nil {
		return Packet{}, unexpectedEOF(err)
	}
	if b[1] != headerByte {
		return Packet{}, ErrMalformedPacket{Reason: fmt.Sprintf("second header byte is 0x%02x", b[1])}
	}
	cmd, size := Command(b[2]), b[3]
	if size < 3 {
		return Packet{}, ErrMalformedPacket{Reason: fmt.Sprintf("size %d is too small", size)}
	}

	// payload and checksum
	rest := make([]byte, int(size)-2)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Packet{}, unexpectedEOF(err)
	}
	payload, sum := rest[:len(rest)-1], rest[len(rest)-1]
	if expected := checksum(cmd, size, payload); expected != sum {
		return Packet{}, ErrChecksum{Command: cmd, Expected: expected, Actual: sum}
	}

	return Packet{Command: cmd, Payload: payload}, nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
