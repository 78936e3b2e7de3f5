package lanapi

import (
	"fmt"
)

// ErrPayloadTooLarge means the payload does not fit a packet.
type ErrPayloadTooLarge struct {
	Command Command
	Size    int
}

func (err ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("payload of %s is too large: %d > %d", err.Command, err.Size, maxPayloadSize)
}

// ErrMalformedPacket means the received bytes are not a packet.
type ErrMalformedPacket struct {
	Reason string
}

func (err ErrMalformedPacket) Error() string {
	return fmt.Sprintf("malformed packet: %s", err.Reason)
}

// ErrChecksum means the packet checksum does not match its content.
type ErrChecksum struct {
	Command  Command
	Expected byte
	Actual   byte
}

func (err ErrChecksum) Error() string {
	return fmt.Sprintf("invalid checksum of %s reply: expected 0x%02x, received 0x%02x", err.Command, err.Expected, err.Actual)
}

// ErrUnexpectedReply means the gateway replied to a different command or
// with a payload of an unexpected layout.
type ErrUnexpectedReply struct {
	Command Command
	Reply   Packet
	Reason  string
}

func (err ErrUnexpectedReply) Error() string {
	return fmt.Sprintf("unexpected reply to %s (command %s, %d bytes of payload): %s",
		err.Command, err.Reply.Command, len(err.Reply.Payload), err.Reason)
}

// ErrUpdateRejected means the gateway refused CommandWriteUpdate.
type ErrUpdateRejected struct {
	Status byte
}

func (err ErrUpdateRejected) Error() string {
	return fmt.Sprintf("the gateway rejected the update request, status 0x%02x", err.Status)
}

// ErrTransfer is returned when a firmware transfer fails.
type ErrTransfer struct {
	State TransferState
	Err   error
}

func (err ErrTransfer) Error() string {
	return fmt.Sprintf("firmware transfer failed in state '%s': %v", err.State, err.Err)
}

func (err ErrTransfer) Unwrap() error {
	return err.Err
}

// ErrNoImage means the gateway requested an image which was not provided.
type ErrNoImage struct {
	Name string
}

func (err ErrNoImage) Error() string {
	return fmt.Sprintf("the gateway requested '%s', but it was not provided", err.Name)
}
