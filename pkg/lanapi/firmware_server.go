package lanapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// Image names requested by gateways. Single-binary models always ask
// for ImageUser1.
const (
	ImageUser1 = "user1.bin"
	ImageUser2 = "user2.bin"
)

// Messages sent by gateways during a transfer, each is terminated by a zero byte.
const (
	messageStart    = "start"
	messageContinue = "continue"
	messageEnd      = "end"

	maxMessageLength = 64
)

// DefaultChunkSize is the amount of data sent per "start"/"continue" request.
const DefaultChunkSize = 1024

const defaultIdleTimeout = 30 * time.Second

// TransferState is the position within a firmware transfer.
type TransferState int

const (
	// TransferStateWaitImage: waiting for the image name.
	TransferStateWaitImage = TransferState(iota)

	// TransferStateWaitStart: the image size was sent, waiting for "start".
	TransferStateWaitStart

	// TransferStateSending: chunks are being sent, waiting for "continue" or "end".
	TransferStateSending

	// TransferStateDone: the gateway sent "end".
	TransferStateDone
)

// String implements fmt.Stringer.
func (state TransferState) String() string {
	switch state {
	case TransferStateWaitImage:
		return "wait_image"
	case TransferStateWaitStart:
		return "wait_start"
	case TransferStateSending:
		return "sending"
	case TransferStateDone:
		return "done"
	}
	return fmt.Sprintf("unknown_transfer_state_%d", int(state))
}

// TransferStats describes a finished transfer.
type TransferStats struct {
	Image  string
	Chunks int
	Bytes  int
}

// FirmwareServer serves firmware images to a gateway which was asked to
// update through CommandWriteUpdate.
//
// The conversation is: the gateway sends the image name, the server replies
// with the image size (4 bytes, big endian); then the gateway sends "start"
// and a "continue" after every received chunk, and finally "end".
type FirmwareServer struct {
	// User1 is the first (or the only) firmware binary.
	User1 []byte

	// User2 is the second binary of two-binary models, nil otherwise.
	User2 []byte

	// ChunkSize is the size of data chunks, DefaultChunkSize if zero.
	ChunkSize int

	// IdleTimeout limits waiting for a message of the gateway,
	// 30 seconds if zero.
	IdleTimeout time.Duration
}

func (srv *FirmwareServer) image(name string) ([]byte, error) {
	var image []byte
	switch name {
	case ImageUser1:
		image = srv.User1
	case ImageUser2:
		image = srv.User2
	default:
		return nil, fmt.Errorf("unexpected message '%s'", name)
	}
	if image == nil {
		return nil, ErrNoImage{Name: name}
	}
	if uint64(len(image)) > math.MaxUint32 {
		return nil, fmt.Errorf("image '%s' is too large: %d bytes", name, len(image))
	}
	return image, nil
}

// Serve talks the transfer protocol on conn until the gateway sends "end".
func (srv *FirmwareServer) Serve(ctx context.Context, conn net.Conn) (TransferStats, error) {
	chunkSize := srv.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	idleTimeout := srv.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	log := logger.FromCtx(ctx)

	var (
		stats  TransferStats
		image  *bytes.Reader
		state  = TransferStateWaitImage
		reader = bufio.NewReader(conn)
		chunk  = make([]byte, chunkSize)
	)
	fail := func(err error) (TransferStats, error) {
		return stats, ErrTransfer{State: state, Err: err}
	}

	for state != TransferStateDone {
		deadline := time.Now().Add(idleTimeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := conn.SetDeadline(deadline); err != nil {
			return fail(fmt.Errorf("unable to set the deadline: %w", err))
		}

		msg, err := readMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("the gateway closed the connection: %w", io.ErrUnexpectedEOF)
			}
			return fail(err)
		}
		log.Tracef("received '%s' in state '%s'", msg, state)

		switch state {
		case TransferStateWaitImage:
			data, err := srv.image(msg)
			if err != nil {
				return fail(err)
			}
			image = bytes.NewReader(data)
			stats.Image = msg
			var size [4]byte
			binary.BigEndian.PutUint32(size[:], uint32(len(data)))
			if _, err := conn.Write(size[:]); err != nil {
				return fail(fmt.Errorf("unable to send the image size: %w", err))
			}
			log.Debugf("the gateway requested '%s' (%d bytes)", msg, len(data))
			state = TransferStateWaitStart
			continue

		case TransferStateWaitStart:
			if msg != messageStart {
				return fail(fmt.Errorf("unexpected message '%s'", msg))
			}
			state = TransferStateSending

		case TransferStateSending:
			switch msg {
			case messageContinue:
			case messageEnd:
				state = TransferStateDone
				continue
			default:
				return fail(fmt.Errorf("unexpected message '%s'", msg))
			}
		}

		n, err := image.Read(chunk)
		if errors.Is(err, io.EOF) {
			// the gateway knows the size and should have sent "end"
			log.Warnf("the gateway requested data beyond the end of '%s'", stats.Image)
			continue
		}
		if _, err := conn.Write(chunk[:n]); err != nil {
			return fail(fmt.Errorf("unable to send a chunk: %w", err))
		}
		stats.Chunks++
		stats.Bytes += n
	}

	log.Debugf("sent '%s': %d chunks, %d bytes", stats.Image, stats.Chunks, stats.Bytes)
	return stats, nil
}

func readMessage(r *bufio.Reader) (string, error) {
	var msg []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(msg), nil
		}
		msg = append(msg, b)
		if len(msg) > maxMessageLength {
			return "", fmt.Errorf("message is longer than %d bytes", maxMessageLength)
		}
	}
}
