// Package lanapitest provides an emulated gateway for tests of LAN API clients.
package lanapitest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/immune-gmbh/gwcloud/pkg/lanapi"
)

// Gateway is a gateway listening on a loopback address.
type Gateway struct {
	MAC             net.HardwareAddr
	FirmwareVersion string

	// RequestImage is the image requested on CommandWriteUpdate,
	// lanapi.ImageUser1 by default.
	RequestImage string

	// UpdateStatus is the status replied to CommandWriteUpdate (0 is success).
	UpdateStatus byte

	Listener net.Listener

	locker     sync.Mutex
	downloaded map[string][]byte
	errs       []error
	wg         sync.WaitGroup
}

// NewGateway starts a Gateway.
func NewGateway(mac net.HardwareAddr, firmwareVersion string) (*Gateway, error) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("unable to listen: %w", err)
	}
	gw := &Gateway{
		MAC:             mac,
		FirmwareVersion: firmwareVersion,
		RequestImage:    lanapi.ImageUser1,
		Listener:        listener,
		downloaded:      map[string][]byte{},
	}
	gw.wg.Add(1)
	go func() {
		defer gw.wg.Done()
		gw.acceptLoop()
	}()
	return gw, nil
}

// Addr returns the "host:port" of the LAN API.
func (gw *Gateway) Addr() string {
	return gw.Listener.Addr().String()
}

// Close stops the gateway and waits for all its connections to finish.
func (gw *Gateway) Close() error {
	err := gw.Listener.Close()
	gw.wg.Wait()
	return err
}

// Downloaded returns the firmware images downloaded by the gateway.
func (gw *Gateway) Downloaded() map[string][]byte {
	gw.locker.Lock()
	defer gw.locker.Unlock()
	result := make(map[string][]byte, len(gw.downloaded))
	for name, data := range gw.downloaded {
		result[name] = data
	}
	return result
}

// Errors returns the errors the gateway faced.
func (gw *Gateway) Errors() []error {
	gw.locker.Lock()
	defer gw.locker.Unlock()
	return append([]error(nil), gw.errs...)
}

func (gw *Gateway) addError(err error) {
	gw.locker.Lock()
	defer gw.locker.Unlock()
	gw.errs = append(gw.errs, err)
}

func (gw *Gateway) acceptLoop() {
	for {
		conn, err := gw.Listener.Accept()
		if err != nil {
			return
		}
		gw.wg.Add(1)
		go func() {
			defer gw.wg.Done()
			defer conn.Close()
			gw.serve(conn)
		}()
	}
}

func (gw *Gateway) serve(conn net.Conn) {
	for {
		request, err := lanapi.ReadPacket(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				gw.addError(err)
			}
			return
		}

		reply := lanapi.Packet{Command: request.Command}
		switch request.Command {
		case lanapi.CommandReadStationMAC:
			reply.Payload = gw.MAC
		case lanapi.CommandReadFirmwareVersion:
			reply.Payload = append([]byte{byte(len(gw.FirmwareVersion))}, gw.FirmwareVersion...)
		case lanapi.CommandWriteUpdate:
			reply.Payload = []byte{gw.UpdateStatus}
		default:
			gw.addError(fmt.Errorf("unsupported command %s", request.Command))
			return
		}

		b, err := reply.MarshalBinary()
		if err != nil {
			gw.addError(err)
			return
		}
		if _, err := conn.Write(b); err != nil {
			gw.addError(err)
			return
		}

		if request.Command == lanapi.CommandWriteUpdate && gw.UpdateStatus == 0 {
			if len(request.Payload) != 6 {
				gw.addError(fmt.Errorf("invalid update request payload length %d", len(request.Payload)))
				return
			}
			addr := &net.TCPAddr{
				IP:   net.IP(request.Payload[:4]),
				Port: int(binary.BigEndian.Uint16(request.Payload[4:])),
			}
			if err := gw.download(addr); err != nil {
				gw.addError(err)
			}
		}
	}
}

func (gw *Gateway) download(addr *net.TCPAddr) error {
	conn, err := net.DialTCP("tcp4", nil, addr)
	if err != nil {
		return fmt.Errorf("unable to connect to the firmware server: %w", err)
	}
	defer conn.Close()

	send := func(msg string) error {
		_, err := conn.Write(append([]byte(msg), 0))
		return err
	}

	if err := send(gw.RequestImage); err != nil {
		return err
	}
	var sizeBytes [4]byte
	if _, err := io.ReadFull(conn, sizeBytes[:]); err != nil {
		return fmt.Errorf("unable to read the image size: %w", err)
	}
	size := int(binary.BigEndian.Uint32(sizeBytes[:]))

	image := make([]byte, 0, size)
	msg := "start"
	for len(image) < size {
		if err := send(msg); err != nil {
			return err
		}
		msg = "continue"

		chunk := make([]byte, lanapi.DefaultChunkSize)
		if remaining := size - len(image); remaining < len(chunk) {
			chunk = chunk[:remaining]
		}
		if _, err := io.ReadFull(conn, chunk); err != nil {
			return fmt.Errorf("unable to read a chunk: %w", err)
		}
		image = append(image, chunk...)
	}

	gw.locker.Lock()
	gw.downloaded[gw.RequestImage] = image
	gw.locker.Unlock()

	return send("end")
}
