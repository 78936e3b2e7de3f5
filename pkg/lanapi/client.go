package lanapi

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
)

const defaultTimeout = 5 * time.Second

// Client is a connection to the LAN API of a gateway.
//
// It is not safe for concurrent use.
type Client struct {
	Conn net.Conn

	// Timeout limits a single request-reply exchange (in addition to the
	// context deadline).
	Timeout time.Duration
}

// Dial connects to the gateway. The devices support only IPv4.
func Dial(ctx context.Context, address string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp4", address)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to '%s': %w", address, err)
	}
	return NewClient(conn), nil
}

// NewClient returns a Client using the given connection.
func NewClient(conn net.Conn) *Client {
	return &Client{
		Conn:    conn,
		Timeout: defaultTimeout,
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.Conn.Close()
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	return deadline
}

// Call sends a request and returns the reply to it.
func (c *Client) Call(ctx context.Context, cmd Command, payload []byte) (Packet, error) {
	request, err := Packet{Command: cmd, Payload: payload}.MarshalBinary()
	if err != nil {
		return Packet{}, err
	}
	if err := c.Conn.SetDeadline(c.deadline(ctx)); err != nil {
		return Packet{}, fmt.Errorf("unable to set the deadline: %w", err)
	}

	log := logger.FromCtx(ctx)
	log.Tracef("sending %s:\n%s", cmd, hex.Dump(request))
	if _, err := c.Conn.Write(request); err != nil {
		return Packet{}, fmt.Errorf("unable to send %s: %w", cmd, err)
	}

	reply, err := ReadPacket(c.Conn)
	if err != nil {
		return Packet{}, fmt.Errorf("unable to receive the reply to %s: %w", cmd, err)
	}
	log.Tracef("received %s with payload:\n%s", reply.Command, hex.Dump(reply.Payload))
	if reply.Command != cmd {
		return Packet{}, ErrUnexpectedReply{Command: cmd, Reply: reply, Reason: "command mismatch"}
	}
	return reply, nil
}

// ReadStationMAC returns the MAC address of the gateway, which is also the
// device ID it reports to the cloud.
func (c *Client) ReadStationMAC(ctx context.Context) (net.HardwareAddr, error) {
	reply, err := c.Call(ctx, CommandReadStationMAC, nil)
	if err != nil {
		return nil, err
	}
	if len(reply.Payload) != 6 {
		return nil, ErrUnexpectedReply{Command: CommandReadStationMAC, Reply: reply, Reason: "expected 6 bytes"}
	}
	return net.HardwareAddr(reply.Payload), nil
}

// ReadFirmwareVersion returns the raw firmware version string of the
// gateway, see ParseFirmwareVersion.
func (c *Client) ReadFirmwareVersion(ctx context.Context) (string, error) {
	reply, err := c.Call(ctx, CommandReadFirmwareVersion, nil)
	if err != nil {
		return "", err
	}
	if len(reply.Payload) < 1 || int(reply.Payload[0]) != len(reply.Payload)-1 {
		return "", ErrUnexpectedReply{Command: CommandReadFirmwareVersion, Reply: reply, Reason: "invalid version length"}
	}
	return string(reply.Payload[1:]), nil
}

// WriteUpdate asks the gateway to connect to addr to download a firmware,
// see FirmwareServer.
func (c *Client) WriteUpdate(ctx context.Context, addr netip.AddrPort) error {
	if !addr.Addr().Is4() {
		return fmt.Errorf("address '%s' is not IPv4", addr)
	}
	ip := addr.Addr().As4()
	payload := make([]byte, 0, 6)
	payload = append(payload, ip[:]...)
	payload = binary.BigEndian.AppendUint16(payload, addr.Port())

	reply, err := c.Call(ctx, CommandWriteUpdate, payload)
	if err != nil {
		return err
	}
	if len(reply.Payload) != 1 {
		return ErrUnexpectedReply{Command: CommandWriteUpdate, Reply: reply, Reason: "expected a status byte"}
	}
	if status := reply.Payload[0]; status != 0 {
		return ErrUpdateRejected{Status: status}
	}
	return nil
}

// Update pushes the firmware images of srv to the gateway.
//
// It listens on the local address of the connection (the address the
// gateway can reach), sends CommandWriteUpdate and serves the single
// download connection of the gateway.
func (c *Client) Update(ctx context.Context, srv *FirmwareServer) (TransferStats, error) {
	localAddr, ok := c.Conn.LocalAddr().(*net.TCPAddr)
	if !ok {
		return TransferStats{}, fmt.Errorf("unsupported local address type %T", c.Conn.LocalAddr())
	}
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: localAddr.IP})
	if err != nil {
		return TransferStats{}, fmt.Errorf("unable to listen on '%s': %w", localAddr.IP, err)
	}
	defer listener.Close()

	listenAddr := listener.Addr().(*net.TCPAddr).AddrPort()
	addr := netip.AddrPortFrom(listenAddr.Addr().Unmap(), listenAddr.Port())
	logger.FromCtx(ctx).Debugf("serving firmware on '%s'", addr)

	if err := c.WriteUpdate(ctx, addr); err != nil {
		return TransferStats{}, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = listener.SetDeadline(deadline)
	}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			listener.Close()
		case <-stop:
		}
	}()

	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return TransferStats{}, fmt.Errorf("the gateway did not connect: %w", ctx.Err())
		}
		return TransferStats{}, fmt.Errorf("unable to accept the gateway connection: %w", err)
	}
	defer conn.Close()
	logger.FromCtx(ctx).Debugf("the gateway connected from '%s'", conn.RemoteAddr())

	return srv.Serve(ctx, conn)
}
