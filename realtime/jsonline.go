package realtime

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bytedance/sonic"
)

const dialTimeout = 10 * time.Second

// maxFrameBytes bounds a single frame line; notification payloads are small.
const maxFrameBytes = 256 * 1024

// JSONLineTransport speaks the push gateway's framing: one JSON-encoded
// frame per newline-terminated line over a TCP connection.
type JSONLineTransport struct{}

var _ Transport = (*JSONLineTransport)(nil)

func (JSONLineTransport) Dial(ctx context.Context, addr string) (Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing push gateway: %w", err)
	}
	return newJSONLineConn(nc), nil
}

type jsonLineConn struct {
	nc      net.Conn
	scanner *bufio.Scanner
}

func newJSONLineConn(nc net.Conn) *jsonLineConn {
	scanner := bufio.NewScanner(nc)
	scanner.Buffer(make([]byte, 4096), maxFrameBytes)
	return &jsonLineConn{nc: nc, scanner: scanner}
}

var _ Conn = (*jsonLineConn)(nil)

func (c *jsonLineConn) ReadFrame() (Frame, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Frame{}, err
		}
		return Frame{}, net.ErrClosed
	}
	var f Frame
	if err := sonic.Unmarshal(c.scanner.Bytes(), &f); err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	return f, nil
}

func (c *jsonLineConn) WriteFrame(f Frame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	_, err = c.nc.Write(append(data, '\n'))
	return err
}

func (c *jsonLineConn) Close() error {
	return c.nc.Close()
}
