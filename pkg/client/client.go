// Package client implements the one-shot funkostore protocol client.
//
// The client speaks one request per connection: dial, send a single frame,
// wait for the first complete response frame, disconnect. It never reuses
// a connection for a second exchange, which sidesteps the protocol's
// unordered-response behavior on pipelined connections.
package client

import (
	"context"
	"fmt"
	"net"

	"github.com/marmos91/funkostore/internal/protocol/wire"
)

// Client dials a funkostore server for single request/response exchanges.
type Client struct {
	addr   string
	dialer net.Dialer
}

// New creates a client for the given server address (host:port).
func New(addr string) *Client {
	return &Client{addr: addr}
}

// Do sends one request and returns the first response, closing the
// connection either way. The context bounds the whole exchange.
func (c *Client) Do(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}

	data, err := wire.Encode(req)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	// Accumulate reads until the first complete frame; anything after it on
	// this connection is irrelevant because we disconnect immediately.
	var (
		buf   wire.Buffer
		chunk = make([]byte, 4096)
	)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf.Append(chunk[:n])
			if frame, ok := buf.Next(); ok {
				return wire.DecodeResponse(frame)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
	}
}
