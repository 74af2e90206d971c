package server

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/marmos91/funkostore/internal/logger"
	"github.com/marmos91/funkostore/internal/protocol/wire"
)

// conn binds one TCP connection to one framing buffer and the shared handler.
type conn struct {
	server *Server
	conn   net.Conn

	// writeMu serializes response writes. Frames are dispatched in arrival
	// order but each runs in its own goroutine, so responses on one
	// connection may interleave out of order relative to their requests.
	writeMu sync.Mutex
}

// serve runs the read-extract-dispatch loop until the peer disconnects, an
// I/O error occurs, or the server shuts down.
func (c *conn) serve(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in connection handler from %s: %v",
				c.conn.RemoteAddr().String(), r)
		}
		_ = c.conn.Close()
	}()

	clientAddr := c.conn.RemoteAddr().String()
	logger.Debug("New connection from %s", clientAddr)

	var (
		buf      wire.Buffer
		inflight sync.WaitGroup
		chunk    = make([]byte, 4096)
	)
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Connection from %s closed due to shutdown", clientAddr)
			return
		case <-c.server.shutdown:
			logger.Debug("Connection from %s closed due to shutdown", clientAddr)
			return
		default:
		}

		if c.server.config.IdleTimeout > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(c.server.config.IdleTimeout)); err != nil {
				logger.Warn("Failed to set deadline for %s: %v", clientAddr, err)
			}
		}

		n, err := c.conn.Read(chunk)
		if n > 0 {
			buf.Append(chunk[:n])

			// One read can carry several back-to-back frames; drain them all
			// before blocking on the next read.
			for {
				frame, ok := buf.Next()
				if !ok {
					break
				}

				inflight.Add(1)
				go func(frame []byte) {
					defer inflight.Done()
					c.handleFrame(ctx, frame)
				}(frame)
			}
		}

		if err != nil {
			if err == io.EOF {
				logger.Debug("Connection from %s closed by client", clientAddr)
			} else if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				logger.Debug("Connection from %s timed out: %v", clientAddr, err)
			} else {
				logger.Debug("Error reading from %s: %v", clientAddr, err)
			}
			return
		}
	}
}

// handleFrame decodes and dispatches one frame, then writes the response.
// A frame that fails to decode gets a synthesized failure response without
// closing the connection; later frames are unaffected.
func (c *conn) handleFrame(ctx context.Context, frame []byte) {
	var res *wire.Response
	start := time.Now()

	req, err := wire.DecodeRequest(frame)
	switch {
	case err != nil:
		logger.Debug("Malformed frame from %s: %v", c.conn.RemoteAddr().String(), err)
		res = &wire.Response{
			Type:    wire.RequestUnknown,
			Success: false,
			Message: "malformed request",
		}
	case c.server.limiter != nil && !c.server.limiter.Allow():
		logger.Warn("Rate limit exceeded, rejecting %s request from %s",
			req.Type, c.conn.RemoteAddr().String())
		c.server.metrics.RecordRateLimited(string(req.Type))
		res = &wire.Response{
			Type:    req.Type,
			Success: false,
			Message: "rate limit exceeded",
		}
	default:
		res = c.server.handler.Handle(ctx, req)
	}

	c.server.totalRequests.Add(1)
	if !res.Success {
		c.server.totalFailures.Add(1)
	}
	c.server.metrics.RecordRequest(string(res.Type), time.Since(start), res.Success)

	if err := c.writeResponse(res); err != nil {
		logger.Debug("Failed to write response to %s: %v", c.conn.RemoteAddr().String(), err)
	}
}

func (c *conn) writeResponse(res *wire.Response) error {
	data, err := wire.Encode(res)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.server.config.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.server.config.WriteTimeout)); err != nil {
			logger.Warn("Failed to set write deadline: %v", err)
		}
	}

	_, err = c.conn.Write(data)
	return err
}
