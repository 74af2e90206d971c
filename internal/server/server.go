package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/funkostore/internal/logger"
	"github.com/marmos91/funkostore/internal/ratelimiter"
	"github.com/marmos91/funkostore/pkg/metrics"
	"github.com/marmos91/funkostore/pkg/store"
)

// Config holds the TCP server settings.
//
// Zero timeouts disable the corresponding deadline. MaxConnections of zero
// means unlimited.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// MaxConnections caps concurrent connections, 0 for unlimited.
	MaxConnections int

	// IdleTimeout closes connections with no traffic for this long.
	IdleTimeout time.Duration

	// WriteTimeout bounds each response write.
	WriteTimeout time.Duration

	// ShutdownTimeout is how long Stop waits for in-flight connections
	// before force-closing them.
	ShutdownTimeout time.Duration

	// SerializeUsers makes the handler hold a per-user lock across the
	// add/update check-then-write sequence. Off by default: the unprotected
	// race is the protocol's documented baseline.
	SerializeUsers bool

	// RequestsPerSecond caps the sustained request rate across all
	// connections, 0 for unlimited. RequestBurst is the bucket capacity.
	RequestsPerSecond uint
	RequestBurst      uint

	// MetricsLogInterval is how often request totals are logged, 0 to
	// disable.
	MetricsLogInterval time.Duration
}

// Server accepts funkostore protocol connections and serves each one on its
// own goroutine until the peer disconnects or the server stops.
//
// Shutdown flow: the listener closes first (no new connections), the
// shutdown channel signals serving connections to stop, then Stop waits up
// to ShutdownTimeout for them to drain before force-closing the stragglers.
type Server struct {
	config  Config
	handler *Handler
	limiter *ratelimiter.RateLimiter
	metrics metrics.RequestMetrics

	listener net.Listener

	// Request totals, logged periodically when MetricsLogInterval > 0.
	totalRequests atomic.Uint64
	totalFailures atomic.Uint64
	connCount     atomic.Int32

	activeConns  sync.WaitGroup
	shutdownOnce sync.Once
	shutdown     chan struct{}

	// connSemaphore limits concurrent connections when MaxConnections > 0.
	connSemaphore chan struct{}

	// openConns tracks live connections for forced closure on timeout.
	openConns sync.Map
}

// New creates a server over the given record store.
//
// Pass nil for m to disable metrics collection.
func New(cfg Config, recordStore store.RecordStore, m metrics.RequestMetrics) *Server {
	if m == nil {
		m = metrics.NewNoopRequestMetrics()
	}

	s := &Server{
		config:   cfg,
		handler:  NewHandler(recordStore, cfg.SerializeUsers),
		metrics:  m,
		shutdown: make(chan struct{}),
	}

	if cfg.RequestsPerSecond > 0 {
		s.limiter = ratelimiter.New(cfg.RequestsPerSecond, cfg.RequestBurst)
	}

	if cfg.MaxConnections > 0 {
		s.connSemaphore = make(chan struct{}, cfg.MaxConnections)
	}

	return s
}

// Serve listens and accepts until the context is cancelled or Stop is
// called. It returns nil on clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}

	s.listener = listener
	logger.Info("Funkostore server listening on port %d", s.config.Port)

	go func() {
		select {
		case <-ctx.Done():
			s.initiateShutdown()
		case <-s.shutdown:
		}
	}()

	if s.config.MetricsLogInterval > 0 {
		go s.logMetrics()
	}

	for {
		tcpConn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			case <-ctx.Done():
				return nil
			default:
				logger.Debug("Error accepting connection: %v", err)
				continue
			}
		}

		if s.connSemaphore != nil {
			select {
			case s.connSemaphore <- struct{}{}:
			default:
				logger.Warn("Connection limit reached, rejecting %s",
					tcpConn.RemoteAddr().String())
				_ = tcpConn.Close()
				continue
			}
		}

		c := &conn{server: s, conn: tcpConn}
		s.openConns.Store(tcpConn.RemoteAddr().String(), tcpConn)
		s.metrics.RecordConnectionAccepted()
		s.metrics.SetActiveConnections(s.connCount.Add(1))

		s.activeConns.Add(1)
		go func() {
			defer func() {
				s.openConns.Delete(tcpConn.RemoteAddr().String())
				s.metrics.RecordConnectionClosed()
				s.metrics.SetActiveConnections(s.connCount.Add(-1))
				if s.connSemaphore != nil {
					<-s.connSemaphore
				}
				s.activeConns.Done()
			}()
			c.serve(ctx)
		}()
	}
}

// Addr returns the listener address, useful when Port 0 picked a free port.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// logMetrics periodically reports request totals until shutdown.
func (s *Server) logMetrics() {
	ticker := time.NewTicker(s.config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			logger.Info("Requests served: %d total, %d failed",
				s.totalRequests.Load(), s.totalFailures.Load())
		}
	}
}

func (s *Server) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// Stop gracefully shuts the server down, force-closing connections that
// outlive the shutdown timeout.
func (s *Server) Stop() error {
	s.initiateShutdown()

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	select {
	case <-done:
		logger.Info("All connections drained, server stopped")
		return nil
	case <-time.After(timeout):
		logger.Warn("Shutdown timeout reached, force-closing connections")
		s.openConns.Range(func(_, v any) bool {
			if c, ok := v.(net.Conn); ok {
				_ = c.Close()
				s.metrics.RecordConnectionForceClosed()
			}
			return true
		})
		s.activeConns.Wait()
		return nil
	}
}
