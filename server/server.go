package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shravanasati/beacon/request"
	"github.com/shravanasati/beacon/response"
)

type connState int

const (
	stateIdle connState = iota
	stateActive
)

type conn struct {
	id    string
	nc    net.Conn
	state connState // guarded by Server.mu
}

// Server is a running HTTP/1.1 server. Create one with Serve.
type Server struct {
	opts     Options
	logger   *zap.Logger
	handler  Handler
	listener net.Listener

	closed atomic.Bool
	mu     sync.Mutex
	conns  map[*conn]struct{}
	wg     sync.WaitGroup

	stopOnce sync.Once
	stopErr  error
}

// Serve binds opts.Address and starts accepting connections in the
// background. A bind failure is returned before anything is served.
func Serve(opts Options, handler Handler) (*Server, error) {
	opts = opts.withDefaults()

	listener, err := net.Listen("tcp", opts.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", opts.Address, err)
	}

	s := &Server{
		opts:     opts,
		logger:   opts.Logger,
		handler:  handler,
		listener: listener,
		conns:    map[*conn]struct{}{},
	}

	s.wg.Add(1)
	go s.acceptLoop()

	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// URL returns the base URL of the server, e.g. "http://localhost:3000/".
// Wildcard listen addresses are reported as localhost.
func (s *Server) URL() string {
	host, port := "localhost", ""
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		if !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
		port = strconv.Itoa(tcp.Port)
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

// Stop stops accepting connections and shuts the server down. With force,
// every open connection is closed at once and in-flight responses are lost.
// Without it, idle connections are closed and active ones are closed after
// their current response. Stop returns once every connection is gone.
// Calling it again returns the result of the first call.
func (s *Server) Stop(force bool) error {
	s.stopOnce.Do(func() {
		s.closed.Store(true)
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.stopErr = fmt.Errorf("close listener: %w", err)
		}

		s.mu.Lock()
		for c := range s.conns {
			if force || c.state == stateIdle {
				c.nc.Close()
			}
		}
		s.mu.Unlock()

		s.wg.Wait()
		s.logger.Debug("server stopped", zap.Bool("force", force))
	})
	return s.stopErr
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	return min(2*d, time.Second)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	var backoff time.Duration
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			backoff = nextBackoff(backoff)
			s.logger.Warn("unable to accept connection", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		c := &conn{id: uuid.NewString(), nc: nc}
		if !s.track(c) {
			nc.Close()
			continue
		}
		go s.handle(c)
	}
}

func (s *Server) track(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.nc.Close()
}

// setState moves c to st. It fails once the server is stopping, which tells
// the connection loop to hang up.
func (s *Server) setState(c *conn, st connState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	c.state = st
	return true
}

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

func (s *Server) handle(c *conn) {
	defer s.wg.Done()
	defer s.untrack(c)

	logger := s.logger.With(zap.String("conn", c.id), zap.Stringer("remote", c.nc.RemoteAddr()))
	logger.Debug("connection accepted")

	br := bufio.NewReader(c.nc)
	for {
		if !s.setState(c, stateIdle) {
			return
		}

		c.nc.SetReadDeadline(deadline(s.opts.IdleTimeout))
		if _, err := br.Peek(1); err != nil {
			logger.Debug("connection closed", zap.Error(err))
			return
		}

		if !s.setState(c, stateActive) {
			return
		}

		c.nc.SetReadDeadline(deadline(s.opts.ReadTimeout))
		req, err := request.Parse(br)
		if err != nil {
			s.reject(c, logger, err)
			return
		}

		if !s.serveRequest(c, logger, req) {
			return
		}
	}
}

// serveRequest runs the handler and writes its response. It reports whether
// the connection may be reused.
func (s *Server) serveRequest(c *conn, logger *zap.Logger, req *request.Request) bool {
	if req.HTTPVersion == "1.1" {
		// exactly one host is required
		// https://datatracker.ietf.org/doc/html/rfc9112#section-3.2-6
		if !req.Headers.Has("host") || strings.Contains(req.Headers.Get("host"), ",") {
			s.writeStatus(c, logger, response.StatusBadRequest)
			return false
		}
	}

	resp, err := s.invoke(req)
	if err != nil {
		s.opts.OnError(err)
		return false
	}

	if err := req.Discard(); err != nil {
		s.reject(c, logger, err)
		return false
	}

	if req.Method == request.HEAD {
		resp = resp.WithoutBody()
	}

	keepAlive := req.KeepAlive() && !s.closed.Load()
	if !keepAlive {
		resp = resp.WithHeader("connection", "close")
	}

	c.nc.SetWriteDeadline(deadline(s.opts.WriteTimeout))
	if err := resp.Write(c.nc); err != nil {
		if !s.closed.Load() {
			s.opts.OnError(fmt.Errorf("write response to %s: %w", c.nc.RemoteAddr(), err))
		}
		return false
	}

	logger.Debug("request served",
		zap.String("method", req.Method),
		zap.String("target", req.Target),
		zap.Int("status", int(resp.StatusCode())),
	)
	return keepAlive
}

func (s *Server) invoke(req *request.Request) (resp response.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerPanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	resp = s.handler(req)
	if resp.StatusCode() == 0 {
		return resp, fmt.Errorf("%w for %s %s", ErrEmptyResponse, req.Method, req.Target)
	}
	return resp, nil
}

// reject answers a request that could not be read. I/O failures are not
// answered at all.
func (s *Server) reject(c *conn, logger *zap.Logger, err error) {
	var netErr net.Error
	if errors.Is(err, io.EOF) || errors.As(err, &netErr) {
		logger.Debug("connection closed while reading request", zap.Error(err))
		return
	}

	logger.Debug("rejecting request", zap.Error(err))

	code := response.StatusBadRequest
	switch {
	case errors.Is(err, request.ErrHeaderTooLarge):
		code = response.StatusRequestHeaderFieldsTooLarge
	case errors.Is(err, request.ErrUnsupportedVersion):
		code = response.StatusHTTPVersionNotSupported
	case errors.Is(err, request.ErrUnsupportedTransferEncoding):
		code = response.StatusNotImplemented
	}
	s.writeStatus(c, logger, code)
}

func (s *Server) writeStatus(c *conn, logger *zap.Logger, code response.StatusCode) {
	resp := response.StatusText(code).WithHeader("connection", "close")

	c.nc.SetWriteDeadline(deadline(s.opts.WriteTimeout))
	if err := resp.Write(c.nc); err != nil {
		logger.Debug("unable to write error response", zap.Error(err))
	}
}
