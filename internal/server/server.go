// Package server runs the accept loop and per-session tick loop,
// grounded on the teacher's source/server.Server (UDP accept +
// updateLoop + sessionCleanupLoop), adapted from one shared RakNet
// socket to one TCP connection per session carrying the length-framed
// command stream (spec.md section 4.5).
package server

import (
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/versenet/verse/api"
	"github.com/versenet/verse/internal/metrics"
	"github.com/versenet/verse/internal/session"
	"github.com/versenet/verse/internal/stream"
	"github.com/versenet/verse/internal/transport/sendwindow"
	"github.com/versenet/verse/pkg/logging"
)

// ErrStopped is returned by Start once the server has been stopped.
var ErrStopped = errors.New("server: stopped")

// Config holds the listen address and per-session limits bound from
// CLI flags / config file by cmd/versed.
type Config struct {
	ListenAddr       string
	MaxSessions      int
	MaxOutboundBytes int
	TickInterval     time.Duration
	IdleTimeout      time.Duration
	SendBufferSize   int
}

// Server owns the listener, the session registry, and the dispatcher
// applications register callbacks on.
type Server struct {
	cfg      Config
	Client   *api.Client
	listener net.Listener

	mu      sync.Mutex
	running bool
}

// New constructs a Server bound to cfg, with its own Client (session
// registry + dispatcher).
func New(cfg Config) *Server {
	return &Server{cfg: cfg, Client: api.NewClient()}
}

// Start binds the listener and blocks, accepting connections until
// Stop is called. It returns early only if the listen itself fails;
// Accept errors while running are logged and the loop continues.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return errors.Wrap(err, "server: listen")
	}
	s.listener = ln
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	log := logging.For("server")
	log.Infow("listening", "addr", s.cfg.ListenAddr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := !s.running
			s.mu.Unlock()
			if stopped {
				return ErrStopped
			}
			log.Warnw("accept failed", "error", err)
			continue
		}
		if s.cfg.MaxSessions > 0 && s.Client.Registry.Len() >= s.cfg.MaxSessions {
			conn.Close()
			continue
		}
		go s.handleConn(conn)
	}
}

// Stop closes the listener, ending the Accept loop in Start.
func (s *Server) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := logging.For("server")

	host, service, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host, service = conn.RemoteAddr().String(), ""
	}

	sess, err := s.Client.Connect(host, service, session.FlagTCP, s.cfg.MaxOutboundBytes)
	if err != nil {
		log.Warnw("connect rejected", "addr", conn.RemoteAddr(), "error", err)
		return
	}
	log.Infow("session opened", "session", sess.ID, "trace", sess.TraceID, "addr", conn.RemoteAddr())

	bufSize := s.cfg.SendBufferSize
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	windowFunc := func() (int, error) {
		if sc, ok := conn.(syscall.Conn); ok {
			return sendwindow.Window(sc, bufSize)
		}
		return bufSize, nil
	}
	loop := &stream.Loop{WindowFunc: windowFunc}

	tick := s.cfg.TickInterval
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	reason := s.runSession(conn, sess, loop, ticker)
	s.Client.Terminate(sess, reason)
	log.Infow("session closed", "session", sess.ID, "reason", reason)
}

func (s *Server) runSession(conn net.Conn, sess *session.Session, loop *stream.Loop, ticker *time.Ticker) api.TerminateReason {
	errCh := make(chan error, 1)
	go func() {
		for {
			if err := loop.Receive(conn, sess); err != nil {
				errCh <- err
				return
			}
		}
	}()

	for {
		select {
		case <-errCh:
			return api.TerminateTransportLost
		case <-ticker.C:
			if sess.Idle() > s.cfg.IdleTimeout && s.cfg.IdleTimeout > 0 {
				return api.TerminateTimeout
			}
			stream.NegotiateFPS(sess)
			if _, err := loop.Send(conn, sess); err != nil {
				return api.TerminateTransportLost
			}
			s.Client.Dispatcher.Update(sess)
			s.reportMetrics(sess)
		}
	}
}

func (s *Server) reportMetrics(sess *session.Session) {
	label := strconv.Itoa(int(sess.ID))
	inCount, inBytes := sess.Inbound.Stats()
	outCount, outBytes := sess.Outbound.Stats()
	metrics.InboundDepth.WithLabelValues(label).Set(float64(inCount))
	metrics.InboundBytes.WithLabelValues(label).Set(float64(inBytes))
	metrics.OutboundDepth.WithLabelValues(label).Set(float64(outCount))
	metrics.OutboundBytes.WithLabelValues(label).Set(float64(outBytes))
	metrics.OutstandingBytes.WithLabelValues(label).Set(float64(sess.History.OutstandingBytes()))
}
