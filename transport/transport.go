// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package transport provides the frame-oriented TCP connection the
// protocol channel plugs into. It owns socket I/O, optional TLS, dial
// retries and frame reassembly; the channel owns everything above the
// 12-byte frame header.
package transport

import (
	"crypto/tls"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"

	"github.com/canonical/ignite-go/protocol"
)

var logger = loggo.GetLogger("ignite.transport")

// Handler is the inbound boundary the connection delivers to: one
// call per complete frame, and exactly one ConnectionLost when the
// stream dies. *channel.Channel satisfies it.
type Handler interface {
	ProcessMessage(frame []byte)
	ConnectionLost(err error)
}

// Conn is a single framed connection to one cluster node. Send is
// safe for concurrent use; frames are delivered by a single receive
// worker started with Start.
type Conn struct {
	catacomb catacomb.Catacomb

	config  Config
	handler Handler

	writeMu sync.Mutex
	conn    net.Conn

	mu      sync.Mutex
	started bool

	closeOnce sync.Once
	closeErr  error
}

// Conn is a worker.Worker once Start has been called.
var _ worker.Worker = (*Conn)(nil)

// Dial connects to cfg.Address, retrying per the config's dial
// policy, and performs the TLS client handshake when configured. The
// returned Conn delivers nothing until Start is called.
func Dial(cfg Config) (*Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	cfg = cfg.withDefaults()

	var netConn net.Conn
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			var err error
			netConn, err = dialOnce(cfg)
			return err
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("dial %s attempt %d failed: %v", cfg.Address, attempt, err)
		},
		Attempts: cfg.DialAttempts,
		Delay:    cfg.DialRetryDelay,
		Clock:    cfg.Clock,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "dialling %s", cfg.Address)
	}
	logger.Debugf("connected to %s", cfg.Address)
	return &Conn{config: cfg, conn: netConn}, nil
}

func dialOnce(cfg Config) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := dialer.Dial("tcp", cfg.Address)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cfg.TLSConfig == nil {
		return conn, nil
	}
	tlsConn := tls.Client(conn, cfg.TLSConfig)
	if err := tlsConn.Handshake(); err != nil {
		_ = conn.Close()
		return nil, errors.Annotate(err, "TLS handshake")
	}
	return tlsConn, nil
}

// Start spawns the receive worker delivering to h. It must be called
// exactly once before any response can arrive.
func (c *Conn) Start(h Handler) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("connection already started")
	}
	c.started = true
	c.handler = h
	c.mu.Unlock()

	return errors.Trace(catacomb.Invoke(catacomb.Plan{
		Site: &c.catacomb,
		Work: c.loop,
	}))
}

// Send writes one complete frame to the socket. It is safe for
// concurrent senders; whole frames never interleave.
func (c *Conn) Send(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(frame); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// RemoteAddr returns the address of the connected node.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close shuts the connection down: it stops the receive worker,
// closes the socket and waits for the loop to exit. It is idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return c.closeSocket()
	}
	c.catacomb.Kill(nil)
	_ = c.catacomb.Wait()
	return nil
}

// Kill is part of the worker.Worker interface.
func (c *Conn) Kill() {
	c.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (c *Conn) Wait() error {
	return c.catacomb.Wait()
}

func (c *Conn) closeSocket() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Conn) loop() error {
	// The read below has no deadline; closing the socket is what
	// unblocks it when the worker is killed.
	go func() {
		<-c.catacomb.Dying()
		_ = c.closeSocket()
	}()

	for {
		frame, err := c.readFrame()
		if err != nil {
			select {
			case <-c.catacomb.Dying():
				c.notifyLost(errors.New("connection closed locally"))
				return c.catacomb.ErrDying()
			default:
			}
			logger.Debugf("receive loop for %s terminating: %v", c.config.Address, err)
			c.notifyLost(err)
			return errors.Trace(err)
		}
		c.handler.ProcessMessage(frame)
	}
}

// notifyLost delivers ConnectionLost off the receive goroutine. The
// handler is allowed to call Close, which waits for the receive loop
// to exit; delivering in-loop would block that wait forever.
func (c *Conn) notifyLost(err error) {
	go c.handler.ConnectionLost(err)
}

// readFrame reassembles one complete frame, length prefix included.
func (c *Conn) readFrame() ([]byte, error) {
	header := make([]byte, protocol.LengthSize)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		return nil, errors.Trace(err)
	}
	length := int(int32(binary.LittleEndian.Uint32(header)))
	if length <= 0 || length > c.config.MaxFrameSize {
		return nil, errors.Errorf("frame length %d outside (0, %d]", length, c.config.MaxFrameSize)
	}
	frame := make([]byte, protocol.LengthSize+length)
	copy(frame, header)
	if _, err := io.ReadFull(c.conn, frame[protocol.LengthSize:]); err != nil {
		return nil, errors.Annotate(err, "reading frame body")
	}
	return frame, nil
}
