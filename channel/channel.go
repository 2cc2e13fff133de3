// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package channel implements the per-connection protocol engine of an
// Ignite-style thin client: handshake version negotiation, request ID
// generation, synchronous-over-asynchronous request execution,
// correlation of out-of-order responses, notification dispatch, and
// connection-failure propagation. It owns exactly one transport
// connection; pooling, reconnection and node selection belong to the
// layer above.
package channel

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/ignite-go/protocol"
	"github.com/canonical/ignite-go/wire"
)

var logger = loggo.GetLogger("ignite.channel")

const (
	// ErrNotReady is returned for application calls made outside the
	// Ready state. No bytes reach the transport.
	ErrNotReady = errors.ConstError("channel not ready")

	// ErrClosed is the failure observed by waiters when the channel
	// is closed deliberately.
	ErrClosed = errors.ConstError("channel closed")

	// ErrVersionMismatch means no mutually acceptable protocol
	// version exists.
	ErrVersionMismatch = errors.ConstError("protocol version mismatch")

	// ErrHandshakeRejected means the server refused the handshake for
	// a reason other than version, such as authentication.
	ErrHandshakeRejected = errors.ConstError("handshake rejected")

	// ErrAlreadyStarted is returned by a second StartHandshake.
	ErrAlreadyStarted = errors.ConstError("handshake already started")
)

// State is the channel lifecycle state. The only transitions are
// Created → Handshaking → Ready → {Closed | Failed}; both final
// states are terminal.
type State int32

const (
	StateCreated State = iota
	StateHandshaking
	StateReady
	StateClosed
	StateFailed
)

// String is part of the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Transport is the outbound boundary the channel writes to. The
// transport owns framing delivery and reconnect policy; the channel
// hands it complete frames.
type Transport interface {
	Send(frame []byte) error
	Close() error
}

// StateObserver receives the channel's lifecycle transitions. The
// observer decides reconnection, pooling and application-visible
// error surfacing; it is invoked outside channel locks.
type StateObserver interface {
	Ready(id uint64)
	Failed(id uint64, err error)
	Closed(id uint64)
}

// Node is the remote node's identity, validated during handshake and
// immutable afterwards.
type Node struct {
	ID           uuid.UUID
	ConsistentID string
	Address      string
}

// Channel multiplexes an arbitrary number of concurrent outstanding
// requests over one connection. Many goroutines may issue requests
// while the transport's single delivery goroutine feeds
// ProcessMessage and ConnectionLost.
type Channel struct {
	id       uint64
	conn     Transport
	config   Config
	observer StateObserver
	metrics  *Collector

	reqID atomic.Int64

	pending       *pendingTable
	notifications *notificationRegistry

	mu        sync.Mutex
	state     State
	handshake *handshakeInFlight

	// Written once during handshake, read-only afterwards.
	node     Node
	version  protocol.Version
	features protocol.FeatureSet
}

// New returns a channel bound to one transport connection. The id is
// assigned by the owner and is opaque to the channel. The channel is
// unusable until StartHandshake succeeds.
func New(id uint64, conn Transport, cfg Config, observer StateObserver) (*Channel, error) {
	if conn == nil {
		return nil, errors.NotValidf("nil Transport")
	}
	if observer == nil {
		return nil, errors.NotValidf("nil StateObserver")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Channel{
		id:            id,
		conn:          conn,
		config:        cfg.withDefaults(),
		observer:      observer,
		metrics:       NewMetricsCollector(),
		pending:       newPendingTable(),
		notifications: newNotificationRegistry(),
		state:         StateCreated,
	}, nil
}

// ID returns the owner-assigned connection ID.
func (ch *Channel) ID() uint64 {
	return ch.id
}

// State returns the current lifecycle state.
func (ch *Channel) State() State {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// Node returns the remote node identity recorded during handshake.
func (ch *Channel) Node() Node {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.node
}

// Version returns the negotiated protocol version.
func (ch *Channel) Version() protocol.Version {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.version
}

// Features returns the feature set accepted by the server. It is
// empty for protocol versions before 1.7.0.
func (ch *Channel) Features() protocol.FeatureSet {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.features
}

// MetricsCollector returns the channel's prometheus collector.
func (ch *Channel) MetricsCollector() *Collector {
	return ch.metrics
}

// StartHandshake performs exactly one handshake attempt sequence,
// blocking until the channel is either Ready or Failed. If the server
// rejects the proposed version and suggests a supported lower one,
// the handshake is retried once with the suggestion; further
// rejections fail the channel. Handshake failures never pass through
// the ordinary failure-propagation path, since no application request
// can be outstanding yet.
func (ch *Channel) StartHandshake(ctx context.Context) error {
	ch.mu.Lock()
	switch ch.state {
	case StateCreated:
	case StateHandshaking, StateReady:
		ch.mu.Unlock()
		return ErrAlreadyStarted
	default:
		ch.mu.Unlock()
		return ErrClosed
	}
	ch.state = StateHandshaking
	ch.mu.Unlock()

	negotiated, result, err := ch.negotiate(ctx)
	if err != nil {
		ch.terminate(StateFailed, err)
		return errors.Trace(err)
	}

	ch.mu.Lock()
	if ch.state != StateHandshaking {
		// The transport failed while the accepted response was being
		// decoded; the terminating path has already reported it.
		ch.mu.Unlock()
		return ErrClosed
	}
	ch.state = StateReady
	ch.version = negotiated
	ch.node = result.node
	ch.features = result.features
	ch.mu.Unlock()

	logger.Debugf("channel %d ready: version %s, node %s", ch.id, negotiated, result.node.ConsistentID)
	ch.observer.Ready(ch.id)
	return nil
}

// negotiate runs the proposal and the single version-downgrade retry.
func (ch *Channel) negotiate(ctx context.Context) (protocol.Version, *handshakeResult, error) {
	proposed := ch.config.Version
	result, err := ch.handshakeAttempt(ctx, proposed)
	if err != nil {
		return protocol.Version{}, nil, errors.Trace(err)
	}
	if result.accepted {
		return proposed, result, nil
	}

	suggested := result.suggested
	logger.Debugf("channel %d: server rejected version %s, suggested %s: %s",
		ch.id, proposed, suggested, result.message)
	if result.status == protocol.StatusAuthFailed || suggested == proposed {
		return protocol.Version{}, nil, errors.Annotatef(ErrHandshakeRejected,
			"%s (%s)", result.message, result.status)
	}
	if !protocol.IsSupported(suggested) {
		return protocol.Version{}, nil, errors.Annotatef(ErrVersionMismatch,
			"server suggested unsupported version %s", suggested)
	}

	result, err = ch.handshakeAttempt(ctx, suggested)
	if err != nil {
		return protocol.Version{}, nil, errors.Trace(err)
	}
	if !result.accepted {
		return protocol.Version{}, nil, errors.Annotatef(ErrHandshakeRejected,
			"server rejected its own suggested version %s: %s", suggested, result.message)
	}
	return suggested, result, nil
}

// handshakeAttempt performs one request/response exchange proposing
// ver. It never re-establishes the connection on failure.
func (ch *Channel) handshakeAttempt(ctx context.Context, ver protocol.Version) (*handshakeResult, error) {
	id := ch.generateRequestID()
	p := newPromise()

	ch.mu.Lock()
	if ch.state != StateHandshaking {
		ch.mu.Unlock()
		return nil, ErrClosed
	}
	ch.handshake = &handshakeInFlight{requestID: id, promise: p}
	ch.mu.Unlock()

	logger.Debugf("channel %d: proposing version %s (request %d)", ch.id, ver, id)
	if err := ch.conn.Send(encodeHandshakeRequest(id, ver, ch.config)); err != nil {
		ch.clearHandshake(id)
		return nil, errors.Annotate(err, "sending handshake")
	}

	select {
	case <-p.ready():
	case <-ch.config.Clock.After(ch.config.HandshakeTimeout):
		ch.clearHandshake(id)
		return nil, errors.Timeoutf("handshake with %s", ch.config.Address)
	case <-ctx.Done():
		ch.clearHandshake(id)
		return nil, errors.Trace(ctx.Err())
	}
	ch.clearHandshake(id)

	frame, err := p.result()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return decodeHandshakeResponse(frame, ver, ch.config.Address)
}

func (ch *Channel) clearHandshake(id int64) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.handshake != nil && ch.handshake.requestID == id {
		ch.handshake = nil
	}
}

// generateRequestID atomically claims the next request ID. IDs start
// at 1 and are never reused for the lifetime of the channel.
func (ch *Channel) generateRequestID() int64 {
	return ch.reqID.Add(1)
}

// generateRequestMessage serializes req into a complete frame and
// returns the ID it was assigned.
func (ch *Channel) generateRequestMessage(req Request) (int64, []byte, error) {
	id := ch.generateRequestID()
	w := wire.NewWriter()
	w.WriteInt32(0)
	w.WriteInt64(id)
	w.WriteInt16(int16(req.OpCode()))
	if err := req.Write(w, ch.Version()); err != nil {
		return 0, nil, errors.Annotatef(err, "serializing request %d", id)
	}
	w.SetInt32(0, int32(w.Len()-protocol.LengthSize))
	return id, w.Bytes(), nil
}

// AsyncMessage sends req and returns a future for its response. It
// never blocks; resolution happens on the transport's delivery
// goroutine.
func (ch *Channel) AsyncMessage(req Request) (*Call, error) {
	if ch.State() != StateReady {
		return nil, ErrNotReady
	}
	id, frame, err := ch.generateRequestMessage(req)
	if err != nil {
		return nil, errors.Trace(err)
	}
	p := newPromise()
	ch.pending.insert(id, p)
	ch.metrics.pendingRequests.Inc()

	// Termination may have drained the table between the state check
	// and the insert; a slot registered after the drain would never
	// be failed, so re-check and withdraw it ourselves.
	if ch.State() != StateReady {
		if _, ok := ch.pending.remove(id); ok {
			ch.metrics.pendingRequests.Dec()
		}
		return nil, ErrNotReady
	}

	if err := ch.conn.Send(frame); err != nil {
		if _, ok := ch.pending.remove(id); ok {
			ch.metrics.pendingRequests.Dec()
		}
		return nil, errors.Trace(err)
	}
	ch.metrics.requestsSent.Inc()
	logger.Tracef("channel %d: sent request %d (op %d)", ch.id, id, req.OpCode())
	return &Call{channel: ch, requestID: id, promise: p}, nil
}

// SyncMessage sends req and blocks until the response is
// deserialized into rsp, the effective timeout elapses, or the
// channel fails. The effective timeout is the config's RequestTimeout
// or the context deadline, whichever is earlier. On timeout the slot
// stays registered so a late response is discarded safely; no
// cancellation is sent upstream.
func (ch *Channel) SyncMessage(ctx context.Context, req Request, rsp Response) error {
	call, err := ch.AsyncMessage(req)
	if err != nil {
		return errors.Trace(err)
	}

	timeout := ch.config.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := deadline.Sub(ch.config.Clock.Now()); remaining < timeout {
			timeout = remaining
		}
	}

	select {
	case <-call.Done():
		return errors.Trace(call.Result(rsp))
	case <-ch.config.Clock.After(timeout):
		return errors.Timeoutf("request %d after %s", call.RequestID(), timeout)
	case <-ctx.Done():
		// A context deadline is just the shorter timeout; report it
		// the same way regardless of which alarm fires first.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.Timeoutf("request %d after %s", call.RequestID(), timeout)
		}
		return errors.Trace(ctx.Err())
	}
}

// ProcessMessage routes one complete inbound frame. It is invoked by
// the transport once per frame and only interprets the 12-byte
// header: a handshake in progress is matched first, then the pending
// request table, then the notification registry. Frames matching
// nothing are dropped. Duplicate responses find no slot and fall
// through to the drop path.
func (ch *Channel) ProcessMessage(frame []byte) {
	if len(frame) < protocol.HeaderSize {
		ch.metrics.unroutable.Inc()
		return
	}
	id := int64(binary.LittleEndian.Uint64(frame[protocol.LengthSize:protocol.HeaderSize]))

	ch.mu.Lock()
	hs := ch.handshake
	ch.mu.Unlock()
	if hs != nil && hs.requestID == id {
		hs.promise.resolve(frame)
		return
	}

	if p, ok := ch.pending.remove(id); ok {
		ch.metrics.pendingRequests.Dec()
		if p.resolve(frame) {
			ch.metrics.responses.Inc()
		}
		logger.Tracef("channel %d: response for request %d", ch.id, id)
		return
	}

	if handler, ok := ch.notifications.lookup(id); ok {
		ch.metrics.notifications.Inc()
		logger.Tracef("channel %d: notification %d", ch.id, id)
		handler(frame)
		return
	}

	ch.metrics.unroutable.Inc()
}

// DeserializeMessage decodes a frame received on this channel into
// rsp, skipping the header and applying the negotiated protocol
// version.
func (ch *Channel) DeserializeMessage(frame []byte, rsp Response) error {
	r := wire.NewReader(frame)
	r.Skip(protocol.HeaderSize)
	if err := rsp.Read(r, ch.Version()); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(r.Err())
}

// RegisterNotificationHandler installs handler for the given
// notification ID. Registration must happen before the first
// notification arrives or that notification is dropped. Registering
// over an existing ID replaces the handler.
func (ch *Channel) RegisterNotificationHandler(id int64, handler NotificationHandler) {
	ch.notifications.register(id, handler)
}

// UnregisterNotificationHandler removes the handler for id, if any.
func (ch *Channel) UnregisterNotificationHandler(id int64) {
	ch.notifications.unregister(id)
}

// ConnectionLost is invoked by the transport when the connection is
// no longer usable.
func (ch *Channel) ConnectionLost(err error) {
	ch.FailPendingRequests(err)
}

// FailPendingRequests atomically drains the pending request table and
// fails every outstanding promise with a uniform error carrying the
// cause. The notification registry is left alone; its handlers are
// owned by higher-level features. The channel is permanently unusable
// afterwards.
func (ch *Channel) FailPendingRequests(err error) {
	if err == nil {
		err = errors.New("connection lost")
	}
	ch.terminate(StateFailed, err)
}

// Close shuts the channel down deliberately. It is idempotent, and
// mutually exclusive with the failure path: whichever runs first wins
// and the other is a no-op.
func (ch *Channel) Close() error {
	ch.terminate(StateClosed, nil)
	return nil
}

// terminate moves the channel to a terminal state, fails any
// handshake in flight, drains the pending table, notifies the
// observer and closes the transport.
func (ch *Channel) terminate(to State, cause error) {
	ch.mu.Lock()
	if ch.state == StateClosed || ch.state == StateFailed {
		ch.mu.Unlock()
		return
	}
	ch.state = to
	hs := ch.handshake
	ch.handshake = nil
	ch.mu.Unlock()

	var failure error
	if to == StateClosed {
		failure = ErrClosed
	} else {
		failure = errors.Annotate(cause, "channel failed")
	}

	if hs != nil {
		hs.promise.fail(failure)
	}
	drained := ch.pending.drain()
	for _, p := range drained {
		p.fail(failure)
	}
	if n := len(drained); n > 0 {
		ch.metrics.drainedRequests.Add(float64(n))
		ch.metrics.pendingRequests.Sub(float64(n))
		logger.Debugf("channel %d: failed %d pending requests: %v", ch.id, n, failure)
	}

	if to == StateClosed {
		ch.notifications.clear()
		ch.observer.Closed(ch.id)
	} else {
		logger.Debugf("channel %d failed: %v", ch.id, cause)
		ch.observer.Failed(ch.id, cause)
	}
	_ = ch.conn.Close()
}
