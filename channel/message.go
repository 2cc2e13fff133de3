// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/canonical/ignite-go/protocol"
	"github.com/canonical/ignite-go/wire"
)

// Request is an outbound unit of work. The channel frames and
// correlates it; the request itself owns the payload layout.
type Request interface {
	// OpCode identifies the operation family.
	OpCode() protocol.OpCode

	// Write serializes the request body. The wire layout may vary
	// with the negotiated protocol version.
	Write(w *wire.Writer, ver protocol.Version) error
}

// Response is an inbound unit keyed by the request ID it answers.
type Response interface {
	// Read deserializes the response body, positioned just past the
	// frame header.
	Read(r *wire.Reader, ver protocol.Version) error
}

// ServerError is the error reported when the server answers with a
// non-success status.
type ServerError struct {
	Status  protocol.Status
	Message string
}

// Error is part of the error interface.
func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %s", e.Status)
	}
	return fmt.Sprintf("server error: %s: %s", e.Status, e.Message)
}

// ReadStatus reads the int32 status that leads a response payload.
// It returns nil for success, and a *ServerError carrying the
// server's message otherwise.
func ReadStatus(r *wire.Reader) error {
	status := protocol.Status(r.ReadInt32())
	if err := r.Err(); err != nil {
		return errors.Trace(err)
	}
	if status == protocol.StatusSuccess {
		return nil
	}
	return &ServerError{Status: status, Message: r.ReadString()}
}

// Call is the future returned by AsyncMessage. It resolves on the
// transport's delivery goroutine, never on the caller's.
type Call struct {
	channel   *Channel
	requestID int64
	promise   *promise
}

// RequestID returns the ID the request was sent under.
func (c *Call) RequestID() int64 {
	return c.requestID
}

// Done is closed once the call has a result, successful or not.
func (c *Call) Done() <-chan struct{} {
	return c.promise.ready()
}

// Result blocks until the call resolves, then deserializes the
// response into rsp using the negotiated protocol version. A nil rsp
// discards the payload.
func (c *Call) Result(rsp Response) error {
	<-c.promise.ready()
	frame, err := c.promise.result()
	if err != nil {
		return errors.Trace(err)
	}
	if rsp == nil {
		return nil
	}
	return errors.Trace(c.channel.DeserializeMessage(frame, rsp))
}
