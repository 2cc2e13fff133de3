// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel_test

import (
	jc "github.com/juju/testing/checkers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	gc "gopkg.in/check.v1"

	"github.com/canonical/ignite-go/channel"
)

type NotificationSuite struct {
	baseSuite
}

var _ = gc.Suite(&NotificationSuite{})

const notificationID int64 = 424242

func (s *NotificationSuite) TestHandlerReceivesEveryFrame(c *gc.C) {
	ch := s.newReadyChannel(c)

	var received []string
	ch.RegisterNotificationHandler(notificationID, func(frame []byte) {
		rsp := &echoResponse{}
		c.Check(ch.DeserializeMessage(frame, rsp), jc.ErrorIsNil)
		received = append(received, rsp.payload)
	})

	// Entries are recurring: delivery does not consume them.
	ch.ProcessMessage(responseFrame(notificationID, "event-1"))
	ch.ProcessMessage(responseFrame(notificationID, "event-2"))

	c.Check(received, jc.DeepEquals, []string{"event-1", "event-2"})
	notifications := testutil.ToFloat64(ch.MetricsCollector().Notifications())
	c.Check(notifications, gc.Equals, 2.0)
}

func (s *NotificationSuite) TestUnregisteredIDInvokesNothing(c *gc.C) {
	ch := s.newReadyChannel(c)

	called := false
	ch.RegisterNotificationHandler(notificationID, func([]byte) {
		called = true
	})

	ch.ProcessMessage(responseFrame(notificationID+1, "stray"))
	c.Check(called, jc.IsFalse)
	unroutable := testutil.ToFloat64(ch.MetricsCollector().Unroutable())
	c.Check(unroutable, gc.Equals, 1.0)
}

func (s *NotificationSuite) TestLastRegistrationWins(c *gc.C) {
	ch := s.newReadyChannel(c)

	var first, second int
	ch.RegisterNotificationHandler(notificationID, func([]byte) { first++ })
	ch.RegisterNotificationHandler(notificationID, func([]byte) { second++ })

	ch.ProcessMessage(responseFrame(notificationID, "event"))
	c.Check(first, gc.Equals, 0)
	c.Check(second, gc.Equals, 1)
}

func (s *NotificationSuite) TestUnregister(c *gc.C) {
	ch := s.newReadyChannel(c)

	called := false
	ch.RegisterNotificationHandler(notificationID, func([]byte) { called = true })
	ch.UnregisterNotificationHandler(notificationID)

	// Removing an unknown ID is a no-op.
	ch.UnregisterNotificationHandler(notificationID + 1)

	ch.ProcessMessage(responseFrame(notificationID, "event"))
	c.Check(called, jc.IsFalse)
}

func (s *NotificationSuite) TestRegistryClearedOnClose(c *gc.C) {
	ch := s.newReadyChannel(c)

	called := false
	ch.RegisterNotificationHandler(notificationID, func([]byte) { called = true })
	c.Assert(ch.Close(), jc.ErrorIsNil)

	ch.ProcessMessage(responseFrame(notificationID, "event"))
	c.Check(called, jc.IsFalse)
}

func (s *NotificationSuite) TestRegistrySurvivesFailure(c *gc.C) {
	ch := s.newReadyChannel(c)

	var frames int
	ch.RegisterNotificationHandler(notificationID, func([]byte) { frames++ })
	ch.FailPendingRequests(errBoom)

	// Failure does not touch the registry; cleanup belongs to the
	// features that own the handlers.
	ch.ProcessMessage(responseFrame(notificationID, "event"))
	c.Check(frames, gc.Equals, 1)
	c.Check(ch.State(), gc.Equals, channel.StateFailed)
}

func (s *NotificationSuite) TestResponsesTakePriorityOverNotifications(c *gc.C) {
	ch := s.newReadyChannel(c)

	call, err := ch.AsyncMessage(&echoRequest{payload: "x"})
	c.Assert(err, jc.ErrorIsNil)
	s.transport.nextFrame(c)

	// A handler registered under a pending request ID never sees the
	// response: the pending table is consulted first.
	called := false
	ch.RegisterNotificationHandler(call.RequestID(), func([]byte) { called = true })
	ch.ProcessMessage(responseFrame(call.RequestID(), "rsp"))

	c.Check(called, jc.IsFalse)
	c.Assert(call.Result(nil), jc.ErrorIsNil)

	// With the slot gone, the same ID now routes to the handler.
	ch.ProcessMessage(responseFrame(call.RequestID(), "event"))
	c.Check(called, jc.IsTrue)
}
