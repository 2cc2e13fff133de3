// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/canonical/ignite-go/protocol"
)

const (
	defaultRequestTimeout   = 30 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

// Config holds the channel's construction-time parameters.
type Config struct {
	// Address is the remote endpoint the transport is connected to,
	// recorded on the Node after handshake.
	Address string

	// Version overrides the preferred protocol version proposed
	// during handshake. The zero value means protocol.DefaultVersion.
	Version protocol.Version

	// Username and Password are the handshake credentials. They are
	// only put on the wire when Username is non-empty.
	Username string
	Password string

	// RequestTimeout bounds the wait in SyncMessage when the caller's
	// context carries no earlier deadline. Zero means 30s.
	RequestTimeout time.Duration

	// HandshakeTimeout bounds the wait for each handshake response.
	// Zero means 10s.
	HandshakeTimeout time.Duration

	// Clock is used for all waiting. Nil means clock.WallClock.
	Clock clock.Clock
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if c.Address == "" {
		return errors.NotValidf("empty Address")
	}
	if c.Version != (protocol.Version{}) && !protocol.IsSupported(c.Version) {
		return errors.NotValidf("unsupported protocol version %s", c.Version)
	}
	if c.RequestTimeout < 0 {
		return errors.NotValidf("negative RequestTimeout")
	}
	if c.HandshakeTimeout < 0 {
		return errors.NotValidf("negative HandshakeTimeout")
	}
	return nil
}

// withDefaults returns a copy of the config with unset fields filled
// in.
func (c Config) withDefaults() Config {
	if c.Version == (protocol.Version{}) {
		c.Version = protocol.DefaultVersion
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	return c
}
