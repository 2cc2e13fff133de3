// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package transport

import (
	"crypto/tls"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
)

const (
	defaultDialTimeout    = 30 * time.Second
	defaultDialAttempts   = 1
	defaultDialRetryDelay = time.Second

	// defaultMaxFrameSize caps inbound frames at 64MiB. A length
	// beyond the cap means a corrupt stream, not a big payload.
	defaultMaxFrameSize = 64 << 20
)

// Config holds the connection parameters for Dial.
type Config struct {
	// Address is the host:port of the remote node.
	Address string

	// TLSConfig, when non-nil, wraps the connection in a TLS client
	// session.
	TLSConfig *tls.Config

	// DialTimeout bounds each connection attempt. Zero means 30s.
	DialTimeout time.Duration

	// DialAttempts is the number of connection attempts before Dial
	// gives up. Zero means a single attempt; retry-on-connect policy
	// lives here, never in the channel.
	DialAttempts int

	// DialRetryDelay is the pause between attempts. Zero means 1s.
	DialRetryDelay time.Duration

	// MaxFrameSize caps the length field of inbound frames. Zero
	// means 64MiB.
	MaxFrameSize int

	// Clock is used for dial retries. Nil means clock.WallClock.
	Clock clock.Clock
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if c.Address == "" {
		return errors.NotValidf("empty Address")
	}
	if c.DialTimeout < 0 {
		return errors.NotValidf("negative DialTimeout")
	}
	if c.DialAttempts < 0 {
		return errors.NotValidf("negative DialAttempts")
	}
	if c.DialRetryDelay < 0 {
		return errors.NotValidf("negative DialRetryDelay")
	}
	if c.MaxFrameSize < 0 {
		return errors.NotValidf("negative MaxFrameSize")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.DialAttempts == 0 {
		c.DialAttempts = defaultDialAttempts
	}
	if c.DialRetryDelay == 0 {
		c.DialRetryDelay = defaultDialRetryDelay
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = defaultMaxFrameSize
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	return c
}
