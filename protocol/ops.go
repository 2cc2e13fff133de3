// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package protocol

// OpCode identifies an operation family on the wire. Application
// operation codes are defined by the layer that builds the request
// payloads; only the handshake code belongs to the channel itself.
type OpCode int16

// OpHandshake is the operation code of the version negotiation
// exchange that precedes all application traffic.
const OpHandshake OpCode = 1

// Frame header geometry: every frame starts with a little-endian
// int32 length (excluding itself) followed by an int64 request ID.
const (
	LengthSize    = 4
	RequestIDSize = 8
	HeaderSize    = LengthSize + RequestIDSize
)
