// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import (
	"github.com/juju/errors"

	"github.com/canonical/ignite-go/protocol"
	"github.com/canonical/ignite-go/wire"
)

// clientCodeThin identifies a thin client in the handshake request.
const clientCodeThin int8 = 2

// handshakeInFlight tracks the single handshake exchange awaiting a
// response. Inbound routing matches it before consulting the pending
// request table.
type handshakeInFlight struct {
	requestID int64
	promise   *promise
}

// handshakeResult is one decoded handshake response.
type handshakeResult struct {
	accepted bool

	// Set when accepted.
	node     Node
	features protocol.FeatureSet

	// Set when rejected.
	suggested protocol.Version
	status    protocol.Status
	message   string
}

// encodeHandshakeRequest builds a complete handshake frame proposing
// ver. Credentials are only written when a username is configured;
// the feature bitmask only travels for versions that know about it.
func encodeHandshakeRequest(id int64, ver protocol.Version, cfg Config) []byte {
	w := wire.NewWriter()
	w.WriteInt32(0)
	w.WriteInt64(id)
	w.WriteInt16(int16(protocol.OpHandshake))
	w.WriteInt16(ver.Major)
	w.WriteInt16(ver.Minor)
	w.WriteInt16(ver.Patch)
	w.WriteInt8(clientCodeThin)
	if !ver.Less(protocol.Version1_7_0) {
		w.WriteByteArray(protocol.AllFeatures().Bytes())
	}
	if cfg.Username != "" {
		w.WriteString(cfg.Username)
		w.WriteString(cfg.Password)
	}
	w.SetInt32(0, int32(w.Len()-protocol.LengthSize))
	return w.Bytes()
}

// decodeHandshakeResponse parses a handshake response frame. The
// proposed version determines whether a feature bitmask is expected
// on the accept path.
func decodeHandshakeResponse(frame []byte, proposed protocol.Version, address string) (*handshakeResult, error) {
	r := wire.NewReader(frame)
	r.Skip(protocol.HeaderSize)

	result := &handshakeResult{accepted: r.ReadBool()}
	if result.accepted {
		if !proposed.Less(protocol.Version1_7_0) {
			result.features = protocol.FeatureSetFromBytes(r.ReadByteArray())
		}
		result.node = Node{
			ID:           r.ReadUUID(),
			ConsistentID: r.ReadString(),
			Address:      address,
		}
	} else {
		result.suggested = protocol.Version{
			Major: r.ReadInt16(),
			Minor: r.ReadInt16(),
			Patch: r.ReadInt16(),
		}
		result.message = r.ReadString()
		result.status = protocol.Status(r.ReadInt32())
	}
	if err := r.Err(); err != nil {
		return nil, errors.Annotate(err, "malformed handshake response")
	}
	return result, nil
}
