// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package wire_test

import (
	"io"

	"github.com/google/uuid"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/ignite-go/wire"
)

type WireSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&WireSuite{})

func (s *WireSuite) TestScalars(c *gc.C) {
	w := wire.NewWriter()
	w.WriteBool(true)
	w.WriteInt8(-5)
	w.WriteInt16(-300)
	w.WriteUint16(65535)
	w.WriteInt32(1 << 20)
	w.WriteInt64(-1)
	c.Check(w.Len(), gc.Equals, 1+1+2+2+4+8)

	r := wire.NewReader(w.Bytes())
	c.Check(r.ReadBool(), jc.IsTrue)
	c.Check(r.ReadInt8(), gc.Equals, int8(-5))
	c.Check(r.ReadInt16(), gc.Equals, int16(-300))
	c.Check(uint16(r.ReadInt16()), gc.Equals, uint16(65535))
	c.Check(r.ReadInt32(), gc.Equals, int32(1<<20))
	c.Check(r.ReadInt64(), gc.Equals, int64(-1))
	c.Check(r.Err(), jc.ErrorIsNil)
	c.Check(r.Remaining(), gc.Equals, 0)
}

func (s *WireSuite) TestLittleEndianLayout(c *gc.C) {
	w := wire.NewWriter()
	w.WriteInt32(0x01020304)
	c.Check(w.Bytes(), jc.DeepEquals, []byte{0x04, 0x03, 0x02, 0x01})
}

func (s *WireSuite) TestStringRoundTrip(c *gc.C) {
	w := wire.NewWriter()
	w.WriteString("ignite")
	w.WriteString("")
	w.WriteString("naïve")

	r := wire.NewReader(w.Bytes())
	c.Check(r.ReadString(), gc.Equals, "ignite")
	c.Check(r.ReadString(), gc.Equals, "")
	c.Check(r.ReadString(), gc.Equals, "naïve")
	c.Check(r.Err(), jc.ErrorIsNil)
}

func (s *WireSuite) TestEmptyStringEncodesAsMinusOne(c *gc.C) {
	w := wire.NewWriter()
	w.WriteString("")
	c.Check(w.Bytes(), jc.DeepEquals, []byte{0xff, 0xff, 0xff, 0xff})
}

func (s *WireSuite) TestByteArrayRoundTrip(c *gc.C) {
	w := wire.NewWriter()
	w.WriteByteArray([]byte{1, 2, 3})
	w.WriteByteArray(nil)
	w.WriteByteArray([]byte{})

	r := wire.NewReader(w.Bytes())
	c.Check(r.ReadByteArray(), jc.DeepEquals, []byte{1, 2, 3})
	c.Check(r.ReadByteArray(), gc.IsNil)
	c.Check(r.ReadByteArray(), jc.DeepEquals, []byte{})
	c.Check(r.Err(), jc.ErrorIsNil)
}

func (s *WireSuite) TestUUIDRoundTrip(c *gc.C) {
	id := uuid.MustParse("8400a2a8-3c4c-4a51-9e13-9f133ef7d9c2")
	w := wire.NewWriter()
	w.WriteUUID(id)
	c.Check(w.Len(), gc.Equals, 16)

	r := wire.NewReader(w.Bytes())
	c.Check(r.ReadUUID(), gc.Equals, id)
	c.Check(r.Err(), jc.ErrorIsNil)
}

func (s *WireSuite) TestSetInt32Backfill(c *gc.C) {
	w := wire.NewWriter()
	w.WriteInt32(0)
	w.WriteInt64(42)
	w.SetInt32(0, int32(w.Len()-4))

	r := wire.NewReader(w.Bytes())
	c.Check(r.ReadInt32(), gc.Equals, int32(8))
	c.Check(r.ReadInt64(), gc.Equals, int64(42))
}

func (s *WireSuite) TestShortBufferStickyError(c *gc.C) {
	r := wire.NewReader([]byte{1, 2})
	c.Check(r.ReadInt32(), gc.Equals, int32(0))
	c.Assert(r.Err(), gc.NotNil)
	c.Check(r.Err(), jc.ErrorIs, io.ErrUnexpectedEOF)
	first := r.Err()

	// Later reads stay zero and keep the original cause, even though
	// two bytes technically remain.
	c.Check(r.ReadInt16(), gc.Equals, int16(0))
	c.Check(r.ReadString(), gc.Equals, "")
	c.Check(r.Err(), gc.Equals, first)
}

func (s *WireSuite) TestStringLengthBeyondBuffer(c *gc.C) {
	w := wire.NewWriter()
	w.WriteInt32(1000)
	w.WriteBytes([]byte("short"))

	r := wire.NewReader(w.Bytes())
	c.Check(r.ReadString(), gc.Equals, "")
	c.Check(r.Err(), jc.ErrorIs, io.ErrUnexpectedEOF)
}

func (s *WireSuite) TestSkip(c *gc.C) {
	w := wire.NewWriter()
	w.WriteInt64(0)
	w.WriteInt32(7)

	r := wire.NewReader(w.Bytes())
	r.Skip(8)
	c.Check(r.ReadInt32(), gc.Equals, int32(7))
	c.Check(r.Err(), jc.ErrorIsNil)

	r.Skip(1)
	c.Check(r.Err(), jc.ErrorIs, io.ErrUnexpectedEOF)
}
