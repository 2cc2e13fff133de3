// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package wire

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

// Reader is a positional reader over a single frame. The first failed
// read sticks: every subsequent read returns a zero value and Err
// keeps reporting the original cause.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader over data. The Reader does not copy the
// slice.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Err returns the first read failure, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Skip advances past n bytes without interpreting them.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// take returns the next n bytes, or nil after recording a sticky
// error when fewer remain.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = errors.Annotatef(io.ErrUnexpectedEOF, "reading %d bytes at offset %d of %d", n, r.off, len(r.buf))
		return nil
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out
}

// ReadBool reads a single byte as a bool; any non-zero value is true.
func (r *Reader) ReadBool() bool {
	b := r.take(1)
	return b != nil && b[0] != 0
}

// ReadInt8 reads a single byte.
func (r *Reader) ReadInt8() int8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return int8(b[0])
}

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// ReadByteArray reads an int32 length prefix and that many bytes.
// A length of -1 decodes as nil. The returned slice is a copy.
func (r *Reader) ReadByteArray() []byte {
	n := r.ReadInt32()
	if r.err != nil || n < 0 {
		return nil
	}
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadString reads an int32 length prefix and that many UTF-8 bytes.
// A length of -1 decodes as "".
func (r *Reader) ReadString() string {
	n := r.ReadInt32()
	if r.err != nil || n < 0 {
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

// ReadUUID reads 16 raw bytes as a UUID.
func (r *Reader) ReadUUID() uuid.UUID {
	b := r.take(16)
	if b == nil {
		return uuid.UUID{}
	}
	var id uuid.UUID
	copy(id[:], b)
	return id
}
