// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package wire implements the little-endian binary stream codec the
// protocol frames are built from. The format is positional: both ends
// must agree on field order, and a string or byte-array length of -1
// decodes as the zero value.
package wire

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Writer is an append-only growing buffer of little-endian values.
// Writer methods do not fail; the buffer lives in memory.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer. The slice is only valid until
// the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteBool writes a bool as a single byte, 1 for true.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteInt8 writes a single byte.
func (w *Writer) WriteInt8(v int8) {
	w.buf = append(w.buf, byte(v))
}

// WriteInt16 writes a little-endian int16.
func (w *Writer) WriteInt16(v int16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
}

// WriteUint16 writes a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteInt32 writes a little-endian int32.
func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInt64 writes a little-endian int64.
func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// WriteBytes writes raw bytes with no length prefix.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteByteArray writes an int32 length prefix followed by the bytes.
// A nil slice is written as length -1.
func (w *Writer) WriteByteArray(data []byte) {
	if data == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(data)))
	w.buf = append(w.buf, data...)
}

// WriteString writes an int32 length prefix followed by the UTF-8
// bytes. An empty string is written as length -1.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteUUID writes the 16 raw bytes of the UUID.
func (w *Writer) WriteUUID(id uuid.UUID) {
	w.buf = append(w.buf, id[:]...)
}

// SetInt32 overwrites the four bytes at offset with a little-endian
// int32, for backfilling a length field after the payload is known.
// The offset must address bytes already written.
func (w *Writer) SetInt32(offset int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[offset:offset+4], uint32(v))
}
