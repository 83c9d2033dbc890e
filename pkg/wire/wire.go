// Package wire delimits frames on a byte stream.
//
// Each frame is sent as:
//
//	magic 4E 8A 5A 5C | length (u16, big endian) | frame bytes
//
// The reader skips anything before a magic sequence, so a peer that sends
// garbage does not desynchronise the stream permanently.
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic precedes every frame on the stream.
var Magic = [4]byte{0x4E, 0x8A, 0x5A, 0x5C}

// MaxFrameSize is the largest frame a u16 length can describe.
const MaxFrameSize = 0xFFFF

var (
	// ErrEmptyFrame is returned for zero-length frames.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrFrameTooLarge is returned by WriteFrame for frames above MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")
)

// Reader reads frames from a stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader ...
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadFrame blocks until one full frame has been read.
func (r *Reader) ReadFrame() ([]byte, error) {
	if err := r.sync(); err != nil {
		return nil, err
	}

	var hdr [2]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		return nil, fmt.Errorf("reading length: %w", err)
	}
	n := binary.BigEndian.Uint16(hdr[:])
	if n == 0 {
		return nil, ErrEmptyFrame
	}

	frame := make([]byte, n)
	if _, err := io.ReadFull(r.r, frame); err != nil {
		return nil, fmt.Errorf("reading frame (len=%d): %w", n, err)
	}

	return frame, nil
}

// sync consumes bytes until a complete magic sequence has been read.
func (r *Reader) sync() error {
	matched := 0
	for matched < len(Magic) {
		b, err := r.r.ReadByte()
		if err != nil {
			return err
		}

		switch {
		case b == Magic[matched]:
			matched++
		case b == Magic[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	return nil
}

// AppendFrame appends the encoded frame to dst.
func AppendFrame(dst, frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return dst, ErrEmptyFrame
	}
	if len(frame) > MaxFrameSize {
		return dst, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame))
	}

	dst = append(dst, Magic[:]...)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(frame)))
	return append(dst, frame...), nil
}

// WriteFrame writes frame to w with a single Write call.
func WriteFrame(w io.Writer, frame []byte) error {
	buf, err := AppendFrame(make([]byte, 0, len(Magic)+2+len(frame)), frame)
	if err != nil {
		return err
	}

	_, err = w.Write(buf)
	return err
}
