package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func encode(t *testing.T, frames ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}
	return buf.Bytes()
}

func TestReadFrame(t *testing.T) {
	t.Parallel()

	one := []byte{0x01, 0xaa, 0xbb}
	two := []byte{0x02, 0xcc}

	tests := []struct {
		name  string
		input []byte
		want  [][]byte
	}{
		{
			name:  "single frame",
			input: encode(t, one),
			want:  [][]byte{one},
		},
		{
			name:  "back to back",
			input: encode(t, one, two),
			want:  [][]byte{one, two},
		},
		{
			name:  "garbage before magic",
			input: append([]byte{0x00, 0x4E, 0x8A, 0x11}, encode(t, one)...),
			want:  [][]byte{one},
		},
		{
			name:  "repeated first magic byte",
			input: append([]byte{0x4E}, encode(t, two)...),
			want:  [][]byte{two},
		},
		{
			name:  "single byte frame",
			input: encode(t, []byte{0x07}),
			want:  [][]byte{{0x07}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewReader(bytes.NewReader(tc.input))
			for i, want := range tc.want {
				got, err := r.ReadFrame()
				if err != nil {
					t.Fatalf("ReadFrame() #%d error = %v", i, err)
				}
				if !bytes.Equal(got, want) {
					t.Errorf("ReadFrame() #%d = %x, want %x", i, got, want)
				}
			}

			if _, err := r.ReadFrame(); !errors.Is(err, io.EOF) {
				t.Errorf("ReadFrame() at end error = %v, want EOF", err)
			}
		})
	}
}

func TestReadFrame_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"zero length", append(Magic[:], 0x00, 0x00), ErrEmptyFrame},
		{"truncated body", append(Magic[:], 0x00, 0x05, 0x01), io.ErrUnexpectedEOF},
		{"truncated length", append(Magic[:], 0x00), io.ErrUnexpectedEOF},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := append([]byte{}, tc.input...)
			_, err := NewReader(bytes.NewReader(input)).ReadFrame()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestWriteFrame_Errors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("WriteFrame(nil) error = %v, want ErrEmptyFrame", err)
	}
	if err := WriteFrame(&buf, make([]byte, MaxFrameSize+1)); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("WriteFrame(too large) error = %v, want ErrFrameTooLarge", err)
	}
	if buf.Len() != 0 {
		t.Errorf("failed writes produced %d bytes", buf.Len())
	}
}
