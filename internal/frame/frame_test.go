package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// onlyReader hides io.ByteReader so the single-byte path is exercised.
type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func TestWriteRead_Sequence(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{[]byte("one"), {}, bytes.Repeat([]byte{7}, 300)}
	for _, p := range payloads {
		if err := Write(&buf, p); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	r := onlyReader{&buf}
	for i, want := range payloads {
		got, err := Read(r)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d mismatch", i)
		}
	}
	if _, err := Read(r); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestRead_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	cut := buf.Bytes()[:4]
	if _, err := Read(bytes.NewReader(cut)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestRead_TooLarge(t *testing.T) {
	hdr := []byte{0xff, 0xff, 0xff, 0xff, 0x0f}
	if _, err := Read(bytes.NewReader(hdr)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
