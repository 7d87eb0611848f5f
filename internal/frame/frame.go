// Package frame implements the length-delimited framing used by item dumps: a
// uvarint payload length followed by the payload bytes. Frames written back to
// back form a concatenable stream.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxSize bounds the payload length accepted by Read.
const MaxSize = 1 << 30

// ErrTooLarge is returned when a frame header announces more than MaxSize bytes.
var ErrTooLarge = errors.New("frame: payload too large")

// Write emits one frame.
func Write(w io.Writer, payload []byte) error {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(payload)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// Read returns the next frame payload. At a clean frame boundary with no more
// input it returns io.EOF; a frame cut short yields io.ErrUnexpectedEOF.
func Read(r io.Reader) ([]byte, error) {
	size, err := binary.ReadUvarint(byteReader(r))
	if err != nil {
		return nil, err
	}
	if size > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// byteReader reads the header one byte at a time so no payload bytes are
// consumed from a reader shared with later Read calls.
func byteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &singleByteReader{r: r}
}

type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (s *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		return 0, err
	}
	return s.buf[0], nil
}
