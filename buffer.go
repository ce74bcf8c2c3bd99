package base64file

import (
	"fmt"
	"io"
)

// Buffer is a seekable in-memory Medium. The zero value is an empty buffer
// ready for use. It is the in-memory analog of a text file holding the
// encoded stream, useful for caller-supplied media and for tests.
type Buffer struct {
	data []byte
	off  int64
}

// NewBuffer creates a Buffer whose initial contents are data. The new
// Buffer takes ownership of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// NewBufferString creates a Buffer whose initial contents are s.
func NewBufferString(s string) *Buffer {
	return &Buffer{data: []byte(s)}
}

// Read implements io.Reader.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.off:])
	b.off += int64(n)
	return n, nil
}

// Write implements io.Writer. Writing past the end of the buffer fills the
// gap with zero bytes, matching file semantics.
func (b *Buffer) Write(p []byte) (int, error) {
	if grow := b.off + int64(len(p)) - int64(len(b.data)); grow > 0 {
		b.data = append(b.data, make([]byte, grow)...)
	}
	n := copy(b.data[b.off:], p)
	b.off += int64(n)
	return n, nil
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.off + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("base64file: buffer seek: invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("base64file: buffer seek to %d: %w", pos, ErrNegativeOffset)
	}
	b.off = pos
	return pos, nil
}

// Truncate changes the buffer's size. Growing fills with zero bytes. The
// current position is unchanged.
func (b *Buffer) Truncate(size int64) error {
	switch {
	case size < 0:
		return fmt.Errorf("base64file: buffer truncate to %d: %w", size, ErrNegativeOffset)
	case size <= int64(len(b.data)):
		b.data = b.data[:size]
	default:
		b.data = append(b.data, make([]byte, size-int64(len(b.data)))...)
	}
	return nil
}

// Bytes returns the buffer's contents. The slice is only valid until the
// next mutating call.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns the buffer's contents as a string.
func (b *Buffer) String() string { return string(b.data) }

// Len returns the number of characters the buffer holds.
func (b *Buffer) Len() int { return len(b.data) }

var (
	_ Medium    = (*Buffer)(nil)
	_ Truncater = (*Buffer)(nil)
)
