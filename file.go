package base64file

import (
	"encoding/base64"
	"fmt"
	"io"
)

// File is a random-access handle over base64-encoded text. It owns the
// current byte position and a small pending buffer for the in-flight group
// span, and delegates every operation to the alignment transcoder.
//
// A File is not safe for concurrent use by multiple goroutines. "Concurrent
// mode" ("r+", "w+", "a+", "x+") refers to interleaving read and write
// calls on one handle, not to thread safety.
type File struct {
	tc    transcoder
	mode  Mode
	owned bool

	closed bool
	cursor int64

	// The active group span. buf holds decoded bytes starting at the
	// group-aligned byte offset bufStart; the cursor always lies within
	// [bufStart, bufStart+len(buf)] while the span is active. The final
	// group of the stream is in one of three states: pending in buf
	// (dirty), flushed with temporary padding (buf retained, not dirty),
	// or committed permanently at Close.
	buf      []byte
	bufStart int64
	dirty    bool
}

type config struct {
	enc   *base64.Encoding
	owned bool
}

// Option configures a File at construction.
type Option func(*config)

// WithEncoding selects an alternate base64 alphabet, such as
// base64.URLEncoding or a base64.NewEncoding variant. The encoding must pad
// short groups; unpadded encodings cannot represent the rewritable final
// group.
func WithEncoding(enc *base64.Encoding) Option {
	return func(c *config) { c.enc = enc }
}

// TakeOwnership makes the handle close the medium when the handle is
// closed. Without it, a caller-supplied medium is left open for the caller
// to manage.
func TakeOwnership() Option {
	return func(c *config) { c.owned = true }
}

// New creates a File over an already-open medium. The medium's current
// position becomes character offset 0 of the encoded stream, so a handle
// can be attached mid-way through a larger file. The medium is not closed
// by the handle unless TakeOwnership is given.
//
// The mode string is parsed by ParseMode. It must be consistent with what
// the medium physically supports: merging boundary groups on unaligned
// reads and writes requires reading the medium back, and append mode
// requires decoding the final group to position the handle at the end.
func New(m Medium, mode string, opts ...Option) (*File, error) {
	md, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	cfg := config{enc: base64.StdEncoding}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.enc.EncodedLen(1) != encGroup {
		return nil, fmt.Errorf("base64file: %w", ErrInvalidEncoding)
	}
	origin, err := m.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("base64file: determine medium position: %w", err)
	}
	f := &File{
		tc:    transcoder{m: m, enc: cfg.enc, origin: origin},
		mode:  md,
		owned: cfg.owned,
	}
	if md.Append {
		sz, err := f.tc.size()
		if err != nil {
			return nil, err
		}
		f.cursor = sz
		if rem := sz % rawGroup; rem != 0 {
			// Load the final short group so sequential writes can
			// extend it even on a write-only handle.
			raw, err := f.tc.readAligned(sz-rem, int(rem))
			if err != nil {
				return nil, err
			}
			f.buf = raw
			f.bufStart = sz - rem
		}
	}
	return f, nil
}

func (f *File) ensureOpen() error {
	if f.closed {
		return fmt.Errorf("base64file: %w", ErrClosed)
	}
	return nil
}

// bufPos returns the cursor's offset within the active span.
func (f *File) bufPos() int {
	return int(f.cursor - f.bufStart)
}

// mergePending completes the active span with the bytes the medium already
// holds for its group. Pending bytes win; bytes beyond them are extended
// from the medium.
func (f *File) mergePending() error {
	if len(f.buf) >= rawGroup {
		return nil
	}
	existing, err := f.tc.readRange(f.bufStart, rawGroup)
	if err != nil {
		return err
	}
	if len(existing) > len(f.buf) {
		f.buf = append(f.buf, existing[len(f.buf):]...)
	}
	return nil
}

// Read implements io.Reader. Reading more bytes than remain returns exactly
// the remaining bytes; a subsequent call returns 0, io.EOF.
func (f *File) Read(p []byte) (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	if !f.mode.Read {
		return 0, fmt.Errorf("base64file: read: %w", ErrNotReadable)
	}
	if len(p) == 0 {
		return 0, nil
	}

	if f.dirty {
		if err := f.mergePending(); err != nil {
			return 0, err
		}
		pos := f.bufPos()
		if len(f.buf) >= rawGroup && pos+len(p) >= rawGroup {
			// The read passes beyond the pending group; commit it so
			// the aligned bulk path can stream past.
			if err := f.tc.writeAt(f.bufStart, f.buf); err != nil {
				return 0, err
			}
			f.dirty = false
			f.buf = nil
		} else {
			// Serve entirely from the pending span.
			n := copy(p, f.buf[pos:])
			if n == 0 {
				return 0, io.EOF
			}
			f.cursor += int64(n)
			return n, nil
		}
	}

	skew := int(f.cursor % rawGroup)
	start := f.cursor - int64(skew)
	raw, err := f.tc.readAligned(start, skew+len(p))
	if err != nil {
		return 0, err
	}
	if skew >= len(raw) {
		return 0, io.EOF
	}
	n := copy(p, raw[skew:])
	f.cursor += int64(n)
	f.retainTail(start, raw)
	return n, nil
}

// retainTail keeps a short final group read from the medium as the active
// (flushed) span, so that writes resumed at the tail extend it in place.
func (f *File) retainTail(start int64, raw []byte) {
	whole := (len(raw) / rawGroup) * rawGroup
	if rem := len(raw) - whole; rem > 0 && f.cursor >= start+int64(whole) {
		f.bufStart = start + int64(whole)
		f.buf = append([]byte(nil), raw[whole:]...)
	} else {
		f.buf = nil
	}
}

// Write implements io.Writer. Data is spliced into the pending group span;
// every completed group is encoded and written through immediately, and a
// trailing partial group is retained until it is completed, flushed or the
// handle is closed. Write returns len(p) unless the medium fails.
func (f *File) Write(p []byte) (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	if !f.mode.Write {
		return 0, fmt.Errorf("base64file: write: %w", ErrNotWritable)
	}
	if len(p) == 0 {
		return 0, nil
	}

	if f.buf == nil {
		if err := f.openSpan(); err != nil {
			return 0, err
		}
	}

	// Splice p into the span at the cursor. New data wins; existing bytes
	// beyond the spliced range are kept.
	pos := f.bufPos()
	spliced := make([]byte, 0, max(pos+len(p), len(f.buf)))
	spliced = append(spliced, f.buf[:pos]...)
	spliced = append(spliced, p...)
	if len(f.buf) > len(spliced) {
		spliced = append(spliced, f.buf[len(spliced):]...)
	}
	pos += len(p)

	// Write through every completed group; keep the partial tail pending.
	whole := (pos / rawGroup) * rawGroup
	if whole > 0 {
		if err := f.tc.writeAt(f.bufStart, spliced[:whole]); err != nil {
			return 0, err
		}
	}
	f.buf = spliced[whole:]
	f.bufStart += int64(whole)
	f.cursor += int64(len(p))
	f.dirty = f.bufPos() > 0
	return len(p), nil
}

// openSpan establishes the group span containing the cursor before a write.
// On readable handles the group's existing bytes are fetched so an
// unaligned write merges with them; a gap between the end of the stream and
// the cursor is filled with zero bytes. Write-only handles write strictly
// sequentially, so their cursor is always at the start of the span.
func (f *File) openSpan() error {
	skew := f.cursor % rawGroup
	start := f.cursor - skew
	if !f.mode.Read {
		if skew != 0 {
			// Cannot recover the group prefix without reading it back.
			return fmt.Errorf("base64file: write at mid-group offset %d: %w", f.cursor, ErrNotReadable)
		}
		f.bufStart = start
		f.buf = []byte{}
		return nil
	}
	sz, err := f.tc.size()
	if err != nil {
		return err
	}
	if f.cursor > sz {
		if err := f.tc.mergeWrite(sz, make([]byte, f.cursor-sz)); err != nil {
			return err
		}
	}
	raw, err := f.tc.readAligned(start, rawGroup)
	if err != nil {
		return err
	}
	f.bufStart = start
	f.buf = append([]byte{}, raw...)
	return nil
}

// Seek implements io.Seeker. Pending data is flushed with temporary padding
// before repositioning, so reads from other positions observe consistent
// content. Seeking to a mid-group offset on a write-only handle is rejected
// unless the target lies within the retained span, since a later write
// could not read the group's prefix back. Seeking beyond the end of the
// stream is allowed: reads there return io.EOF and a write on a readable
// handle fills the gap with zero bytes.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.cursor + offset
	case io.SeekEnd:
		if err := f.Flush(); err != nil {
			return 0, err
		}
		sz, err := f.tc.size()
		if err != nil {
			return 0, err
		}
		target = sz + offset
	default:
		return 0, fmt.Errorf("base64file: seek: invalid whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("base64file: seek to %d: %w", target, ErrNegativeOffset)
	}
	inSpan := f.buf != nil && target >= f.bufStart && target <= f.bufStart+int64(len(f.buf))
	if target%rawGroup != 0 && !f.mode.Read && !inSpan {
		return 0, fmt.Errorf("base64file: seek to %d: %w", target, ErrUnalignedSeek)
	}
	if err := f.Flush(); err != nil {
		return 0, err
	}
	if !inSpan {
		f.buf = nil
	}
	f.cursor = target
	return f.cursor, nil
}

// Tell returns the current byte position.
func (f *File) Tell() int64 {
	return f.cursor
}

// Size returns the decoded length of the stream, flushing pending data
// first.
func (f *File) Size() (int64, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	if err := f.Flush(); err != nil {
		return 0, err
	}
	return f.tc.size()
}

// ReadAt implements io.ReaderAt. It does not move the cursor. Pending data
// is flushed first so the read observes a consistent stream.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	if !f.mode.Read {
		return 0, fmt.Errorf("base64file: readat: %w", ErrNotReadable)
	}
	if off < 0 {
		return 0, fmt.Errorf("base64file: readat offset %d: %w", off, ErrNegativeOffset)
	}
	if f.dirty {
		if err := f.Flush(); err != nil {
			return 0, err
		}
	}
	raw, err := f.tc.readRange(off, len(p))
	if err != nil {
		return 0, err
	}
	n := copy(p, raw)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. It does not move the cursor. Boundary
// groups are merged via the transcoder, which reads the medium back, so the
// medium must be readable when off or off+len(p) is mid-group.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	if !f.mode.Write {
		return 0, fmt.Errorf("base64file: writeat: %w", ErrNotWritable)
	}
	if off < 0 {
		return 0, fmt.Errorf("base64file: writeat offset %d: %w", off, ErrNegativeOffset)
	}
	if err := f.Flush(); err != nil {
		return 0, err
	}
	if err := f.tc.mergeWrite(off, p); err != nil {
		return 0, err
	}
	if err := f.refreshSpan(off, off+int64(len(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// refreshSpan re-reads the retained span after an out-of-band mutation of
// the overlapping range.
func (f *File) refreshSpan(lo, hi int64) error {
	if f.buf == nil || hi <= f.bufStart || lo >= f.bufStart+int64(len(f.buf)) {
		return nil
	}
	raw, err := f.tc.readAligned(f.bufStart, len(f.buf))
	if err != nil {
		return err
	}
	f.buf = raw
	return nil
}

// Truncate changes the size of the decoded stream. Growing fills with zero
// bytes. The cursor is unchanged. The medium must implement Truncater when
// the stream shrinks.
func (f *File) Truncate(size int64) error {
	if err := f.ensureOpen(); err != nil {
		return err
	}
	if !f.mode.Write {
		return fmt.Errorf("base64file: truncate: %w", ErrNotWritable)
	}
	if size < 0 {
		return fmt.Errorf("base64file: truncate to %d: %w", size, ErrNegativeOffset)
	}
	if err := f.Flush(); err != nil {
		return err
	}
	if err := f.tc.truncate(size); err != nil {
		return err
	}
	f.buf = nil
	return nil
}

// Flush writes the pending partial group with temporary padding. The span
// is retained, so writes resumed at the tail re-extend the final group in
// place; the fixed four-character group width makes the overwrite safe. On
// a write-only handle the pending group is assumed to sit at the end of the
// stream, since the medium cannot be read back to merge it.
func (f *File) Flush() error {
	if err := f.ensureOpen(); err != nil {
		return err
	}
	if f.dirty {
		if f.mode.Read {
			if err := f.mergePending(); err != nil {
				return err
			}
		}
		if err := f.tc.writeAt(f.bufStart, f.buf); err != nil {
			return err
		}
		f.dirty = false
	}
	if s, ok := f.tc.m.(Syncer); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("base64file: sync medium: %w", err)
		}
	}
	return nil
}

// Close flushes the pending group with final padding and closes the medium
// if the handle owns it. Close is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	err := f.Flush()
	f.closed = true
	f.buf = nil
	if f.owned {
		if c, ok := f.tc.m.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("base64file: close medium: %w", cerr)
			}
		}
	}
	return err
}

// Mode returns the handle's parsed mode.
func (f *File) Mode() Mode {
	return f.mode
}

var (
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.ReaderAt        = (*File)(nil)
	_ io.WriterAt        = (*File)(nil)
	_ io.Closer          = (*File)(nil)
)
