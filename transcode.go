package base64file

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Group geometry: 3 raw bytes encode to 4 characters. Only whole groups can
// be encoded or decoded independently, so every character-level operation on
// the medium starts and ends on a group boundary.
const (
	rawGroup = 3
	encGroup = 4
)

var errPartialGroup = errors.New("encoded length is not a whole number of groups")

// transcoder converts byte-range operations in decoded space into
// group-aligned character-range operations on the medium. origin is the
// medium's character position at attach time; character offset 0 of the
// encoded stream.
type transcoder struct {
	m      Medium
	enc    *base64.Encoding
	origin int64
}

// charStart returns the character offset of the group containing the byte
// offset off.
func charStart(off int64) int64 {
	return encGroup * (off / rawGroup)
}

func (tc *transcoder) seekChar(off int64) error {
	if _, err := tc.m.Seek(tc.origin+off, io.SeekStart); err != nil {
		return fmt.Errorf("base64file: seek medium to char %d: %w", off, err)
	}
	return nil
}

// decode strictly decodes whole groups read starting at character offset
// charOff. Invalid characters, padding before the final group, and a length
// that is not a multiple of the group width are corruption.
func (tc *transcoder) decode(charOff int64, chars []byte) ([]byte, error) {
	if len(chars)%encGroup != 0 {
		return nil, &CorruptError{CharOffset: charOff + int64(len(chars)-len(chars)%encGroup), Err: errPartialGroup}
	}
	// encoding/base64 silently skips \r and \n, which would misalign
	// groups; reject them outright.
	if bytes.ContainsAny(chars, "\r\n") {
		return nil, &CorruptError{CharOffset: charOff, Err: base64.CorruptInputError(bytes.IndexAny(chars, "\r\n"))}
	}
	out := make([]byte, tc.enc.DecodedLen(len(chars)))
	n, err := tc.enc.Strict().Decode(out, chars)
	if err != nil {
		return nil, &CorruptError{CharOffset: charOff, Err: err}
	}
	return out[:n], nil
}

// readAligned reads and decodes whole groups starting at the group-aligned
// byte offset start, covering at least n decoded bytes. It issues a single
// ranged read; at end of stream it returns the bytes that exist, which may
// be fewer than n and may include a short final group.
func (tc *transcoder) readAligned(start int64, n int) ([]byte, error) {
	groups := (int64(n) + rawGroup - 1) / rawGroup
	if groups == 0 {
		return nil, nil
	}
	charOff := charStart(start)
	if err := tc.seekChar(charOff); err != nil {
		return nil, err
	}
	chars := make([]byte, groups*encGroup)
	got, err := io.ReadFull(tc.m, chars)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("base64file: read medium at char %d: %w", charOff, err)
	}
	return tc.decode(charOff, chars[:got])
}

// readRange decodes exactly the byte range [off, off+n), or as much of it
// as exists. It never fabricates bytes past the end of the stream.
func (tc *transcoder) readRange(off int64, n int) ([]byte, error) {
	skew := int(off % rawGroup)
	raw, err := tc.readAligned(off-int64(skew), skew+n)
	if err != nil {
		return nil, err
	}
	if skew >= len(raw) {
		return nil, nil
	}
	if end := skew + n; end < len(raw) {
		return raw[skew:end], nil
	}
	return raw[skew:], nil
}

// writeAt encodes data and writes the resulting characters at the position
// of the group containing the group-aligned byte offset off. A tail shorter
// than a full group is encoded with padding; it must only ever be written
// at the end of the stream.
func (tc *transcoder) writeAt(off int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	chars := make([]byte, tc.enc.EncodedLen(len(data)))
	tc.enc.Encode(chars, data)
	charOff := charStart(off)
	if err := tc.seekChar(charOff); err != nil {
		return err
	}
	if _, err := tc.m.Write(chars); err != nil {
		return fmt.Errorf("base64file: write medium at char %d: %w", charOff, err)
	}
	return nil
}

// mergeWrite splices data into the stream at an arbitrary byte offset.
// Boundary groups are decoded, merged with the new data (new data wins
// where ranges overlap), and re-encoded as one ranged write. A gap between
// the current end of the stream and off is filled with zero bytes.
func (tc *transcoder) mergeWrite(off int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	sz, err := tc.size()
	if err != nil {
		return err
	}
	if off > sz {
		data = append(make([]byte, off-sz), data...)
		off = sz
	}

	head := int(off % rawGroup)
	start := off - int64(head)
	var prefix []byte
	if head > 0 {
		if prefix, err = tc.readRange(start, head); err != nil {
			return err
		}
	}

	end := off + int64(len(data))
	tailLen := int((rawGroup - end%rawGroup) % rawGroup)
	if end+int64(tailLen) > sz {
		tailLen = int(sz - end)
	}
	var tail []byte
	if tailLen > 0 {
		if tail, err = tc.readRange(end, tailLen); err != nil {
			return err
		}
	}

	merged := make([]byte, 0, len(prefix)+len(data)+len(tail))
	merged = append(merged, prefix...)
	merged = append(merged, data...)
	merged = append(merged, tail...)
	return tc.writeAt(start, merged)
}

// size returns the decoded length of the stream. The final group is decoded
// to count its bytes, since its padding determines how short it is.
func (tc *transcoder) size() (int64, error) {
	end, err := tc.m.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("base64file: seek medium to end: %w", err)
	}
	charLen := end - tc.origin
	if charLen <= 0 {
		return 0, nil
	}
	if charLen%encGroup != 0 {
		return 0, &CorruptError{CharOffset: charLen - charLen%encGroup, Err: errPartialGroup}
	}
	groups := charLen / encGroup
	last, err := tc.readAligned(rawGroup*(groups-1), rawGroup)
	if err != nil {
		return 0, err
	}
	return rawGroup*(groups-1) + int64(len(last)), nil
}

// truncate shortens (or zero-extends) the stream to n decoded bytes. The
// medium is cut at the enclosing group boundary and the final short group,
// if any, is re-encoded with padding.
func (tc *transcoder) truncate(n int64) error {
	sz, err := tc.size()
	if err != nil {
		return err
	}
	switch {
	case n == sz:
		return nil
	case n > sz:
		return tc.mergeWrite(sz, make([]byte, n-sz))
	}
	tr, ok := tc.m.(Truncater)
	if !ok {
		return fmt.Errorf("base64file: truncate: %w", ErrTruncateUnsupported)
	}
	rem := int(n % rawGroup)
	var keep []byte
	if rem > 0 {
		if keep, err = tc.readRange(n-int64(rem), rem); err != nil {
			return err
		}
	}
	if err := tr.Truncate(tc.origin + charStart(n)); err != nil {
		return fmt.Errorf("base64file: truncate medium: %w", err)
	}
	if rem > 0 {
		return tc.writeAt(n-int64(rem), keep)
	}
	return nil
}
