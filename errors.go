package base64file

import (
	"errors"
	"fmt"
)

// Standard errors returned by this package. Callers should match them with
// errors.Is; they are always returned wrapped with operation context.
var (
	// ErrClosed indicates an operation on a closed File.
	ErrClosed = errors.New("file already closed")

	// ErrNotReadable indicates a read on a handle whose mode does not
	// permit reading.
	ErrNotReadable = errors.New("file not open for reading")

	// ErrNotWritable indicates a write on a handle whose mode does not
	// permit writing.
	ErrNotWritable = errors.New("file not open for writing")

	// ErrInvalidMode indicates a mode string that is not a combination of
	// "r", "w", "a" or "x" with optional "+" and "b".
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNegativeOffset indicates a seek or positioned operation that
	// resolved to a negative byte offset.
	ErrNegativeOffset = errors.New("negative offset")

	// ErrUnalignedSeek indicates a seek to a mid-group offset on a handle
	// that cannot read the surrounding group back from the medium.
	ErrUnalignedSeek = errors.New("seek to mid-group offset requires read access")

	// ErrInvalidEncoding indicates an encoding passed to WithEncoding that
	// does not pad short groups. Unpadded encodings cannot represent the
	// rewritable final group.
	ErrInvalidEncoding = errors.New("encoding must pad short groups")

	// ErrTruncateUnsupported indicates a Truncate on a medium that does
	// not implement Truncate(int64) error.
	ErrTruncateUnsupported = errors.New("medium does not support truncation")
)

// CorruptError reports that the underlying medium does not hold valid
// base64 content: an invalid alphabet character, padding before the final
// group, or a character length that is not a whole number of groups.
type CorruptError struct {
	// CharOffset is the character offset, relative to the start of the
	// encoded stream, of the group in which the corruption was detected.
	CharOffset int64

	// Err is the underlying decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("base64file: corrupt encoding at char offset %d: %v", e.CharOffset, e.Err)
	}
	return fmt.Sprintf("base64file: corrupt encoding at char offset %d", e.CharOffset)
}

// Unwrap returns the underlying decode error.
func (e *CorruptError) Unwrap() error {
	return e.Err
}
