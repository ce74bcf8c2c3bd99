package base64file

import (
	"fmt"
	"os"
)

// Mode is the parsed capability set of a mode string. Rather than branching
// on the string at every call, the allowed operations are resolved once at
// construction and checked as flags.
type Mode struct {
	// Read permits Read, ReadAt and mid-group seeks.
	Read bool

	// Write permits Write, WriteAt, Truncate and Flush of pending data.
	Write bool

	// Append positions the handle at the end of the stream at open.
	Append bool

	// Create requests creation of the underlying storage if absent.
	// Acted on by the opener, not by the core.
	Create bool

	// Exclusive requests that creation fail if the storage already exists.
	Exclusive bool

	// Truncate requests that existing storage be emptied at open.
	// Acted on by the opener, not by the core.
	Truncate bool

	primary byte
	plus    bool
}

// ParseMode parses a mode string: exactly one of "r" (read), "w"
// (write-truncate), "a" (append) or "x" (write-exclusive-create), an
// optional "+" for combined read/write, and an optional "b" which is
// accepted and ignored (binary is the only mode this package operates in).
func ParseMode(s string) (Mode, error) {
	var m Mode
	var seenB bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 'r', 'w', 'a', 'x':
			if m.primary != 0 {
				return Mode{}, fmt.Errorf("base64file: %w %q", ErrInvalidMode, s)
			}
			m.primary = c
		case '+':
			if m.plus {
				return Mode{}, fmt.Errorf("base64file: %w %q", ErrInvalidMode, s)
			}
			m.plus = true
		case 'b':
			if seenB {
				return Mode{}, fmt.Errorf("base64file: %w %q", ErrInvalidMode, s)
			}
			seenB = true
		default:
			return Mode{}, fmt.Errorf("base64file: %w %q", ErrInvalidMode, s)
		}
	}
	switch m.primary {
	case 'r':
		m.Read = true
	case 'w':
		m.Write = true
		m.Create = true
		m.Truncate = true
	case 'a':
		m.Write = true
		m.Create = true
		m.Append = true
	case 'x':
		m.Write = true
		m.Create = true
		m.Exclusive = true
	default:
		return Mode{}, fmt.Errorf("base64file: %w %q", ErrInvalidMode, s)
	}
	if m.plus {
		m.Read = true
		m.Write = true
	}
	return m, nil
}

// OpenFlags returns the os.O_* flags an opener should use for the
// underlying medium. Append handles map to O_RDWR without O_APPEND:
// extending the final short group requires seeking one group back and
// overwriting its padding, which O_APPEND forbids, and positioning at the
// end requires decoding that group.
func (m Mode) OpenFlags() int {
	var flags int
	switch {
	case m.Append:
		flags = os.O_RDWR | os.O_CREATE
	case m.Read && m.Write:
		flags = os.O_RDWR
	case m.Write:
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}
	if m.Create && !m.Append {
		flags |= os.O_CREATE
	}
	if m.Truncate {
		flags |= os.O_TRUNC
	}
	if m.Exclusive {
		flags |= os.O_EXCL
	}
	return flags
}

// String returns the canonical mode string.
func (m Mode) String() string {
	if m.primary == 0 {
		return ""
	}
	s := string(m.primary)
	if m.plus {
		s += "+"
	}
	return s
}
