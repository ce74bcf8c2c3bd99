package base64file

import (
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_WriteEncodes(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "aGVsbG8=", m.String())
}

func TestFile_WriteThroughCompleteGroups(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w")
	require.NoError(t, err)

	_, err = f.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	// The complete group is written through immediately; the trailing
	// byte stays pending.
	assert.Equal(t, "AQID", m.String())
	assert.Equal(t, int64(4), f.Tell())

	require.NoError(t, f.Flush())
	assert.Equal(t, "AQIDBA==", m.String())

	// Extending after a flush rewrites the temporary padding in place.
	_, err = f.Write([]byte{5, 6})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "AQIDBAUG", m.String())
}

func TestFile_ReadAll(t *testing.T) {
	m := NewBufferString("AAECAwQ=")
	f, err := New(m, "r")
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, got)
	require.NoError(t, f.Close())
}

func TestFile_ReadInSmallPieces(t *testing.T) {
	m := NewBufferString("AAECAwQ=")
	f, err := New(m, "r")
	require.NoError(t, err)
	var got []byte
	buf := make([]byte, 2)
	for {
		n, err := f.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, got)
}

func TestFile_AttachAtNonZeroOrigin(t *testing.T) {
	// A handle attached mid-way through a larger file treats the medium's
	// current position as character offset 0.
	m := NewBufferString("xyz")
	_, err := m.Seek(0, io.SeekEnd)
	require.NoError(t, err)

	f, err := New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "xyzAQIDBA==", m.String())

	_, err = m.Seek(3, io.SeekStart)
	require.NoError(t, err)
	r, err := New(m, "r")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
}

func TestFile_InterleavedReadWrite(t *testing.T) {
	// Port of the original library's canonical scenario: write, seek back,
	// read one byte, then overwrite from the middle.
	m := NewBuffer(nil)
	f, err := New(m, "w+")
	require.NoError(t, err)

	_, err = f.Write([]byte("01234567890123456789"))
	require.NoError(t, err)
	_, err = f.Seek(1, io.SeekStart)
	require.NoError(t, err)

	one := make([]byte, 1)
	_, err = io.ReadFull(f, one)
	require.NoError(t, err)
	assert.Equal(t, byte('1'), one[0])

	_, err = f.Write([]byte("qwert"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = m.Seek(0, io.SeekStart)
	require.NoError(t, err)
	r, err := New(m, "r")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("01qwert7890123456789"), got)
}

func TestFile_Append(t *testing.T) {
	m := NewBufferString("AAECAwQ=")
	f, err := New(m, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.Tell())

	_, err = f.Write([]byte{5, 6, 7})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "AAECAwQFBgc=", m.String())
}

func TestFile_WithEncoding(t *testing.T) {
	data := []byte{0xfb, 0xef, 0xff}

	std := NewBuffer(nil)
	f, err := New(std, "w")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "++//", std.String())

	url := NewBuffer(nil)
	f, err = New(url, "w", WithEncoding(base64.URLEncoding))
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "--__", url.String())

	_, err = url.Seek(0, io.SeekStart)
	require.NoError(t, err)
	r, err := New(url, "r", WithEncoding(base64.URLEncoding))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFile_ReadAt(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write([]byte{10, 20, 30, 40, 50, 60, 70})
	require.NoError(t, err)

	got := make([]byte, 3)
	n, err := f.ReadAt(got, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{30, 40, 50}, got)
	// The cursor is untouched.
	assert.Equal(t, int64(7), f.Tell())

	n, err = f.ReadAt(got, 5)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{60, 70}, got[:n])
	require.NoError(t, f.Close())
}

func TestFile_WriteAt(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	// Patch spans a group boundary and starts mid-group.
	n, err := f.WriteAt([]byte{0xAA, 0xBB}, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 0xAA, 0xBB, 6, 7, 8}, got)
	require.NoError(t, f.Close())
}

func TestFile_WriteAtPastEndZeroFills(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w+")
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{7}, 5)
	require.NoError(t, err)

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 7}, got)
	require.NoError(t, f.Close())
}

func TestFile_Truncate(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)

	// Shrink to a mid-group length: the final group is re-encoded short.
	require.NoError(t, f.Truncate(5))
	sz, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(5), sz)
	assert.Equal(t, "AQIDBAU=", m.String())

	// Grow back: zero fill.
	require.NoError(t, f.Truncate(7))
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0}, got)
	require.NoError(t, f.Close())
}

func TestFile_SeekWhence(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)

	pos, err := f.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	pos, err = f.Seek(1, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)

	one := make([]byte, 1)
	_, err = io.ReadFull(f, one)
	require.NoError(t, err)
	assert.Equal(t, byte(6), one[0])

	_, err = f.Seek(0, 42)
	assert.Error(t, err)

	_, err = f.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, ErrNegativeOffset)
	require.NoError(t, f.Close())
}

func TestFile_SeekPastEndThenWrite(t *testing.T) {
	m := NewBuffer(nil)
	f, err := New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2})
	require.NoError(t, err)

	pos, err := f.Seek(7, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)

	got := make([]byte, 1)
	n, err := f.Read(got)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = f.Write([]byte{9})
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	all, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0, 0, 0, 0, 0, 9}, all)
	require.NoError(t, f.Close())
}

func TestFile_ModeErrors(t *testing.T) {
	t.Run("read on write-only", func(t *testing.T) {
		f, err := New(NewBuffer(nil), "w")
		require.NoError(t, err)
		_, err = f.Read(make([]byte, 1))
		assert.ErrorIs(t, err, ErrNotReadable)
		_, err = f.ReadAt(make([]byte, 1), 0)
		assert.ErrorIs(t, err, ErrNotReadable)
	})

	t.Run("write on read-only", func(t *testing.T) {
		f, err := New(NewBufferString("QUJD"), "r")
		require.NoError(t, err)
		_, err = f.Write([]byte{1})
		assert.ErrorIs(t, err, ErrNotWritable)
		_, err = f.WriteAt([]byte{1}, 0)
		assert.ErrorIs(t, err, ErrNotWritable)
		assert.ErrorIs(t, f.Truncate(0), ErrNotWritable)
	})

	t.Run("unaligned seek on write-only", func(t *testing.T) {
		f, err := New(NewBuffer(nil), "w")
		require.NoError(t, err)
		_, err = f.Seek(1, io.SeekStart)
		assert.ErrorIs(t, err, ErrUnalignedSeek)
		// Group-aligned seeks are fine without read access.
		_, err = f.Seek(3, io.SeekStart)
		assert.NoError(t, err)
	})
}

func TestFile_ClosedErrors(t *testing.T) {
	f, err := New(NewBuffer(nil), "w+")
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "close is idempotent")

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.Write([]byte{1})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, f.Flush(), ErrClosed)
	_, err = f.Size()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, f.Truncate(0), ErrClosed)
}

func TestFile_CloseDoesNotCloseCallerMedium(t *testing.T) {
	m := &closableBuffer{}
	f, err := New(m, "w")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.False(t, m.closed, "caller-supplied medium must stay open")

	m2 := &closableBuffer{}
	f, err = New(m2, "w", TakeOwnership())
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, m2.closed, "owned medium must be closed")
}

type closableBuffer struct {
	Buffer
	closed bool
}

func (c *closableBuffer) Close() error {
	c.closed = true
	return nil
}

func TestNew_Errors(t *testing.T) {
	_, err := New(NewBuffer(nil), "rw")
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = New(NewBuffer(nil), "w", WithEncoding(base64.RawStdEncoding))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestFile_CorruptInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"padding before final group", "QQ==QUJD"},
		{"invalid alphabet character", "QUJ!"},
		{"newline inside stream", "QUJ\n"},
		{"truncated group", "QUJDQ"},
		{"nonzero trailing bits", "QUJ="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(NewBufferString(tt.content), "r")
			require.NoError(t, err)
			_, err = io.ReadAll(f)
			require.Error(t, err)
			var ce *CorruptError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestFile_CorruptInputLeavesStateAlone(t *testing.T) {
	f, err := New(NewBufferString("QQ==QUJD"), "r")
	require.NoError(t, err)
	_, err = f.Read(make([]byte, 8))
	require.Error(t, err)
	assert.Equal(t, int64(0), f.Tell(), "failed read must not advance the cursor")
}

func TestFile_SizeOnCorruptLength(t *testing.T) {
	f, err := New(NewBufferString("QUJDA"), "r")
	require.NoError(t, err)
	_, err = f.Size()
	var ce *CorruptError
	assert.ErrorAs(t, err, &ce)
}

func TestFile_EmptyOperations(t *testing.T) {
	f, err := New(NewBuffer(nil), "w+")
	require.NoError(t, err)

	n, err := f.Write(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.Read(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	sz, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(0), sz)
	require.NoError(t, f.Close())
}
