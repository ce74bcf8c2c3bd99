// Package b64test provides a conformance test suite for validating Medium
// implementations against the base64file handle contracts.
//
// The suite exercises a Medium through the full handle surface: sequential
// and partitioned writes, interior overwrites that start and end mid-group,
// short reads at end of stream, flush and close discipline, and
// seek-then-write consistency. Medium provider packages import it and run:
//
//	func TestMyMedium(t *testing.T) {
//	    b64test.TestSuite(t, func(t *testing.T) base64file.Medium {
//	        return myprovider.New()
//	    })
//	}
package b64test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averykhoo/base64file"
)

// TestSuite runs all conformance tests against media produced by newMedium.
// Each invocation must return a fresh, empty medium positioned at offset 0.
func TestSuite(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	t.Run("RoundTripPartitions", func(t *testing.T) { testRoundTripPartitions(t, newMedium) })
	t.Run("InteriorOverwrite", func(t *testing.T) { testInteriorOverwrite(t, newMedium) })
	t.Run("OverwriteScenario", func(t *testing.T) { testOverwriteScenario(t, newMedium) })
	t.Run("ShortReadAtEnd", func(t *testing.T) { testShortReadAtEnd(t, newMedium) })
	t.Run("SeekWriteConsistency", func(t *testing.T) { testSeekWriteConsistency(t, newMedium) })
	t.Run("IdempotentClose", func(t *testing.T) { testIdempotentClose(t, newMedium) })
	t.Run("FlushThenExtend", func(t *testing.T) { testFlushThenExtend(t, newMedium) })
}

// reopen attaches a fresh read handle at the medium's start.
func reopen(t *testing.T, m base64file.Medium) *base64file.File {
	t.Helper()
	_, err := m.Seek(0, io.SeekStart)
	require.NoError(t, err)
	f, err := base64file.New(m, "r")
	require.NoError(t, err)
	return f
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func testRoundTripPartitions(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	data := payload(20)
	for chunk := 1; chunk <= 7; chunk++ {
		m := newMedium(t)
		f, err := base64file.New(m, "w+")
		require.NoError(t, err)
		for off := 0; off < len(data); off += chunk {
			end := off + chunk
			if end > len(data) {
				end = len(data)
			}
			n, err := f.Write(data[off:end])
			require.NoError(t, err)
			require.Equal(t, end-off, n)
		}
		require.NoError(t, f.Close())

		r := reopen(t, m)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, data, got, "chunk size %d", chunk)
		require.NoError(t, r.Close())
	}
}

func testInteriorOverwrite(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	data := payload(20)
	patch := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	// Offsets chosen so the patch starts and ends both on and off group
	// boundaries.
	for _, off := range []int{0, 1, 2, 3, 4, 6, 11} {
		m := newMedium(t)
		f, err := base64file.New(m, "w+")
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)

		_, err = f.Seek(int64(off), io.SeekStart)
		require.NoError(t, err)
		_, err = f.Write(patch)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		want := append([]byte(nil), data...)
		copy(want[off:], patch)

		r := reopen(t, m)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, want, got, "patch at offset %d", off)
		require.NoError(t, r.Close())
	}
}

func testOverwriteScenario(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	m := newMedium(t)
	f, err := base64file.New(m, "w+")
	require.NoError(t, err)

	_, err = f.Write([]byte{0, 1, 2, 3, 4})
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = f.Write([]byte{10})
	require.NoError(t, err)

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	two := make([]byte, 2)
	_, err = io.ReadFull(f, two)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 1}, two)

	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4}, rest)
	require.NoError(t, f.Close())
}

func testShortReadAtEnd(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	m := newMedium(t)
	f, err := base64file.New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write(payload(5))
	require.NoError(t, err)
	_, err = f.Seek(3, io.SeekStart)
	require.NoError(t, err)

	big := make([]byte, 64)
	n, err := f.Read(big)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, payload(5)[3:], big[:n])

	n, err = f.Read(big)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, f.Close())
}

func testSeekWriteConsistency(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	m := newMedium(t)
	f, err := base64file.New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write(payload(10))
	require.NoError(t, err)

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x42})
	require.NoError(t, err)

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	one := make([]byte, 1)
	_, err = io.ReadFull(f, one)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), one[0])

	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, payload(10)[1:], rest)
	require.NoError(t, f.Close())
}

func testIdempotentClose(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	m := newMedium(t)
	f, err := base64file.New(m, "w+")
	require.NoError(t, err)
	_, err = f.Write(payload(4))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	r := reopen(t, m)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload(4), got, "double close must not duplicate the final group")
	require.NoError(t, r.Close())
}

func testFlushThenExtend(t *testing.T, newMedium func(t *testing.T) base64file.Medium) {
	m := newMedium(t)
	f, err := base64file.New(m, "w+")
	require.NoError(t, err)

	// Leave a short group, flush it with temporary padding, then extend.
	_, err = f.Write(payload(4))
	require.NoError(t, err)
	require.NoError(t, f.Flush())
	_, err = f.Write(payload(9)[4:])
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r := reopen(t, m)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload(9), got, "temporary padding must be rewritten, not embedded")
	require.NoError(t, r.Close())
}
