package billy

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averykhoo/base64file"
	"github.com/averykhoo/base64file/b64test"
)

func TestOpen_Conformance(t *testing.T) {
	b64test.TestSuite(t, func(t *testing.T) base64file.Medium {
		fsys := NewInMemoryFS()
		file, err := fsys.OpenFile("data.b64", os.O_RDWR|os.O_CREATE, 0o644)
		require.NoError(t, err)
		t.Cleanup(func() { _ = file.Close() })
		return file
	})
}

func TestOpen_ReadMissing(t *testing.T) {
	_, err := Open(NewInMemoryFS(), "missing.b64", "r")
	assert.Error(t, err)
}

func TestOpen_InvalidMode(t *testing.T) {
	_, err := Open(NewInMemoryFS(), "data.b64", "rw")
	assert.ErrorIs(t, err, base64file.ErrInvalidMode)
}

func TestOpen_ExclusiveExisting(t *testing.T) {
	fsys := NewInMemoryFS()
	f, err := Open(fsys, "data.b64", "w")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Open(fsys, "data.b64", "x")
	assert.Error(t, err)
}

func TestOpen_WriteTruncates(t *testing.T) {
	fsys := NewInMemoryFS()
	f, err := Open(fsys, "data.b64", "w")
	require.NoError(t, err)
	_, err = f.Write([]byte("old content old content"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = Open(fsys, "data.b64", "w")
	require.NoError(t, err)
	_, err = f.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(fsys, "data.b64", "r")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	require.NoError(t, r.Close())
}

func TestOpen_AppendPositionsAtEnd(t *testing.T) {
	fsys := NewInMemoryFS()
	f, err := Open(fsys, "data.b64", "w")
	require.NoError(t, err)
	_, err = f.Write([]byte{0, 1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = Open(fsys, "data.b64", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.Tell())
	_, err = f.Write([]byte{5, 6, 7})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(fsys, "data.b64", "r")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, got)
	require.NoError(t, r.Close())
}

func TestOpenOS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.b64")

	f, err := OpenOS(path, "w")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// The medium is plain text on disk.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", string(raw))

	r, err := OpenOS(path, "r")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	require.NoError(t, r.Close())
}
