// Package minio backs a base64file Medium with an object store. The object
// body is downloaded into memory when the medium is opened and uploaded
// back on Close or Sync, so the handle's character-level seeks and
// overwrites operate on the in-memory copy.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/minio/minio-go/v7"

	"github.com/averykhoo/base64file"
)

// Medium is an object-backed character medium. It buffers the object body
// in memory; mutations are not visible in the store until Close or Sync.
type Medium struct {
	client *minio.Client
	bucket string
	key    string

	data   []byte
	off    int64
	dirty  bool
	closed bool
}

// OpenMedium downloads the object and wraps it as a Medium. A missing
// object yields fs.ErrNotExist unless create is set, in which case the
// medium starts empty.
func OpenMedium(ctx context.Context, client *minio.Client, bucket, key string, create bool) (*Medium, error) {
	m := &Medium{client: client, bucket: bucket, key: key}
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(key, err)
	}
	defer func() {
		_ = obj.Close()
	}()
	data, err := io.ReadAll(obj)
	switch {
	case err == nil:
		m.data = data
	case isNotFound(err) && create:
		// Start empty; the first upload creates the object.
	default:
		return nil, translateError(key, err)
	}
	return m, nil
}

// Open opens a handle on the object according to the mode string. The
// handle owns the medium: closing the handle uploads pending changes.
// Missing objects are created for "w", "a" and "x" modes; "x" on an
// existing object fails with fs.ErrExist.
func Open(ctx context.Context, client *minio.Client, bucket, key, mode string, opts ...base64file.Option) (*base64file.File, error) {
	md, err := base64file.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if md.Exclusive {
		if _, err := client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err == nil {
			return nil, &fs.PathError{Op: "open", Path: key, Err: fs.ErrExist}
		} else if !isNotFound(err) {
			return nil, fmt.Errorf("minio: stat %q: %w", key, err)
		}
	}
	m, err := OpenMedium(ctx, client, bucket, key, md.Create)
	if err != nil {
		return nil, err
	}
	if md.Truncate {
		m.data = nil
		m.dirty = true
	}
	opts = append(opts, base64file.TakeOwnership())
	return base64file.New(m, mode, opts...)
}

// Read implements io.Reader.
func (m *Medium) Read(p []byte) (int, error) {
	if m.closed {
		return 0, &fs.PathError{Op: "read", Path: m.key, Err: fs.ErrClosed}
	}
	if m.off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.off:])
	m.off += int64(n)
	return n, nil
}

// Write implements io.Writer. Writing past the end fills the gap with zero
// bytes, matching file semantics.
func (m *Medium) Write(p []byte) (int, error) {
	if m.closed {
		return 0, &fs.PathError{Op: "write", Path: m.key, Err: fs.ErrClosed}
	}
	if grow := m.off + int64(len(p)) - int64(len(m.data)); grow > 0 {
		m.data = append(m.data, make([]byte, grow)...)
	}
	n := copy(m.data[m.off:], p)
	m.off += int64(n)
	m.dirty = true
	return n, nil
}

// Seek implements io.Seeker.
func (m *Medium) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, &fs.PathError{Op: "seek", Path: m.key, Err: fs.ErrClosed}
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = m.off + offset
	case io.SeekEnd:
		pos = int64(len(m.data)) + offset
	default:
		return 0, &fs.PathError{Op: "seek", Path: m.key, Err: fs.ErrInvalid}
	}
	if pos < 0 {
		return 0, &fs.PathError{Op: "seek", Path: m.key, Err: fs.ErrInvalid}
	}
	m.off = pos
	return pos, nil
}

// Truncate changes the size of the buffered body.
func (m *Medium) Truncate(size int64) error {
	if m.closed {
		return &fs.PathError{Op: "truncate", Path: m.key, Err: fs.ErrClosed}
	}
	switch {
	case size < 0:
		return &fs.PathError{Op: "truncate", Path: m.key, Err: fs.ErrInvalid}
	case size <= int64(len(m.data)):
		m.data = m.data[:size]
	default:
		m.data = append(m.data, make([]byte, size-int64(len(m.data)))...)
	}
	m.dirty = true
	return nil
}

// Sync uploads the buffered body if it has been modified. It can be called
// repeatedly.
func (m *Medium) Sync() error {
	if m.closed {
		return &fs.PathError{Op: "sync", Path: m.key, Err: fs.ErrClosed}
	}
	if !m.dirty {
		return nil
	}
	return m.upload(context.Background())
}

// Close uploads pending changes and marks the medium closed. Idempotent.
func (m *Medium) Close() error {
	if m.closed {
		return nil
	}
	var err error
	if m.dirty {
		err = m.upload(context.Background())
	}
	m.closed = true
	return err
}

func (m *Medium) upload(ctx context.Context) error {
	_, err := m.client.PutObject(
		ctx,
		m.bucket,
		m.key,
		bytes.NewReader(m.data),
		int64(len(m.data)),
		minio.PutObjectOptions{ContentType: "text/plain"},
	)
	if err != nil {
		return fmt.Errorf("minio: upload %q: %w", m.key, err)
	}
	m.dirty = false
	return nil
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func translateError(key string, err error) error {
	if isNotFound(err) {
		return &fs.PathError{Op: "open", Path: key, Err: fs.ErrNotExist}
	}
	return fmt.Errorf("minio: open %q: %w", key, err)
}

var (
	_ base64file.Medium    = (*Medium)(nil)
	_ base64file.Truncater = (*Medium)(nil)
	_ base64file.Syncer    = (*Medium)(nil)
	_ io.Closer            = (*Medium)(nil)
)
