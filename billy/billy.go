// Package billy opens base64file handles over go-billy filesystems. It is
// the glue between mode strings and the underlying storage: it interprets
// the mode's open flags, opens or creates the file, and hands the handle
// ownership of it. memfs provides an in-memory filesystem, osfs the native
// one.
package billy

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/averykhoo/base64file"
)

// Open opens the named file on fsys according to the mode string and wraps
// it in a base64file.File that owns it. Closing the handle closes the file.
func Open(fsys billy.Filesystem, name, mode string, opts ...base64file.Option) (*base64file.File, error) {
	md, err := base64file.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	file, err := fsys.OpenFile(name, md.OpenFlags(), 0o644)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", name, err)
	}
	opts = append(opts, base64file.TakeOwnership())
	h, err := base64file.New(file, mode, opts...)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return h, nil
}

// OpenOS opens the file at path on the native filesystem.
func OpenOS(path, mode string, opts ...base64file.Option) (*base64file.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("billy: resolve %q: %w", path, err)
	}
	return Open(osfs.New(filepath.Dir(abs)), filepath.Base(abs), mode, opts...)
}

// NewInMemoryFS creates a fresh in-memory filesystem to open handles on.
func NewInMemoryFS() billy.Filesystem {
	return memfs.New()
}
