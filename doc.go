// Package base64file presents binary data as a base64-encoded text stream
// while exposing a random-access, seekable, readable and writable handle.
// Callers treat a File as if it were a plain binary file: they read and
// write arbitrary byte ranges and seek to arbitrary byte offsets, while the
// underlying storage holds base64 text.
//
// Base64 encodes 3 raw bytes into 4 encoded characters, so any byte-level
// seek or partial write can land in the middle of a group. The package
// buffers partial groups, re-decodes surrounding groups to merge them with
// new data, and re-encodes before writing back. The final short group of a
// stream is written with padding that is rewritten in place whenever the
// stream is extended, so pad characters never end up embedded mid-stream.
//
// A File operates over any Medium, a character-addressable storage object.
// The Buffer type provides an in-memory Medium; the billy subpackage opens
// handles over go-billy filesystems, and the minio subpackage backs a
// Medium with an object store.
//
//	m := base64file.NewBuffer(nil)
//	f, _ := base64file.New(m, "w+")
//	f.Write([]byte{0xde, 0xad, 0xbe, 0xef})
//	f.Close()
//	// m.String() == "3q2+7w=="
package base64file
