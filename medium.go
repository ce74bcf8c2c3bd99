package base64file

import "io"

// Medium is the character-addressable storage the encoded text is persisted
// to. It may be a plain file, an in-memory Buffer, or another layered I/O
// object. Offsets passed to Seek address character positions in the encoded
// stream, which for the base64 alphabet coincide with byte positions.
//
// Read may return fewer characters than requested only at end of stream.
// The core never assumes anything about how a Medium is produced.
type Medium interface {
	io.Reader
	io.Writer
	io.Seeker
}

// Truncater is the optional capability a Medium needs for File.Truncate:
// shortening the encoded stream to a character offset.
type Truncater interface {
	Truncate(size int64) error
}

// Syncer is the optional capability of flushing a Medium's own buffers to
// stable storage. File.Flush invokes it when present.
type Syncer interface {
	Sync() error
}
