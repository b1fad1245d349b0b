package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ArchiveError reports a failure of the archive builder itself. Unlike
// per-item pipeline errors it is batch-fatal: no archive is produced.
type ArchiveError struct {
	Op  string
	Err error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: %v", e.Op, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// Builder assembles named entries into an in-memory ZIP archive. Entries
// are laid out flat at the archive root. A Builder is single-use: after
// Finalize no further entries may be added.
type Builder struct {
	buf       bytes.Buffer
	zw        *zip.Writer
	entries   int
	finalized bool
}

// NewBuilder returns an empty archive builder.
func NewBuilder() *Builder {
	b := &Builder{}
	b.zw = zip.NewWriter(&b.buf)
	return b
}

// Add appends one named entry with the given bytes. Entries are never
// partially written: on error the archive must be considered unusable.
func (b *Builder) Add(name string, data []byte) error {
	if b.finalized {
		return &ArchiveError{Op: "add", Err: fmt.Errorf("builder already finalized")}
	}

	w, err := b.zw.Create(name)
	if err != nil {
		return &ArchiveError{Op: "add", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &ArchiveError{Op: "add", Err: err}
	}
	b.entries++
	return nil
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int {
	return b.entries
}

// Finalize closes the archive and returns the complete ZIP bytes.
func (b *Builder) Finalize() ([]byte, error) {
	if b.finalized {
		return nil, &ArchiveError{Op: "finalize", Err: fmt.Errorf("builder already finalized")}
	}
	b.finalized = true

	if err := b.zw.Close(); err != nil {
		return nil, &ArchiveError{Op: "finalize", Err: err}
	}
	return b.buf.Bytes(), nil
}
