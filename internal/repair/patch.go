package repair

import (
	"fmt"
	"io"
)

// Patch is one header field to be rewritten in place.
type Patch struct {
	Field  string // Header field name
	Offset int    // Offset relative to the page start
	Old    []byte // Current bytes on disk
	New    []byte // Replacement bytes, same length as Old
}

// PatchWriter rewrites header fields of a page in place. Only the bytes of
// the given patches are touched.
type PatchWriter struct {
	log *PatchLog
}

// NewPatchWriter creates a patch writer with an empty log.
func NewPatchWriter() *PatchWriter {
	return &PatchWriter{log: NewPatchLog()}
}

// Log returns the writer's patch log.
func (pw *PatchWriter) Log() *PatchLog {
	return pw.log
}

// Write applies patches to w at base+Offset, in order. When a write fails,
// fields already written are restored from the log before the error is
// returned; if that also fails, both errors are reported.
func (pw *PatchWriter) Write(w io.WriterAt, base int64, patches []Patch) error {
	pw.log.Clear()
	for _, p := range patches {
		if len(p.New) == 0 {
			continue
		}
		if len(p.Old) != len(p.New) {
			return fmt.Errorf("patch %s: old and new lengths differ (%d != %d)", p.Field, len(p.Old), len(p.New))
		}
		off := base + int64(p.Offset)
		pw.log.AddEntry(p.Field, off, p.Old, p.New)
		if _, err := w.WriteAt(p.New, off); err != nil {
			werr := fmt.Errorf("writing %s at 0x%X: %w", p.Field, off, err)
			if _, rerr := pw.log.Rollback(w); rerr != nil {
				return fmt.Errorf("%w (rollback: %w)", werr, rerr)
			}
			return werr
		}
		if err := pw.log.MarkApplied(); err != nil {
			return err
		}
	}
	return nil
}
