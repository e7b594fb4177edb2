package repair

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joshuapare/oggfix/internal/format"
	"github.com/joshuapare/oggfix/internal/logger"
)

// Engine repairs the trailing page of a segmented container file: it finds
// the last page, fits its segment table to the bytes present, sets the
// end-of-stream flag, recomputes the checksum, patches those fields in place
// and cuts the file at the end of the page.
//
// A run is a small state machine:
//
//	Searching  -> Validating   candidate-found
//	Searching  -> Failed       not-found | retry-exhausted | io-failure
//	Validating -> Repairing    header-valid
//	Validating -> Searching    structural-retry (once, origin = rejected candidate)
//	Validating -> Failed       retry-exhausted | io-failure
//	Repairing  -> Patching     repaired
//	Repairing  -> Truncating   already-valid
//	Repairing  -> Done         dry-run
//	Patching   -> Truncating   patched
//	Truncating -> Done         truncated
//
// The engine assumes exclusive access to the file for the duration of a run,
// and runs one repair at a time.
type Engine struct {
	writer  *Writer
	patcher *PatchWriter
	config  EngineConfig
}

// EngineConfig contains configuration options for the repair engine.
type EngineConfig struct {
	// DryRun computes the repair without writing anything
	DryRun bool

	// BackupSuffix, when set, copies the file to <path><suffix>.<timestamp>
	// before the first write
	BackupSuffix string

	// WindowSize is the backward scan window (default DefaultWindowSize)
	WindowSize int

	// Logger receives transition and outcome records (default logger.L)
	Logger *slog.Logger
}

// NewEngine creates a new repair engine with the given configuration.
func NewEngine(config EngineConfig) *Engine {
	return &Engine{
		writer:  NewWriter(),
		patcher: NewPatchWriter(),
		config:  config,
	}
}

func (e *Engine) log() *slog.Logger {
	if e.config.Logger != nil {
		return e.config.Logger
	}
	return logger.L
}

// Repair runs the full pipeline on the file at path. The result is returned
// even on failure and shows how far the run got.
func (e *Engine) Repair(path string) (*Result, error) {
	r := e.newRun(path, false)
	defer r.close()

	err := r.drive()
	r.finish()

	log := e.log().With("path", path)
	if err != nil {
		log.Error("repair failed", "error", err, "transitions", len(r.result.Transitions))
		return r.result, err
	}
	log.Info("repair complete",
		"page_offset", r.result.PageOffset,
		"page_size", r.result.PageSize,
		"zeroed_segments", r.result.ZeroedSegments,
		"trimmed", r.result.TrimmedBytes(),
		"patched", r.result.Patched,
		"dry_run", r.result.DryRun,
	)
	return r.result, nil
}

// Inspect locates and parses the trailing page without modifying the file.
// It follows the same search and single re-scan as Repair.
func (e *Engine) Inspect(path string) (*PageInfo, error) {
	r := e.newRun(path, true)
	defer r.close()

	if err := r.drive(); err != nil {
		return nil, err
	}

	p := r.page
	checked := min(p.DeclaredSize(), p.Available())
	info := &PageInfo{
		Path:             path,
		FileSize:         r.size,
		Offset:           r.candidate,
		Retried:          r.retried,
		Version:          p.Version(),
		Flags:            p.Flags(),
		Continued:        p.HasFlag(format.FlagContinued),
		BeginOfStream:    p.HasFlag(format.FlagBeginStream),
		EndOfStream:      p.EndOfStream(),
		GranulePosition:  p.GranulePosition(),
		SerialNumber:     p.SerialNumber(),
		SequenceNumber:   p.SequenceNumber(),
		SegmentCount:     p.SegmentCount(),
		HeaderSize:       p.HeaderSize(),
		DeclaredSize:     p.DeclaredSize(),
		Available:        p.Available(),
		Truncated:        p.Truncated(),
		TrailingBytes:    max(p.Available()-p.DeclaredSize(), 0),
		StoredChecksum:   p.StoredChecksum(),
		ComputedChecksum: p.ComputeChecksum(checked),
	}
	info.ChecksumValid = info.StoredChecksum == info.ComputedChecksum
	return info, nil
}

// run carries the state of one pass over one file.
type run struct {
	e       *Engine
	path    string
	inspect bool

	file      *os.File // read-only handle, open while Searching/Validating
	size      int64
	origin    int64
	candidate int64
	retried   bool
	scanner   *Scanner

	page     *format.Page
	original []byte // header bytes as read, before repair
	pageSize int

	result *Result
	err    error
}

func (e *Engine) newRun(path string, inspect bool) *run {
	return &run{
		e:         e,
		path:      path,
		inspect:   inspect,
		candidate: -1,
		result: &Result{
			Path:       path,
			PageOffset: -1,
			DryRun:     e.config.DryRun,
			StartTime:  time.Now(),
		},
	}
}

// drive steps the state machine until it reaches Done or Failed.
func (r *run) drive() error {
	log := r.e.log()
	state := StateSearching
	for state != StateDone && state != StateFailed {
		next, ev := r.step(state)
		r.result.Transitions = append(r.result.Transitions, Transition{From: state, To: next, Event: ev})
		log.Debug("repair transition",
			"path", r.path, "from", state.String(), "to", next.String(), "event", ev.String())
		state = next
	}
	return r.err
}

func (r *run) step(s State) (State, Event) {
	switch s {
	case StateSearching:
		return r.search()
	case StateValidating:
		return r.validate()
	case StateRepairing:
		return r.repair()
	case StatePatching:
		return r.patch()
	case StateTruncating:
		return r.truncate()
	default:
		r.err = fmt.Errorf("repair: no step for state %s", s)
		return StateFailed, EventIOFailure
	}
}

func (r *run) fail(err error) (State, Event) {
	r.err = err
	var re *RepairError
	if errors.As(err, &re) && re.Kind == KindIO {
		return StateFailed, EventIOFailure
	}
	return StateFailed, EventRetryExhausted
}

func (r *run) search() (State, Event) {
	if r.file == nil {
		f, err := os.Open(r.path)
		if err != nil {
			return r.fail(ioError("open", -1, err))
		}
		stat, err := f.Stat()
		if err != nil {
			f.Close()
			return r.fail(ioError("stat", -1, err))
		}
		r.file = f
		r.size = stat.Size()
		r.origin = r.size
		r.scanner = NewScanner(f, r.e.config.WindowSize)
		r.result.OriginalSize = r.size
		r.result.FinalSize = r.size
	}

	off, found, err := r.scanner.FindLast(r.origin)
	if err != nil {
		return r.fail(ioError("scan", r.origin, err))
	}
	if !found {
		if r.retried {
			return r.fail(&RepairError{
				Kind:    KindUnrecoverableFormat,
				Op:      "scan",
				Offset:  r.origin,
				Message: "no earlier page start after rejected candidate",
				Cause:   r.err,
			})
		}
		r.err = &RepairError{
			Kind:    KindNotFound,
			Op:      "scan",
			Offset:  -1,
			Message: fmt.Sprintf("no capture pattern in %d bytes", r.size),
		}
		return StateFailed, EventNotFound
	}

	r.candidate = off
	return StateValidating, EventCandidateFound
}

func (r *run) validate() (State, Event) {
	raw, err := ReadPage(r.file, r.candidate, r.size)
	if err != nil {
		return r.fail(ioError("read", r.candidate, err))
	}

	page, err := format.ParsePage(raw)
	if err != nil {
		structural := &RepairError{
			Kind:    KindStructural,
			Op:      "validate",
			Offset:  r.candidate,
			Message: "candidate is not a page start",
			Cause:   err,
		}
		if !r.retried {
			r.e.log().Warn("rejected page candidate, re-scanning",
				"path", r.path, "offset", r.candidate, "error", err)
			r.retried = true
			r.result.Retried = true
			r.origin = r.candidate
			// Kept as the cause if the re-scan finds nothing.
			r.err = structural
			return StateSearching, EventStructuralRetry
		}
		return r.fail(&RepairError{
			Kind:    KindUnrecoverableFormat,
			Op:      "validate",
			Offset:  r.candidate,
			Message: "re-scanned candidate is not a page start either",
			Cause:   structural,
		})
	}
	r.err = nil

	r.page = page
	r.original = bytes.Clone(page.Header())
	r.result.PageOffset = r.candidate
	r.result.SegmentCount = page.SegmentCount()

	if r.inspect {
		return StateDone, EventInspected
	}

	// Patching opens its own read-write handle.
	if err := r.closeFile(); err != nil {
		return r.fail(ioError("close", -1, err))
	}
	return StateRepairing, EventHeaderValid
}

func (r *run) repair() (State, Event) {
	p := r.page
	if !p.Truncated() && p.EndOfStream() && p.ChecksumValid(p.DeclaredSize()) {
		r.pageSize = p.DeclaredSize()
		r.result.PageSize = r.pageSize
		r.result.AlreadyValid = true
		r.result.FinalSize = r.candidate + int64(r.pageSize)
		if r.e.config.DryRun {
			return StateDone, EventDryRun
		}
		return StateTruncating, EventAlreadyValid
	}

	size, cutoff := p.FitSegments()
	p.SetFlag(format.FlagEndStream)
	p.SetChecksum(p.ComputeChecksum(size))

	r.pageSize = size
	r.result.PageSize = size
	r.result.ZeroedSegments = p.SegmentCount() - cutoff
	r.result.FinalSize = r.candidate + int64(size)

	if r.e.config.DryRun {
		return StateDone, EventDryRun
	}
	return StatePatching, EventRepaired
}

// patches lists the header fields the repair may have changed.
func (r *run) patches() []Patch {
	hdr := r.page.Header()
	seg := format.PageSegTableOffset
	flag := format.PageFlagsOffset
	crc := format.PageChecksumOffset
	crcEnd := crc + format.PageChecksumSize
	return []Patch{
		{Field: "flags", Offset: flag, Old: r.original[flag : flag+1], New: hdr[flag : flag+1]},
		{Field: "checksum", Offset: crc, Old: r.original[crc:crcEnd], New: hdr[crc:crcEnd]},
		{Field: "segment table", Offset: seg, Old: r.original[seg:], New: hdr[seg:]},
	}
}

func (r *run) patch() (State, Event) {
	if err := r.backup(); err != nil {
		return r.fail(err)
	}

	f, err := os.OpenFile(r.path, os.O_RDWR, 0)
	if err != nil {
		return r.fail(ioError("patch", r.candidate, err))
	}

	werr := r.e.patcher.Write(f, r.candidate, r.patches())
	r.result.Patches = r.e.patcher.Log().Entries()
	if werr != nil {
		f.Close()
		return r.fail(ioError("patch", r.candidate, werr))
	}
	if err := syncData(f); err != nil {
		f.Close()
		return r.fail(ioError("sync", r.candidate, err))
	}
	if err := f.Close(); err != nil {
		return r.fail(ioError("patch", r.candidate, err))
	}

	r.result.Patched = true
	return StateTruncating, EventPatched
}

func (r *run) truncate() (State, Event) {
	target := r.candidate + int64(r.pageSize)
	if target != r.size {
		if err := r.backup(); err != nil {
			return r.fail(err)
		}
	}

	replaced, err := r.e.writer.TruncateAtomic(r.path, target)
	if err != nil {
		return r.fail(ioError("truncate", target, err))
	}
	r.result.Truncated = replaced
	r.result.FinalSize = target
	return StateDone, EventTruncated
}

// backup copies the original once, before the first write of the run.
func (r *run) backup() error {
	if r.e.config.BackupSuffix == "" || r.result.BackupPath != "" {
		return nil
	}
	path, err := r.e.writer.CreateBackup(r.path, r.e.config.BackupSuffix)
	if err != nil {
		return ioError("backup", -1, err)
	}
	r.result.BackupPath = path
	r.e.log().Info("backup created", "path", r.path, "backup", path)
	return nil
}

func (r *run) closeFile() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *run) close() {
	_ = r.closeFile()
}

func (r *run) finish() {
	r.result.EndTime = time.Now()
	r.result.Duration = r.result.EndTime.Sub(r.result.StartTime)
}
