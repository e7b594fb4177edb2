package repair

import "time"

const unknownString = "UNKNOWN"

// State is a step of the repair pipeline.
type State int

const (
	StateSearching State = iota
	StateValidating
	StateRepairing
	StatePatching
	StateTruncating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "SEARCHING"
	case StateValidating:
		return "VALIDATING"
	case StateRepairing:
		return "REPAIRING"
	case StatePatching:
		return "PATCHING"
	case StateTruncating:
		return "TRUNCATING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return unknownString
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Event names the reason for a state change.
type Event int

const (
	EventCandidateFound  Event = iota // Searching -> Validating
	EventNotFound                     // Searching -> Failed
	EventHeaderValid                  // Validating -> Repairing
	EventStructuralRetry              // Validating -> Searching, origin moved to the rejected candidate
	EventRetryExhausted               // Searching|Validating -> Failed after the re-scan
	EventInspected                    // Validating -> Done (read-only run)
	EventRepaired                     // Repairing -> Patching
	EventAlreadyValid                 // Repairing -> Truncating, nothing to patch
	EventDryRun                       // Repairing -> Done, nothing written
	EventPatched                      // Patching -> Truncating
	EventTruncated                    // Truncating -> Done
	EventIOFailure                    // any -> Failed
)

func (e Event) String() string {
	switch e {
	case EventCandidateFound:
		return "candidate-found"
	case EventNotFound:
		return "not-found"
	case EventHeaderValid:
		return "header-valid"
	case EventStructuralRetry:
		return "structural-retry"
	case EventRetryExhausted:
		return "retry-exhausted"
	case EventInspected:
		return "inspected"
	case EventRepaired:
		return "repaired"
	case EventAlreadyValid:
		return "already-valid"
	case EventDryRun:
		return "dry-run"
	case EventPatched:
		return "patched"
	case EventTruncated:
		return "truncated"
	case EventIOFailure:
		return "io-failure"
	default:
		return "unknown"
	}
}

// MarshalText renders the event by name.
func (e Event) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Transition records one state change of a run.
type Transition struct {
	From  State `json:"from"`
	To    State `json:"to"`
	Event Event `json:"event"`
}

// Result describes the outcome of a repair run. It is returned alongside
// any error so callers can see how far the run got.
type Result struct {
	Path string `json:"path"`

	// Trailing page
	PageOffset     int64 `json:"page_offset"`     // Offset of the repaired page's capture pattern
	PageSize       int   `json:"page_size"`       // Size of the page after repair
	SegmentCount   int   `json:"segment_count"`   // Entries in the segment table (unchanged by repair)
	ZeroedSegments int   `json:"zeroed_segments"` // Table entries forced to zero
	Retried        bool  `json:"retried"`         // The first candidate was rejected and the re-scan used

	// File
	OriginalSize int64 `json:"original_size"`
	FinalSize    int64 `json:"final_size"`

	// What happened
	AlreadyValid bool       `json:"already_valid"`         // Page needed no patch
	Patched      bool       `json:"patched"`               // Header fields were written
	Truncated    bool       `json:"truncated"`             // Trailing bytes were cut
	DryRun       bool       `json:"dry_run"`               // Nothing was written
	BackupPath   string     `json:"backup_path,omitempty"` // Backup created before the first write
	Patches      []LogEntry `json:"patches,omitempty"`     // Fields written by the patch step

	Transitions []Transition `json:"transitions"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration_ns"`
}

// TrimmedBytes returns how many bytes the run removed (or would remove).
func (r *Result) TrimmedBytes() int64 {
	if r.OriginalSize <= r.FinalSize {
		return 0
	}
	return r.OriginalSize - r.FinalSize
}

// PageInfo is a read-only report on the trailing page of a file.
type PageInfo struct {
	Path             string `json:"path"`
	FileSize         int64  `json:"file_size"`
	Offset           int64  `json:"offset"`
	Retried          bool   `json:"retried"`
	Version          byte   `json:"version"`
	Flags            byte   `json:"flags"`
	Continued        bool   `json:"continued"`
	BeginOfStream    bool   `json:"begin_of_stream"`
	EndOfStream      bool   `json:"end_of_stream"`
	GranulePosition  uint64 `json:"granule_position"`
	SerialNumber     uint32 `json:"serial_number"`
	SequenceNumber   uint32 `json:"sequence_number"`
	SegmentCount     int    `json:"segment_count"`
	HeaderSize       int    `json:"header_size"`
	DeclaredSize     int    `json:"declared_size"`
	Available        int    `json:"available"`
	Truncated        bool   `json:"truncated"`
	TrailingBytes    int    `json:"trailing_bytes"`
	StoredChecksum   uint32 `json:"stored_checksum"`
	ComputedChecksum uint32 `json:"computed_checksum"`
	ChecksumValid    bool   `json:"checksum_valid"`
}

// NeedsRepair reports whether running the repair would change the file.
func (i *PageInfo) NeedsRepair() bool {
	return i.Truncated || !i.EndOfStream || !i.ChecksumValid || i.TrailingBytes > 0
}
