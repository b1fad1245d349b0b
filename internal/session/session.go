package session

import (
	"fmt"
	"sync"
	"time"

	"photobatch/internal/logging"
	"photobatch/internal/metrics"
)

// Intake limits enforced at ingestion, not inside the pipeline.
const (
	// MaxFiles caps the number of items in one session.
	MaxFiles = 50
	// MaxFileSize caps a single uploaded file at 10 MB.
	MaxFileSize = 10 << 20
)

// DefaultNoteTTL is how long a per-item error note stays visible.
const DefaultNoteTTL = 10 * time.Second

// IngestError reports a file rejected at intake (size, type, or count
// limit). It is surfaced immediately and never affects already-accepted
// files.
type IngestError struct {
	Name   string
	Reason string
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("rejected %s: %s", e.Name, e.Reason)
}

// Note is one entry in the transient, user-visible error list. Expired
// notes are dropped on read.
type Note struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session holds the uploaded item collection, the wizard state, bulk
// metadata defaults, progress counters, and the finished archive. All
// mutations are mutex-guarded; the state machine guarantees that only one
// logical operation (ingest or process) is in flight at a time.
type Session struct {
	mu sync.Mutex

	state     State
	items     []*UploadedImage
	bulk      Metadata
	notes     []Note
	noteTTL   time.Duration
	startedAt time.Time

	processed int
	total     int

	archive     []byte
	archiveName string
}

// New returns an idle session.
func New() *Session {
	return &Session{
		state:   StateIdle,
		noteTTL: DefaultNoteTTL,
	}
}

// SetNoteTTL overrides the error-note display interval.
func (s *Session) SetNoteTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl > 0 {
		s.noteTTL = ttl
	}
}

// State returns the current wizard state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// transition moves the state machine; the caller must hold s.mu.
func (s *Session) transition(to State) error {
	if !transitionAllowed(s.state, to) {
		return &TransitionError{From: s.state, To: to}
	}
	logging.Debug("Session state: %s -> %s", s.state, to)
	s.state = to
	metrics.SessionState.Set(float64(to))
	return nil
}

// BeginIngest moves idle -> loading and starts the session clock.
func (s *Session) BeginIngest(total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transition(StateLoading); err != nil {
		return err
	}
	s.startedAt = time.Now()
	s.processed = 0
	s.total = total
	return nil
}

// FinishIngest moves loading -> awaiting-metadata (automatic on pipeline
// completion). An ingest that accepted nothing returns to idle instead.
func (s *Session) FinishIngest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return s.transition(StateIdle)
	}
	return s.transition(StateAwaitingMetadata)
}

// AddItem appends an accepted item during loading. The MaxFiles cap is
// enforced here so a too-large batch rejects the excess without dropping
// what was already accepted.
func (s *Session) AddItem(img *UploadedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoading {
		return fmt.Errorf("cannot add items in state %s", s.state)
	}
	if len(s.items) >= MaxFiles {
		return &IngestError{Name: img.SourceName, Reason: fmt.Sprintf("batch limit of %d files reached", MaxFiles)}
	}
	s.items = append(s.items, img)
	return nil
}

// Items returns a snapshot of the current collection in upload order.
func (s *Session) Items() []*UploadedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*UploadedImage(nil), s.items...)
}

// Item looks up one item by ID.
func (s *Session) Item(id string) (*UploadedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// ApplyBulkMetadata assigns the same naming metadata to every item. Allowed
// while metadata or confirmation is pending.
func (s *Session) ApplyBulkMetadata(meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingMetadata && s.state != StateAwaitingConfirmation {
		return fmt.Errorf("cannot assign metadata in state %s", s.state)
	}
	s.bulk = meta
	for _, it := range s.items {
		it.Meta = meta
	}
	return nil
}

// OverrideMetadata replaces one item's metadata without touching the rest.
func (s *Session) OverrideMetadata(id string, meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingMetadata && s.state != StateAwaitingConfirmation {
		return fmt.Errorf("cannot assign metadata in state %s", s.state)
	}
	for _, it := range s.items {
		if it.ID == id {
			it.Meta = meta
			return nil
		}
	}
	return fmt.Errorf("unknown item %s", id)
}

// BulkMetadata returns the current bulk defaults.
func (s *Session) BulkMetadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulk
}

// Confirm moves awaiting-metadata -> awaiting-confirmation.
func (s *Session) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(StateAwaitingConfirmation)
}

// BeginProcessing moves awaiting-confirmation -> processing and returns the
// ordered item snapshot the batch will run over. Upload order at this
// moment determines sequence numbers.
func (s *Session) BeginProcessing() ([]*UploadedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transition(StateProcessing); err != nil {
		return nil, err
	}
	s.processed = 0
	s.total = len(s.items)
	return append([]*UploadedImage(nil), s.items...), nil
}

// CompleteProcessing stores the finalized archive and moves processing ->
// complete (automatic on pipeline completion).
func (s *Session) CompleteProcessing(blob []byte, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transition(StateComplete); err != nil {
		return err
	}
	s.archive = blob
	s.archiveName = name
	return nil
}

// FailProcessing returns the wizard to the confirmation screen after a
// batch-level failure. No archive is kept.
func (s *Session) FailProcessing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.archive = nil
	s.archiveName = ""
	return s.transition(StateAwaitingConfirmation)
}

// Archive returns the finished archive blob and filename once complete.
func (s *Session) Archive() ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete || s.archive == nil {
		return nil, "", false
	}
	return s.archive, s.archiveName, true
}

// IncrementProgress bumps the processed counter. It is called for failed
// items too, so the progress bar always reaches total.
func (s *Session) IncrementProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
}

// Progress returns (processed, total) for the operation in flight.
func (s *Session) Progress() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed, s.total
}

// AddNote records a user-visible error message with the auto-expiry
// timestamp applied.
func (s *Session) AddNote(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, Note{
		Message:   message,
		ExpiresAt: time.Now().Add(s.noteTTL),
	})
}

// Notes returns the unexpired error notes and prunes the rest.
func (s *Session) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	active := s.notes[:0]
	for _, n := range s.notes {
		if n.ExpiresAt.After(now) {
			active = append(active, n)
		}
	}
	s.notes = active
	return append([]Note(nil), active...)
}

// Duration returns how long the session has been active.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// Reset releases every derived resource handle, clears all metadata and
// counters, and returns to idle. Reset mid-operation is not a supported
// transition and is rejected.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateLoading, StateProcessing:
		return &TransitionError{From: s.state, To: StateIdle}
	case StateIdle:
		return nil
	}

	for _, it := range s.items {
		it.release()
	}
	s.items = nil
	s.bulk = Metadata{}
	s.notes = nil
	s.processed = 0
	s.total = 0
	s.archive = nil
	s.archiveName = ""
	s.startedAt = time.Time{}
	s.state = StateIdle
	metrics.SessionState.Set(float64(StateIdle))
	metrics.SessionResetsTotal.Inc()
	logging.Info("Session reset: all resource handles released")
	return nil
}
