// Package sheet implements the concurrently-accessed tabular document model:
// a sparse growable grid of cells behind one fair lock, a LIFO edit log that
// drives undo, and the contracts for the persistence, external-sync, and
// render collaborators.
package sheet

import (
	"sync"
)

// Logger is the minimal logging surface a Store needs. A nil Logger is silent.
type Logger interface {
	Printf(format string, args ...any)
}

// Persistence loads the document at construction and saves it on demand. Save
// is invoked while the Store holds its lock, so implementations see a
// consistent snapshot and should not call back into the Store.
type Persistence interface {
	Load() (Document, error)
	Save(Document) error
}

// SyncTarget receives individual cell changes when a remote session is active.
// Pushes are fire-and-forget from the Store's perspective; the target owns
// retry and backoff. Full-document replacement never flows through this
// interface (that direction arrives via Replace).
type SyncTarget interface {
	Active() bool
	PushCellChange(col, row int, value string)
}

// Screen is the render consumer. It carries no payload on change
// notifications; the consumer re-reads through Value.
type Screen interface {
	NotifyChanged()
	NotifyChangedFrom(topLeftCol, topLeftRow int)
	SetColumnWidth(chars int)
}

// CellDelta is one queued single-cell change bound for the sync target.
type CellDelta struct {
	Col   int
	Row   int
	Value string
}

type StoreOptions struct {
	// Persistence seeds the document at construction and receives Save
	// snapshots. Nil starts empty and makes Save a no-op.
	Persistence Persistence
	// Sync receives single-cell deltas while a session is active.
	Sync SyncTarget
	// Screen receives change notifications. It can also be attached later
	// with AttachScreen when construction order requires it.
	Screen Screen
	Logger Logger
	// DeltaQueueSize bounds the ordered channel between the edit path and
	// the sync worker. Defaults to 256.
	DeltaQueueSize int
	// DisableWorker skips starting the sync worker; deltas are then pushed
	// synchronously on the edit path. Used by tests that want deterministic
	// delivery.
	DisableWorker bool
}

// Store owns the Document. Every read and mutation goes through the one fair
// lock, so a reader observes the state before or after any given write, never
// an intermediate one.
type Store struct {
	mu  *fairMutex
	doc Document
	log editLog

	persist Persistence
	sync    SyncTarget
	screen  Screen
	logger  Logger

	deltas    chan CellDelta
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	worker    bool
}

// NewStore builds a Store, loading the initial document from the persistence
// collaborator when one is configured.
func NewStore(opts StoreOptions) (*Store, error) {
	queueSize := opts.DeltaQueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	s := &Store{
		mu:      newFairMutex(),
		persist: opts.Persistence,
		sync:    opts.Sync,
		screen:  opts.Screen,
		logger:  opts.Logger,
		deltas:  make(chan CellDelta, queueSize),
		closed:  make(chan struct{}),
	}
	if s.persist != nil {
		doc, err := s.persist.Load()
		if err != nil {
			return nil, err
		}
		s.doc = doc
	}
	if s.sync != nil && !opts.DisableWorker {
		s.worker = true
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.syncWorker()
		}()
	}
	return s, nil
}

// AttachScreen binds the render consumer after construction. The screen and
// the Store reference each other, so one of them has to be wired late.
func (s *Store) AttachScreen(screen Screen) {
	s.mu.Lock()
	s.screen = screen
	s.mu.Unlock()
}

// Close stops the sync worker after draining queued deltas, so an edit made
// just before shutdown still reaches the host.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.wg.Wait()
	})
}

// Value returns the cell value at (col, row), or "" when the cell is absent.
func (s *Store) Value(col, row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Value(col, row)
}

// Size returns the current column and row extents.
func (s *Store) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Size()
}

// UndoDepth reports how many edits the log currently holds.
func (s *Store) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.depth()
}

// Apply records the edit on the undo log, writes the cell (growing the grid as
// needed), queues the delta for the sync target when a session is active, and
// notifies the render consumer. Negative coordinates are a logged no-op.
func (s *Store) Apply(col, row int, value string) {
	if col < 0 || row < 0 {
		s.logf("sheet: ignoring edit at negative position (%d, %d)", col, row)
		return
	}
	s.mu.Lock()
	old := s.doc.Value(col, row)
	s.log.push(Edit{Col: col, Row: row, Old: old, New: value})
	s.setGrowingLocked(col, row, value)
	s.mu.Unlock()
	s.notifyChanged()
}

// Undo pops the most recent edit and replays its old value through the same
// write path as Apply, including the sync push and the repaint. It does not
// push onto the log: undo is not itself undoable and there is no redo. An
// empty log is a no-op.
func (s *Store) Undo() {
	s.mu.Lock()
	last, ok := s.log.pop()
	if !ok {
		s.mu.Unlock()
		return
	}
	s.setGrowingLocked(last.Col, last.Row, last.Old)
	s.mu.Unlock()
	s.notifyChanged()
}

// Replace swaps the whole document. The caller (an authoritative external
// source) wins entirely; pending local edits are not merged. The edit log is
// kept: undoing across a replacement is last-write-wins on the cell.
func (s *Store) Replace(doc Document) {
	s.mu.Lock()
	s.doc = doc.Clone()
	s.mu.Unlock()
	s.notifyChanged()
}

// Save hands the current document to the persistence collaborator while
// holding the lock, so a concurrent writer cannot observe a half-written save.
func (s *Store) Save() error {
	if s.persist == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist.Save(s.doc)
}

// Scroll asks the render consumer to repaint with the given cell at the top
// left of the viewport.
func (s *Store) Scroll(topLeftCol, topLeftRow int) {
	if screen := s.currentScreen(); screen != nil {
		screen.NotifyChangedFrom(topLeftCol, topLeftRow)
	}
}

// ResizeColumn sets how many characters fit in one rendered column.
func (s *Store) ResizeColumn(chars int) {
	if screen := s.currentScreen(); screen != nil {
		screen.SetColumnWidth(chars)
	}
}

// setGrowingLocked is the single write path shared by Apply, Undo, and any
// future mutation: grow, set, and queue the delta. Queueing while the lock is
// held makes the channel order identical to the total write order, so the sync
// worker delivers deltas in exactly the order edits landed, without holding
// the lock across the network call.
func (s *Store) setGrowingLocked(col, row int, value string) {
	s.doc.setGrowing(col, row, value)
	if s.sync == nil || !s.sync.Active() {
		return
	}
	delta := CellDelta{Col: col, Row: row, Value: value}
	if !s.worker {
		s.sync.PushCellChange(delta.Col, delta.Row, delta.Value)
		return
	}
	select {
	case s.deltas <- delta:
	default:
		// The target owns reliability; a full queue sheds the delta
		// rather than holding the document lock.
		s.logf("sheet: sync queue full, dropping delta for (%d, %d)", col, row)
	}
}

func (s *Store) syncWorker() {
	for {
		select {
		case delta := <-s.deltas:
			s.sync.PushCellChange(delta.Col, delta.Row, delta.Value)
		case <-s.closed:
			for {
				select {
				case delta := <-s.deltas:
					s.sync.PushCellChange(delta.Col, delta.Row, delta.Value)
				default:
					return
				}
			}
		}
	}
}

// notifyChanged runs outside the critical section: the consumer re-reads
// through Value, which takes the lock itself.
func (s *Store) notifyChanged() {
	if screen := s.currentScreen(); screen != nil {
		screen.NotifyChanged()
	}
}

func (s *Store) currentScreen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *Store) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}
