package term

import (
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

const (
	defaultColumnWidth = 9
	minColumnWidth     = 3
	maxColumnWidth     = 60
)

// ScreenOptions configure a terminal screen.
type ScreenOptions struct {
	// Tcell supplies the backing tcell screen. When nil a real terminal
	// screen is created; tests pass a simulation screen.
	Tcell tcell.Screen

	// ColumnWidth is the initial width of every column in characters.
	// Zero means defaultColumnWidth.
	ColumnWidth int

	// OnSave is invoked when the user requests a save. It replaces the
	// default store.Save so the caller can suppress its own file watcher
	// around the write.
	OnSave func() error

	Logger sheet.Logger
}

// Screen draws the document grid on a terminal and feeds keystrokes back to
// the store as document operations. It satisfies the store's render consumer
// contract, so change notifications from any goroutine repaint the grid.
type Screen struct {
	ts     tcell.Screen
	store  *sheet.Store
	onSave func() error
	logger sheet.Logger

	mu       sync.Mutex
	topCol   int
	topRow   int
	curCol   int
	curRow   int
	colWidth int
	editing  bool
	pending  []rune
	status   string
}

var _ sheet.Screen = (*Screen)(nil)

// NewScreen builds a terminal screen bound to store. The screen is not
// attached to the store here; callers do that once construction of both
// sides is complete.
func NewScreen(store *sheet.Store, opts ScreenOptions) (*Screen, error) {
	if store == nil {
		return nil, errors.New("term: store is required")
	}
	ts := opts.Tcell
	if ts == nil {
		var err error
		ts, err = tcell.NewScreen()
		if err != nil {
			return nil, err
		}
	}
	width := opts.ColumnWidth
	if width == 0 {
		width = defaultColumnWidth
	}
	width = clampWidth(width)
	onSave := opts.OnSave
	if onSave == nil {
		onSave = store.Save
	}
	return &Screen{
		ts:       ts,
		store:    store,
		onSave:   onSave,
		logger:   opts.Logger,
		colWidth: width,
	}, nil
}

// NotifyChanged repaints the grid. Safe to call from any goroutine.
func (s *Screen) NotifyChanged() {
	// PostEvent only fails when the queue is full; a repaint is already
	// pending in that case.
	_ = s.ts.PostEvent(tcell.NewEventInterrupt(nil))
}

// NotifyChangedFrom scrolls the viewport so (col, row) is the top-left
// visible cell and repaints.
func (s *Screen) NotifyChangedFrom(col, row int) {
	s.mu.Lock()
	s.topCol = maxInt(col, 0)
	s.topRow = maxInt(row, 0)
	s.mu.Unlock()
	s.NotifyChanged()
}

// SetColumnWidth changes the rendered width of every column.
func (s *Screen) SetColumnWidth(chars int) {
	s.mu.Lock()
	s.colWidth = clampWidth(chars)
	s.mu.Unlock()
	s.NotifyChanged()
}

// ColumnWidth reports the current rendered column width.
func (s *Screen) ColumnWidth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colWidth
}

// Run initializes the terminal, draws the grid, and processes events until
// the user quits or the screen is interrupted with a fatal error.
func (s *Screen) Run() error {
	if err := s.ts.Init(); err != nil {
		return err
	}
	defer s.ts.Fini()
	s.draw()
	for {
		ev := s.ts.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			s.ts.Sync()
			s.draw()
		case *tcell.EventInterrupt:
			s.draw()
		case *tcell.EventKey:
			if s.handleKey(ev) {
				return nil
			}
			s.draw()
		case nil:
			return nil
		}
	}
}

// handleKey applies one keystroke. It reports true when the user quit.
func (s *Screen) handleKey(ev *tcell.EventKey) bool {
	s.mu.Lock()
	editing := s.editing
	s.mu.Unlock()

	if editing {
		s.handleEditKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		s.moveCursor(0, -1)
	case tcell.KeyDown:
		s.moveCursor(0, 1)
	case tcell.KeyLeft:
		s.moveCursor(-1, 0)
	case tcell.KeyRight:
		s.moveCursor(1, 0)
	case tcell.KeyCtrlS:
		s.save()
	case tcell.KeyEnter:
		s.beginEdit(nil)
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q':
			return true
		case 'u':
			s.store.Undo()
		case '+':
			s.store.ResizeColumn(s.ColumnWidth() + 1)
		case '-':
			s.store.ResizeColumn(s.ColumnWidth() - 1)
		default:
			s.beginEdit([]rune{r})
		}
	}
	return false
}

func (s *Screen) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		s.mu.Lock()
		s.editing = false
		s.pending = nil
		s.mu.Unlock()
	case tcell.KeyEnter:
		s.mu.Lock()
		col, row := s.curCol, s.curRow
		value := string(s.pending)
		s.editing = false
		s.pending = nil
		s.mu.Unlock()
		s.store.Apply(col, row, value)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.mu.Lock()
		if len(s.pending) > 0 {
			s.pending = s.pending[:len(s.pending)-1]
		}
		s.mu.Unlock()
	case tcell.KeyRune:
		s.mu.Lock()
		s.pending = append(s.pending, ev.Rune())
		s.mu.Unlock()
	}
}

func (s *Screen) beginEdit(seed []rune) {
	s.mu.Lock()
	s.editing = true
	s.pending = seed
	s.status = ""
	s.mu.Unlock()
}

func (s *Screen) moveCursor(dc, dr int) {
	s.mu.Lock()
	s.curCol = maxInt(s.curCol+dc, 0)
	s.curRow = maxInt(s.curRow+dr, 0)
	s.status = ""
	s.mu.Unlock()
}

func (s *Screen) save() {
	err := s.onSave()
	s.mu.Lock()
	if err != nil {
		s.status = "save failed: " + err.Error()
	} else {
		s.status = "saved"
	}
	s.mu.Unlock()
	if err != nil && s.logger != nil {
		s.logger.Printf("term: save failed: %v", err)
	}
}

// draw repaints the whole grid from the store's current state.
func (s *Screen) draw() {
	width, height := s.ts.Size()
	if width <= 0 || height < 3 {
		return
	}
	gridRows := height - 2 // header + status line

	s.mu.Lock()
	s.followCursor(width, gridRows)
	topCol, topRow := s.topCol, s.topRow
	curCol, curRow := s.curCol, s.curRow
	colWidth := s.colWidth
	editing, pending := s.editing, string(s.pending)
	status := s.status
	s.mu.Unlock()

	gutter := gutterWidth(topRow + gridRows - 1)
	cols := visibleCols(width, gutter, colWidth)

	s.ts.Clear()
	headStyle := tcell.StyleDefault.Bold(true)
	cursorStyle := tcell.StyleDefault.Reverse(true)

	// Column header.
	for c := 0; c < cols; c++ {
		label := FormatCell(ColumnLabel(topCol+c), colWidth)
		putString(s.ts, gutter+c*colWidth, 0, label, headStyle)
	}

	// Grid rows with a numbered gutter.
	for r := 0; r < gridRows; r++ {
		row := topRow + r
		putString(s.ts, 0, r+1, FormatCell(formatRowNumber(row, gutter-1), gutter), headStyle)
		for c := 0; c < cols; c++ {
			col := topCol + c
			value := s.store.Value(col, row)
			style := tcell.StyleDefault
			if col == curCol && row == curRow {
				style = cursorStyle
				if editing {
					value = pending
				}
			}
			putString(s.ts, gutter+c*colWidth, r+1, FormatCell(value, colWidth), style)
		}
	}

	// Status line: cell name, pending edit or value, one-shot message.
	line := CellName(curCol, curRow) + " "
	if editing {
		line += "= " + pending + "▏"
	} else {
		line += s.store.Value(curCol, curRow)
	}
	if status != "" {
		line += "  [" + status + "]"
	}
	putString(s.ts, 0, height-1, FormatCell(line, width), tcell.StyleDefault)

	s.ts.Show()
}

// followCursor adjusts the viewport so the cursor stays visible. Caller
// holds s.mu.
func (s *Screen) followCursor(screenWidth, gridRows int) {
	gutter := gutterWidth(s.topRow + gridRows - 1)
	cols := visibleCols(screenWidth, gutter, s.colWidth)
	if cols > 0 {
		if s.curCol < s.topCol {
			s.topCol = s.curCol
		}
		if s.curCol >= s.topCol+cols {
			s.topCol = s.curCol - cols + 1
		}
	}
	if gridRows > 0 {
		if s.curRow < s.topRow {
			s.topRow = s.curRow
		}
		if s.curRow >= s.topRow+gridRows {
			s.topRow = s.curRow - gridRows + 1
		}
	}
}

func formatRowNumber(row, width int) string {
	label := ""
	for n := row + 1; n > 0; n /= 10 {
		label = string(rune('0'+n%10)) + label
	}
	for len(label) < width {
		label = " " + label
	}
	return label
}

func putString(ts tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		ts.SetContent(x+i, y, r, nil, style)
	}
}

func clampWidth(w int) int {
	if w < minColumnWidth {
		return minColumnWidth
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
