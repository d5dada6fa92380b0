package sheet

// Edit records a single-cell change with enough information to both apply and
// reverse it. Old is the value observed immediately before the edit ("" when
// the cell did not previously exist).
type Edit struct {
	Col int
	Row int
	Old string
	New string
}

// editLog is the unbounded LIFO of applied edits. It lives for the process
// only and is reset on restart. The log is owned by the Store and shares its
// lock; none of these methods synchronize on their own.
type editLog struct {
	edits []Edit
}

func (l *editLog) push(e Edit) {
	l.edits = append(l.edits, e)
}

func (l *editLog) pop() (Edit, bool) {
	if len(l.edits) == 0 {
		return Edit{}, false
	}
	i := len(l.edits) - 1
	e := l.edits[i]
	l.edits = l.edits[:i]
	return e, true
}

func (l *editLog) depth() int {
	return len(l.edits)
}
