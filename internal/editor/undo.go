package editor

import "baymap/internal/metrics"

const (
	// MaxUndo bounds the undo stack; the oldest snapshot is dropped first.
	MaxUndo = 50
	// SnapshotVersion is bumped whenever Snapshot gains or loses a field.
	SnapshotVersion = 1
)

// Snapshot is an immutable copy of the editor's interaction state. It
// holds no persisted data: bays and zones always come from the store.
type Snapshot struct {
	Version  int
	Reason   string
	Selected string
	Draft    *Shape
	Edit     *Shape
	DrawMode bool
	EditMode bool
}

// Equal compares two snapshots ignoring the reason.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Version == o.Version &&
		s.Selected == o.Selected &&
		s.DrawMode == o.DrawMode &&
		s.EditMode == o.EditMode &&
		s.Draft.equal(o.Draft) &&
		s.Edit.equal(o.Edit)
}

// UndoStack is a bounded LIFO of snapshots.
type UndoStack struct {
	items []Snapshot
}

func (u *UndoStack) Push(s Snapshot) {
	if len(u.items) == MaxUndo {
		copy(u.items, u.items[1:])
		u.items = u.items[:MaxUndo-1]
	}
	u.items = append(u.items, s)
	metrics.UndoDepth.Set(float64(len(u.items)))
}

// Pop returns the most recent snapshot; ok is false on an empty stack.
func (u *UndoStack) Pop() (Snapshot, bool) {
	if len(u.items) == 0 {
		return Snapshot{}, false
	}
	s := u.items[len(u.items)-1]
	u.items = u.items[:len(u.items)-1]
	metrics.UndoDepth.Set(float64(len(u.items)))
	return s, true
}

func (u *UndoStack) Len() int { return len(u.items) }

// Peek returns the reason of the most recent snapshot, if any.
func (u *UndoStack) Peek() (string, bool) {
	if len(u.items) == 0 {
		return "", false
	}
	return u.items[len(u.items)-1].Reason, true
}

func (e *Editor) snapshot(reason string) Snapshot {
	return Snapshot{
		Version:  SnapshotVersion,
		Reason:   reason,
		Selected: e.selected,
		Draft:    e.draft.clone(),
		Edit:     e.edit.clone(),
		DrawMode: e.drawMode,
		EditMode: e.editMode,
	}
}

func (e *Editor) pushUndo(reason string) {
	e.undo.Push(e.snapshot(reason))
}

func (e *Editor) restore(s Snapshot) {
	e.selected = s.Selected
	e.draft = s.Draft.clone()
	e.edit = s.Edit.clone()
	e.drawMode = s.DrawMode
	e.editMode = s.EditMode
}
