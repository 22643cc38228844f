package editor

import (
	"time"

	"github.com/openboard-dev/openboard/internal/domain"
)

// Snapshot is one undo history entry: a deep, independent copy of the block
// collection at the time of a structural operation. It never aliases the live
// slice, so later in-place edits cannot corrupt captured history.
type Snapshot struct {
	Blocks      []domain.Block
	Timestamp   time.Time
	Description string
}

// History is a linear undo/redo stack. idx always points at the entry
// matching the currently displayed blocks; pushing while idx is not at the
// end discards everything after it (undo-branch truncation). The stack is
// capped: exceeding the limit evicts the oldest entry and idx shifts down so
// it keeps pointing at the same logical entry.
type History struct {
	entries []Snapshot
	idx     int
	limit   int
}

const DefaultHistoryLimit = 50

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{idx: -1, limit: limit}
}

// Reset discards the stack and seeds it with a single snapshot of the given
// blocks. Called whenever a board is opened, so undo is disabled right after
// load: there is nothing "before" the loaded state.
func (h *History) Reset(blocks []domain.Block, description string) {
	h.entries = []Snapshot{{
		Blocks:      domain.CloneBlocks(blocks),
		Timestamp:   time.Now().UTC(),
		Description: description,
	}}
	h.idx = 0
}

// Clear empties the stack (board closed).
func (h *History) Clear() {
	h.entries = nil
	h.idx = -1
}

// Push records a snapshot of blocks as the new head.
func (h *History) Push(blocks []domain.Block, description string) {
	h.entries = append(h.entries[:h.idx+1], Snapshot{
		Blocks:      domain.CloneBlocks(blocks),
		Timestamp:   time.Now().UTC(),
		Description: description,
	})
	h.idx++

	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
		h.idx--
	}
}

// Undo moves the pointer back one entry and returns an independent copy of
// it. Returns false at the lower boundary without moving.
func (h *History) Undo() ([]domain.Block, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.idx--
	return domain.CloneBlocks(h.entries[h.idx].Blocks), true
}

// Redo moves the pointer forward one entry and returns an independent copy of
// it. Returns false at the upper boundary without moving.
func (h *History) Redo() ([]domain.Block, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.idx++
	return domain.CloneBlocks(h.entries[h.idx].Blocks), true
}

func (h *History) CanUndo() bool {
	return h.idx > 0
}

func (h *History) CanRedo() bool {
	return h.idx >= 0 && h.idx < len(h.entries)-1
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Index() int {
	return h.idx
}
