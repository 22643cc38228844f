package editor

import "github.com/openboard-dev/openboard/internal/domain"

// MoveBlock translates a drag gesture into a reorder: the dragged block takes
// the position the target block currently occupies in the display sequence,
// everything else keeps its relative order. Dropping a block onto itself, or
// naming an id that doesn't resolve, is a no-op: no mutation, no history
// entry.
func (s *Session) MoveBlock(draggedId, targetId domain.BlockId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || draggedId == targetId {
		return
	}

	sequence := make([]domain.BlockId, 0, len(s.current.Blocks))
	for _, b := range s.current.SortedBlocks() {
		sequence = append(sequence, b.Id)
	}

	from, to := -1, -1
	for i, id := range sequence {
		switch id {
		case draggedId:
			from = i
		case targetId:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return
	}

	// Remove at the old index and insert at the target's index, so the
	// dragged block lands exactly where the target was.
	moved := sequence[from]
	sequence = append(sequence[:from], sequence[from+1:]...)
	sequence = append(sequence[:to], append([]domain.BlockId{moved}, sequence[to:]...)...)

	s.reorderLocked(sequence)
}
