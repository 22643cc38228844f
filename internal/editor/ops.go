package editor

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/openboard-dev/openboard/internal/domain"
)

// Block operations. Guard conditions (no board open, id not found, history
// boundary) degrade to silent no-ops: these calls are driven by editor UI
// controls that are disabled when the precondition does not hold, and an id
// miss is an expected deletion race, not a bug.

// AddBlock appends a block to the open board. The caller constructs the block
// with a unique id; order is assigned here, inside the lock, as the current
// block count, so concurrent adds cannot mint the same order value. Duplicate
// ids are dropped. History significant.
func (s *Session) AddBlock(block domain.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	if s.current.FindBlock(block.Id) >= 0 {
		return
	}

	owned := block.Clone()
	owned.Order = len(s.current.Blocks)
	s.current.Blocks = append(s.current.Blocks, owned)
	s.dirty = true
	s.history.Push(s.current.Blocks, fmt.Sprintf("Added %s block", block.Type))
}

// UpdateBlock shallow-merges a partial update onto the block with the given
// id. In-place content edits are transient and do not create a history
// entry; only structural operations are undoable.
func (s *Session) UpdateBlock(blockId domain.BlockId, patch domain.BlockPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	i := s.current.FindBlock(blockId)
	if i < 0 {
		return nil
	}

	if err := patch.Apply(&s.current.Blocks[i]); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// DeleteBlock removes the block with the given id. Remaining order values
// are not renumbered. Rendering sorts by order, so gaps are harmless.
// History significant.
func (s *Session) DeleteBlock(blockId domain.BlockId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	i := s.current.FindBlock(blockId)
	if i < 0 {
		return
	}

	deleted := s.current.Blocks[i]
	s.current.Blocks = append(s.current.Blocks[:i], s.current.Blocks[i+1:]...)
	s.dirty = true
	s.history.Push(s.current.Blocks, fmt.Sprintf("Deleted %s block", deleted.Type))
}

// ReorderBlocks rewrites every block's order to its index in the given id
// sequence. The sequence must be a permutation of the current block ids;
// anything else is a no-op. This is the only operation that normalizes order
// to be contiguous. History significant.
func (s *Session) ReorderBlocks(orderedIds []domain.BlockId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reorderLocked(orderedIds)
}

func (s *Session) reorderLocked(orderedIds []domain.BlockId) {
	if s.current == nil {
		return
	}
	if len(orderedIds) != len(s.current.Blocks) {
		return
	}

	position := make(map[domain.BlockId]int, len(orderedIds))
	for i, id := range orderedIds {
		if _, dup := position[id]; dup {
			return
		}
		position[id] = i
	}
	for i := range s.current.Blocks {
		if _, ok := position[s.current.Blocks[i].Id]; !ok {
			return
		}
	}

	for i := range s.current.Blocks {
		s.current.Blocks[i].Order = position[s.current.Blocks[i].Id]
	}
	s.dirty = true
	s.history.Push(s.current.Blocks, "Reordered blocks")
}

// ToggleBlockVisibility flips the visible flag. A transient display toggle,
// not history significant.
func (s *Session) ToggleBlockVisibility(blockId domain.BlockId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	i := s.current.FindBlock(blockId)
	if i < 0 {
		return
	}

	s.current.Blocks[i].Visible = !s.current.Blocks[i].Visible
	s.dirty = true
}

// DuplicateBlock clones a block's type and settings under a freshly generated
// id and appends it. History significant.
func (s *Session) DuplicateBlock(blockId domain.BlockId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	i := s.current.FindBlock(blockId)
	if i < 0 {
		return
	}

	clone := s.current.Blocks[i].Clone()
	clone.Id = uuid.NewString()
	clone.Order = len(s.current.Blocks)
	s.current.Blocks = append(s.current.Blocks, clone)
	s.dirty = true
	s.history.Push(s.current.Blocks, fmt.Sprintf("Duplicated %s block", clone.Type))
}

// DeleteMultipleBlocks removes every listed block that exists. A single
// combined history snapshot covers the whole batch; ids that match nothing
// are skipped, and a batch that removes nothing pushes nothing.
func (s *Session) DeleteMultipleBlocks(blockIds []domain.BlockId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	drop := make(map[domain.BlockId]struct{}, len(blockIds))
	for _, id := range blockIds {
		drop[id] = struct{}{}
	}

	kept := s.current.Blocks[:0]
	removed := 0
	for _, b := range s.current.Blocks {
		if _, ok := drop[b.Id]; ok {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	if removed == 0 {
		return
	}

	s.current.Blocks = kept
	s.dirty = true
	s.history.Push(s.current.Blocks, fmt.Sprintf("Deleted %d blocks", removed))
}

// BlockUpdate pairs a block id with its partial update for batch application.
type BlockUpdate struct {
	Id    domain.BlockId    `json:"id" validate:"required"`
	Patch domain.BlockPatch `json:"updates"`
}

// UpdateMultipleBlocks applies each patch to its block. Consistent with
// UpdateBlock: missing ids are skipped and nothing is pushed to history.
func (s *Session) UpdateMultipleBlocks(updates []BlockUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	for _, u := range updates {
		i := s.current.FindBlock(u.Id)
		if i < 0 {
			continue
		}
		if err := u.Patch.Apply(&s.current.Blocks[i]); err != nil {
			return err
		}
		s.dirty = true
	}
	return nil
}

// Undo steps the history pointer back and replaces the open board's blocks
// with a structural copy of that entry. No-op at the lower boundary.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}
	blocks, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.current.Blocks = blocks
	s.dirty = true
	return true
}

// Redo steps the history pointer forward. No-op at the upper boundary.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}
	blocks, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.current.Blocks = blocks
	s.dirty = true
	return true
}
