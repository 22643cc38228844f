// Package editor implements the in-memory board editing session: the
// document store holding the currently open board, the undo/redo history and
// the block operations API that all mutation routes through.
//
// A session is owned by a single user but reached from concurrent HTTP
// handlers, so every operation takes the session mutex. That gives the same
// total ordering the original single-writer design relies on: an operation
// completes fully before the next one starts.
package editor

import (
	"sync"

	"github.com/openboard-dev/openboard/internal/domain"
)

// Session holds one currently open board (or none) plus a read-mostly cache
// of the user's board list. The block collection is private to this package:
// callers mutate it exclusively through the operations API so history
// bookkeeping stays consistent.
type Session struct {
	mu      sync.Mutex
	current *domain.Board
	boards  []domain.Board
	history *History
	dirty   bool
}

func NewSession(historyLimit int) *Session {
	return &Session{history: NewHistory(historyLimit)}
}

// SetCurrentBoard replaces the open board wholesale and resets history to a
// single snapshot of the incoming blocks. Passing nil closes the board and
// clears history.
func (s *Session) SetCurrentBoard(board *domain.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if board == nil {
		s.current = nil
		s.history.Clear()
		s.dirty = false
		return
	}

	owned := board.Clone()
	s.current = &owned
	s.history.Reset(owned.Blocks, "Initial state")
	s.dirty = false
}

// SetBoards replaces the cached board list. Does not touch the open board.
func (s *Session) SetBoards(boards []domain.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = make([]domain.Board, len(boards))
	for i, b := range boards {
		s.boards[i] = b.Clone()
	}
}

// Boards returns a copy of the cached board list.
func (s *Session) Boards() []domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Board, len(s.boards))
	for i, b := range s.boards {
		out[i] = b.Clone()
	}
	return out
}

// CurrentBoard returns a deep copy of the open board, or nil. Callers never
// see the live value, so they cannot mutate it behind the session's back.
func (s *Session) CurrentBoard() *domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	b := s.current.Clone()
	return &b
}

// UpdateBoardMeta shallow-merges metadata fields into the cached list entry
// and, when the ids match, the open board. Used for title/description/theme/
// privacy edits that don't go through block operations. Not history
// significant.
func (s *Session) UpdateBoardMeta(boardId domain.BoardId, patch domain.BoardPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.boards {
		if s.boards[i].Id == boardId {
			if err := patch.Apply(&s.boards[i]); err != nil {
				return err
			}
			break
		}
	}
	if s.current != nil && s.current.Id == boardId {
		if err := patch.Apply(s.current); err != nil {
			return err
		}
		s.dirty = true
	}
	return nil
}

// SetBoardPasswordHash mirrors a password change made through the boards API
// into the session copies. The hash is not part of the metadata patch
// surface, so it is synced separately.
func (s *Session) SetBoardPasswordHash(boardId domain.BoardId, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.boards {
		if s.boards[i].Id == boardId {
			s.boards[i].PasswordHash = hash
		}
	}
	if s.current != nil && s.current.Id == boardId {
		s.current.PasswordHash = hash
	}
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkSaved clears the unsaved-changes flag after a successful persist.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryLen exposes the stack depth (for the editor UI's history panel).
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// BlockCount returns the number of blocks on the open board. New blocks are
// appended, so this is also the order value a caller should assign next.
func (s *Session) BlockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return len(s.current.Blocks)
}
