package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/openboard-dev/openboard/internal/config"
	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/editor"
	"github.com/openboard-dev/openboard/internal/errors"
	"github.com/openboard-dev/openboard/internal/logger"
	"github.com/openboard-dev/openboard/internal/utils"
)

// EditorState is the session snapshot returned after every editing call so
// the client can keep its undo/redo/save controls in sync.
type EditorState struct {
	Board      *domain.Board
	CanUndo    bool
	CanRedo    bool
	Dirty      bool
	HistoryLen int
}

type EditorService interface {
	Open(user domain.User, boardId domain.BoardId) (EditorState, error)
	Close(user domain.User) error
	State(user domain.User) (EditorState, error)
	Save(user domain.User) (EditorState, error)

	AddBlock(user domain.User, blockType domain.BlockType, settings json.RawMessage, visible *bool) (EditorState, error)
	UpdateBlock(user domain.User, blockId domain.BlockId, patch domain.BlockPatch) (EditorState, error)
	DeleteBlock(user domain.User, blockId domain.BlockId) (EditorState, error)
	DuplicateBlock(user domain.User, blockId domain.BlockId) (EditorState, error)
	ToggleBlockVisibility(user domain.User, blockId domain.BlockId) (EditorState, error)
	ReorderBlocks(user domain.User, orderedIds []domain.BlockId) (EditorState, error)
	MoveBlock(user domain.User, draggedId, targetId domain.BlockId) (EditorState, error)
	DeleteMultipleBlocks(user domain.User, blockIds []domain.BlockId) (EditorState, error)
	UpdateMultipleBlocks(user domain.User, updates []editor.BlockUpdate) (EditorState, error)
	Undo(user domain.User) (EditorState, error)
	Redo(user domain.User) (EditorState, error)
}

type EditorStorage interface {
	Board(id domain.BoardId) (domain.Board, error)
	UpdateBoard(board domain.Board) error
	BoardsByOwner(ownerId domain.UserId) ([]domain.Board, error)
}

// Editor owns one editing session per user. Opening a board loads it from
// storage into the session; every block operation then runs purely in memory
// and nothing reaches storage until an explicit save.
type Editor struct {
	mu       sync.RWMutex
	sessions map[domain.UserId]*editor.Session

	storage EditorStorage
	cfg     *config.Public
}

func NewEditor(storage EditorStorage, cfg *config.Public) *Editor {
	return &Editor{
		sessions: make(map[domain.UserId]*editor.Session),
		storage:  storage,
		cfg:      cfg,
	}
}

func (e *Editor) session(userId domain.UserId) (*editor.Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[userId]
	if !ok {
		return nil, &errors.ErrorWithStatusCode{Message: "No board open", StatusCode: http.StatusConflict}
	}
	return s, nil
}

func state(s *editor.Session) EditorState {
	return EditorState{
		Board:      s.CurrentBoard(),
		CanUndo:    s.CanUndo(),
		CanRedo:    s.CanRedo(),
		Dirty:      s.Dirty(),
		HistoryLen: s.HistoryLen(),
	}
}

// Open loads the board into a fresh session for the user, replacing any
// previously open board. Unsaved changes in the old session are discarded.
func (e *Editor) Open(user domain.User, boardId domain.BoardId) (EditorState, error) {
	board, err := e.storage.Board(boardId)
	if err != nil {
		return EditorState{}, err
	}
	if board.OwnerId != user.Id && !board.HasCollaborator(user.Username) {
		return EditorState{}, errors.NotFound("Board not found")
	}

	boards, err := e.storage.BoardsByOwner(user.Id)
	if err != nil {
		return EditorState{}, err
	}

	e.mu.Lock()
	s, ok := e.sessions[user.Id]
	if !ok {
		s = editor.NewSession(e.cfg.HistoryLimit)
		e.sessions[user.Id] = s
	}
	e.mu.Unlock()

	s.SetBoards(boards)
	s.SetCurrentBoard(&board)
	logger.Log.Info("editing session opened", "user_id", user.Id, "board_id", boardId)
	return state(s), nil
}

// Close discards the session. Unsaved changes are lost; the client is
// expected to save first.
func (e *Editor) Close(user domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[user.Id]; ok {
		s.SetCurrentBoard(nil)
		delete(e.sessions, user.Id)
	}
	return nil
}

// BoardMetaUpdated applies a metadata edit made through the boards API to the
// user's open session, if any, so the next editor save does not write the
// pre-edit metadata back. Satisfies SessionSync.
func (e *Editor) BoardMetaUpdated(userId domain.UserId, board domain.Board, patch domain.BoardPatch) {
	e.mu.RLock()
	s, ok := e.sessions[userId]
	e.mu.RUnlock()
	if !ok {
		return
	}
	if err := s.UpdateBoardMeta(board.Id, patch); err != nil {
		logger.Log.Warn("failed to sync board metadata into session",
			"user_id", userId, "board_id", board.Id, "error", err)
		return
	}
	s.SetBoardPasswordHash(board.Id, board.PasswordHash)
}

func (e *Editor) State(user domain.User) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	return state(s), nil
}

// Save persists the open board. The session is only marked clean after the
// write succeeds; a storage failure leaves the dirty flag set so the client
// can retry.
func (e *Editor) Save(user domain.User) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	board := s.CurrentBoard()
	if board == nil {
		return EditorState{}, &errors.ErrorWithStatusCode{Message: "No board open", StatusCode: http.StatusConflict}
	}
	if err := e.storage.UpdateBoard(*board); err != nil {
		return EditorState{}, err
	}
	s.MarkSaved()
	logger.Log.Info("board saved", "user_id", user.Id, "board_id", board.Id)
	return state(s), nil
}

// AddBlock validates and appends a new block of the given type. Settings
// fields absent from the payload keep the variant's zero values.
func (e *Editor) AddBlock(user domain.User, blockType domain.BlockType, rawSettings json.RawMessage, visible *bool) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	if s.BlockCount() >= e.cfg.MaxBlocks {
		return EditorState{}, &errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Board is limited to %d blocks", e.cfg.MaxBlocks),
			StatusCode: http.StatusUnprocessableEntity,
		}
	}

	settings, err := domain.NewBlockSettings(blockType)
	if err != nil {
		return EditorState{}, errors.BadRequest(err.Error())
	}
	if len(rawSettings) > 0 {
		if err := json.Unmarshal(rawSettings, settings); err != nil {
			return EditorState{}, errors.BadRequest("Malformed settings: " + err.Error())
		}
	}
	if err := utils.ValidateStruct(settings); err != nil {
		return EditorState{}, err
	}

	// order is assigned inside the session lock at append time
	block := domain.Block{
		Id:       uuid.NewString(),
		Type:     blockType,
		Visible:  true,
		Settings: settings,
	}
	if visible != nil {
		block.Visible = *visible
	}

	s.AddBlock(block)
	return state(s), nil
}

// validatePatchedSettings runs the merged settings through the same variant
// validation a create goes through, so a patch cannot smuggle in values a
// create would reject.
func validatePatchedSettings(board *domain.Board, blockId domain.BlockId, patch domain.BlockPatch) error {
	if board == nil || len(patch.Settings) == 0 {
		return nil
	}
	i := board.FindBlock(blockId)
	if i < 0 {
		return nil
	}
	merged := board.Blocks[i].Clone()
	if err := patch.Apply(&merged); err != nil {
		return errors.BadRequest("Malformed patch: " + err.Error())
	}
	return utils.ValidateStruct(merged.Settings)
}

func (e *Editor) UpdateBlock(user domain.User, blockId domain.BlockId, patch domain.BlockPatch) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	if err := validatePatchedSettings(s.CurrentBoard(), blockId, patch); err != nil {
		return EditorState{}, err
	}
	if err := s.UpdateBlock(blockId, patch); err != nil {
		return EditorState{}, errors.BadRequest("Malformed patch: " + err.Error())
	}
	return state(s), nil
}

func (e *Editor) DeleteBlock(user domain.User, blockId domain.BlockId) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	s.DeleteBlock(blockId)
	return state(s), nil
}

func (e *Editor) DuplicateBlock(user domain.User, blockId domain.BlockId) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	if s.BlockCount() >= e.cfg.MaxBlocks {
		return EditorState{}, &errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Board is limited to %d blocks", e.cfg.MaxBlocks),
			StatusCode: http.StatusUnprocessableEntity,
		}
	}
	s.DuplicateBlock(blockId)
	return state(s), nil
}

func (e *Editor) ToggleBlockVisibility(user domain.User, blockId domain.BlockId) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	s.ToggleBlockVisibility(blockId)
	return state(s), nil
}

func (e *Editor) ReorderBlocks(user domain.User, orderedIds []domain.BlockId) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	s.ReorderBlocks(orderedIds)
	return state(s), nil
}

func (e *Editor) MoveBlock(user domain.User, draggedId, targetId domain.BlockId) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	s.MoveBlock(draggedId, targetId)
	return state(s), nil
}

func (e *Editor) DeleteMultipleBlocks(user domain.User, blockIds []domain.BlockId) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	s.DeleteMultipleBlocks(blockIds)
	return state(s), nil
}

func (e *Editor) UpdateMultipleBlocks(user domain.User, updates []editor.BlockUpdate) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	board := s.CurrentBoard()
	for _, u := range updates {
		if err := validatePatchedSettings(board, u.Id, u.Patch); err != nil {
			return EditorState{}, err
		}
	}
	if err := s.UpdateMultipleBlocks(updates); err != nil {
		return EditorState{}, errors.BadRequest("Malformed patch: " + err.Error())
	}
	return state(s), nil
}

func (e *Editor) Undo(user domain.User) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	s.Undo()
	return state(s), nil
}

func (e *Editor) Redo(user domain.User) (EditorState, error) {
	s, err := e.session(user.Id)
	if err != nil {
		return EditorState{}, err
	}
	s.Redo()
	return state(s), nil
}
